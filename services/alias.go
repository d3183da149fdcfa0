package services

import (
	"fmt"
	"strings"
)

// componentAliasGroups — статическая таблица синонимов типов компонентов.
// Типы из MTO приходят свободным текстом, складские позиции используют
// свои сокращения; группа объединяет все написания одного компонента.
// Таблица проверяется на старте через ValidateAliasTable.
var componentAliasGroups = [][]string{
	{"PIPE", "PIP"},
	{"ELBOW", "ELB", "ELL", "EL"},
	{"FLANGE", "FLG", "FLAN", "FLN"},
	{"TEE", "TE"},
	{"REDUCER", "RED", "REDC"},
	{"VALVE", "VLV", "VAL"},
	{"GASKET", "GSK", "GASK"},
	{"BOLT", "BLT", "STUD BOLT"},
	{"COUPLING", "CPLG", "COUP"},
	{"NIPPLE", "NPL", "NIP"},
	{"UNION", "UNI"},
	{"CAP", "CP"},
	{"WELDOLET", "WOL"},
	{"SOCKOLET", "SOL"},
	{"THREADOLET", "TOL"},
}

// aliasIndex отображает нормализованный тип на его полную группу синонимов
var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string][]string {
	index := make(map[string][]string)
	for _, group := range componentAliasGroups {
		for _, alias := range group {
			index[alias] = group
		}
	}
	return index
}

// NormalizeComponentType приводит тип компонента к каноническому виду
func NormalizeComponentType(componentType string) string {
	return strings.ToUpper(strings.TrimSpace(componentType))
}

// EquivalentTypes возвращает множество типов, эквивалентных заданному.
// Результат всегда содержит нормализованный вход; если тип не входит ни
// в одну группу, возвращается одноэлементное множество.
// Эта функция — единственный источник эквивалентности и для поиска по
// складу, и для отнесения складских списаний к позициям MTO.
func EquivalentTypes(componentType string) []string {
	norm := NormalizeComponentType(componentType)
	if group, ok := aliasIndex[norm]; ok {
		result := make([]string, len(group))
		copy(result, group)
		return result
	}
	return []string{norm}
}

// BoreMatches проверяет совпадение диаметров. Если у позиции MTO диаметр
// не задан, ограничение отсутствует; иначе требуется точное равенство.
func BoreMatches(requiredBore, itemBore *float64) bool {
	if requiredBore == nil {
		return true
	}
	if itemBore == nil {
		return false
	}
	return *requiredBore == *itemBore
}

// ValidateAliasTable проверяет корректность таблицы синонимов: группы не
// должны быть пустыми, а один синоним не может входить в две группы.
// Вызывается один раз при старте приложения.
func ValidateAliasTable() error {
	seen := make(map[string]int)
	for i, group := range componentAliasGroups {
		if len(group) == 0 {
			return fmt.Errorf("alias group %d is empty", i)
		}
		for _, alias := range group {
			norm := NormalizeComponentType(alias)
			if norm == "" {
				return fmt.Errorf("alias group %d contains an empty alias", i)
			}
			if norm != alias {
				return fmt.Errorf("alias %q in group %d is not normalized", alias, i)
			}
			if prev, ok := seen[alias]; ok {
				return fmt.Errorf("alias %q appears in groups %d and %d", alias, prev, i)
			}
			seen[alias] = i
		}
	}
	return nil
}
