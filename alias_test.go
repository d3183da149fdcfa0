package main

import (
	"testing"

	"miv-backend/services"

	"github.com/stretchr/testify/assert"
)

func contains(set []string, value string) bool {
	for _, s := range set {
		if s == value {
			return true
		}
	}
	return false
}

func TestValidateAliasTable(t *testing.T) {
	assert.NoError(t, services.ValidateAliasTable())
}

// TestResolverSymmetry проверяет симметричность таблицы синонимов:
// B входит в эквиваленты A тогда и только тогда, когда A входит в
// эквиваленты B
func TestResolverSymmetry(t *testing.T) {
	aliases := []string{
		"PIPE", "PIP", "ELBOW", "ELB", "ELL", "EL", "FLANGE", "FLG", "FLAN", "FLN",
		"TEE", "TE", "REDUCER", "RED", "VALVE", "VLV", "GASKET", "GSK",
		"BOLT", "BLT", "COUPLING", "CPLG", "NIPPLE", "NPL", "UNION", "CAP",
		"WELDOLET", "WOL", "SOCKOLET", "SOL", "THREADOLET", "TOL",
	}

	for _, a := range aliases {
		for _, b := range aliases {
			aInB := contains(services.EquivalentTypes(b), a)
			bInA := contains(services.EquivalentTypes(a), b)
			assert.Equal(t, aInB, bInA, "asymmetric pair: %s / %s", a, b)
		}
	}
}

func TestEquivalentTypesContainsInput(t *testing.T) {
	for _, typ := range []string{"FLANGE", "flg", " Elbow ", "SOMETHING-ODD"} {
		set := services.EquivalentTypes(typ)
		assert.True(t, contains(set, services.NormalizeComponentType(typ)),
			"equivalence set of %q must contain its normalized input", typ)
	}
}

func TestEquivalentTypesUnknownIsSingleton(t *testing.T) {
	set := services.EquivalentTypes("  special gizmo ")
	assert.Equal(t, []string{"SPECIAL GIZMO"}, set)
}

func TestEquivalentTypesGroup(t *testing.T) {
	set := services.EquivalentTypes("flg")
	assert.ElementsMatch(t, []string{"FLANGE", "FLG", "FLAN", "FLN"}, set)
}

func TestBoreMatches(t *testing.T) {
	// Без требуемого диаметра ограничение отсутствует
	assert.True(t, services.BoreMatches(nil, floatPtr(6)))
	assert.True(t, services.BoreMatches(nil, nil))

	// С требуемым диаметром нужно точное совпадение
	assert.True(t, services.BoreMatches(floatPtr(6), floatPtr(6)))
	assert.False(t, services.BoreMatches(floatPtr(6), floatPtr(8)))
	assert.False(t, services.BoreMatches(floatPtr(6), nil))
}
