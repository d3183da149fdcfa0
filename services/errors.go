package services

import "fmt"

// ValidationError означает нарушение бизнес-правила во входных данных
// (отсутствующее обязательное поле, дубликат тега MIV и т.п.)
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// NotFoundError означает, что сущность с указанным идентификатором
// не существует
type NotFoundError struct {
	Entity string
	ID     uint
	Tag    string
}

func (e *NotFoundError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%s '%s' not found", e.Entity, e.Tag)
	}
	return fmt.Sprintf("%s with ID %d not found", e.Entity, e.ID)
}

// InsufficientStockError означает, что запрошенное количество превышает
// остаток складской позиции
type InsufficientStockError struct {
	SpoolItemID uint
	Requested   float64
	Available   float64
}

func (e *InsufficientStockError) Error() string {
	if e.SpoolItemID != 0 {
		return fmt.Sprintf("insufficient stock for spool item %d: requested %.2f, available %.2f (shortfall %.2f)",
			e.SpoolItemID, e.Requested, e.Available, e.Shortfall())
	}
	return fmt.Sprintf("insufficient stock: requested %.2f, available %.2f (shortfall %.2f)",
		e.Requested, e.Available, e.Shortfall())
}

// Shortfall возвращает недостающее количество
func (e *InsufficientStockError) Shortfall() float64 {
	return e.Requested - e.Available
}

// ConsistencyError означает неожиданно отсутствующую ссылку посреди
// транзакции (например, позиция MTO исчезла между чтением и записью)
type ConsistencyError struct {
	Message string
}

func (e *ConsistencyError) Error() string {
	return e.Message
}
