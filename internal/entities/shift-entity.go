package entities

import "time"

// Shift - именованная смена (временное окно суток), по которой движок
// вычисляет срок возврата. Справочные данные, только чтение для движка.
type Shift struct {
	ID        uint64
	Name      string
	StartTime time.Time
	EndTime   time.Time
	Active    bool
	CreatedAt time.Time
}
