package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// Request - заявка на временное выделение ресурсов. Вариант (оборудование
// или помещение) хранится дискриминатором, а не иерархией типов: движок
// ветвится по нему только при выборе пула единиц.
type Request struct {
	ID          uint64
	Variant     string // EQUIPMENT | ROOM
	RequesterID uint64
	KindID      uint64
	ShiftID     uint64
	Status      string
	Quantity    int
	Description string

	PreferredStartDate time.Time
	PreferredEndDate   time.Time

	OpenedAt    time.Time
	ConfirmedAt null.Time
	DeliveredAt null.Time
	ReturnedAt  null.Time
	CancelledAt null.Time
	DueAt       null.Time

	Active bool

	// Назначенные единицы; заполняется при загрузке с присоединением.
	Instances []ResourceInstance
}
