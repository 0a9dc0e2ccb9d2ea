package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

// ResourceKind - вид считаемого ресурса: тип оборудования или сектор помещений.
// Доступное количество НЕ хранится: оно всегда выводится подсчётом активных
// единиц вида в статусе OPEN.
type ResourceKind struct {
	ID        uint64
	Name      string
	Variant   string // EQUIPMENT | ROOM
	Active    bool
	CreatedAt time.Time
	UpdatedAt null.Time
}

// ResourceInstance - конкретная физическая единица: единица оборудования
// или помещение. Меняется только движком жизненного цикла и админскими
// операциями включения/выключения. Никогда не удаляется физически.
type ResourceInstance struct {
	ID                   uint64
	Label                string // инвентарный номер / номер помещения
	KindID               uint64
	Status               string
	UnavailabilityReason null.String // заполняется только в DISABLED
	Active               bool
	CreatedAt            time.Time
	UpdatedAt            null.Time
}
