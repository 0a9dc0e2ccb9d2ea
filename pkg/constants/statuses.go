package constants

// Статусы заявки. Порядок жизненного цикла:
// OPEN/QUEUED -> CONFIRMED -> IN_USE -> OVERDUE -> CLOSED, плюс CANCELLED.
// CLOSED и CANCELLED - терминальные, из них переходов нет.
const (
	StatusOpen      = "OPEN"
	StatusQueued    = "QUEUED"
	StatusConfirmed = "CONFIRMED"
	StatusInUse     = "IN_USE"
	StatusOverdue   = "OVERDUE"
	StatusClosed    = "CLOSED"
	StatusCancelled = "CANCELLED"
)

// Статусы физической единицы ресурса. Совместимое подмножество статусов заявки
// плюс DISABLED для выведенных из оборота единиц.
const (
	InstanceStatusOpen      = "OPEN"
	InstanceStatusConfirmed = "CONFIRMED"
	InstanceStatusInUse     = "IN_USE"
	InstanceStatusOverdue   = "OVERDUE"
	InstanceStatusDisabled  = "DISABLED"
)

// Варианты заявок и видов ресурсов.
const (
	VariantEquipment = "EQUIPMENT"
	VariantRoom      = "ROOM"
)

// MaxRoomQuantity - жёсткий потолок количества помещений в одной заявке.
// Потолок для оборудования настраивается через конфиг.
const MaxRoomQuantity = 2

// IsTerminalStatus сообщает, достигла ли заявка терминального состояния.
func IsTerminalStatus(status string) bool {
	return status == StatusClosed || status == StatusCancelled
}
