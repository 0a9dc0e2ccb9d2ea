package events

// Имена событий жизненного цикла заявки.
const (
	RequestOpenedName    = "request.opened"
	RequestConfirmedName = "request.confirmed"
	RequestDeliveredName = "request.delivered"
	RequestOverdueName   = "request.overdue"
	RequestClosedName    = "request.closed"
	RequestCancelledName = "request.cancelled"
)

// RequestEvent - общая нагрузка всех событий жизненного цикла:
// кому сообщать, о какой заявке и в каком она теперь статусе.
type RequestEvent struct {
	EventName   string
	RequestID   uint64
	RequesterID uint64
	Variant     string
	Status      string
	KindName    string
	Quantity    int
}

func (e RequestEvent) Name() string {
	return e.EventName
}
