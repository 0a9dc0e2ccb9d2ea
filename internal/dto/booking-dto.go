package dto

// CreateRequestDTO - создание заявки. Вариант определяется маршрутом
// (/requests/equipment или /requests/room), kind_id указывает тип
// оборудования либо сектор.
type CreateRequestDTO struct {
	KindID             uint64 `json:"kind_id" validate:"required"`
	ShiftID            uint64 `json:"shift_id" validate:"required"`
	Quantity           int    `json:"quantity" validate:"required,min=1"`
	Description        string `json:"description" validate:"required,max=200"`
	PreferredStartDate string `json:"preferred_start_date" validate:"required,booking_date"`
	PreferredEndDate   string `json:"preferred_end_date" validate:"required,booking_date"`
}

// ConfirmRequestDTO - админ подтверждает заявку, закрепляя за ней
// конкретные единицы. Размер набора обязан совпадать с quantity заявки.
type ConfirmRequestDTO struct {
	InstanceIDs []uint64 `json:"instance_ids" validate:"required,min=1,dive,required"`
}

// DeliverRequestDTO - выдача ресурсов с датой возврата.
type DeliverRequestDTO struct {
	ReturnByDate string `json:"return_by_date" validate:"required,booking_date"`
}

type RequestDTO struct {
	ID          uint64 `json:"id"`
	Variant     string `json:"variant"`
	Status      string `json:"status"`
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`

	Requester ShortUserDTO  `json:"requester"`
	Kind      ShortKindDTO  `json:"kind"`
	Shift     ShortShiftDTO `json:"shift"`

	PreferredStartDate string `json:"preferred_start_date"`
	PreferredEndDate   string `json:"preferred_end_date"`

	OpenedAt    string `json:"opened_at"`
	ConfirmedAt string `json:"confirmed_at,omitempty"`
	DeliveredAt string `json:"delivered_at,omitempty"`
	ReturnedAt  string `json:"returned_at,omitempty"`
	CancelledAt string `json:"cancelled_at,omitempty"`
	DueAt       string `json:"due_at,omitempty"`

	Instances []ShortInstanceDTO `json:"instances,omitempty"`
}

type ShortUserDTO struct {
	ID  uint64 `json:"id"`
	Fio string `json:"fio"`
}

type ShortKindDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Variant string `json:"variant"`
}

type ShortShiftDTO struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	EndTime string `json:"end_time"`
}

type ShortInstanceDTO struct {
	ID     uint64 `json:"id"`
	Label  string `json:"label"`
	Status string `json:"status"`
}
