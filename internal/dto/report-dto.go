package dto

// ReportItemDTO - строка отчёта по заявкам за период.
type ReportItemDTO struct {
	RequestID    uint64 `json:"request_id"`
	Variant      string `json:"variant"`
	Status       string `json:"status"`
	RequesterFio string `json:"requester_fio"`
	KindName     string `json:"kind_name"`
	ShiftName    string `json:"shift_name"`
	Quantity     int    `json:"quantity"`
	OpenedAt     string `json:"opened_at"`
	DueAt        string `json:"due_at,omitempty"`
	ReturnedAt   string `json:"returned_at,omitempty"`
}
