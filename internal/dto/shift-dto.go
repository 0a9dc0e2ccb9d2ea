package dto

type CreateShiftDTO struct {
	Name      string `json:"name" validate:"required,max=50"`
	StartTime string `json:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" validate:"required,clock_time"`
}

type ShiftDTO struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Active    bool   `json:"active"`
}
