package dto

type CreateResourceKindDTO struct {
	Name    string `json:"name" validate:"required,max=100"`
	Variant string `json:"variant" validate:"required,oneof=EQUIPMENT ROOM"`
}

type UpdateResourceKindDTO struct {
	Name   string `json:"name" validate:"omitempty,max=100"`
	Active *bool  `json:"active" validate:"omitempty"`
}

type ResourceKindDTO struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Variant        string `json:"variant"`
	Active         bool   `json:"active"`
	AvailableCount int    `json:"available_count"`
	CreatedAt      string `json:"created_at"`
}

type CreateResourceInstanceDTO struct {
	Label  string `json:"label" validate:"required,max=50"`
	KindID uint64 `json:"kind_id" validate:"required"`
}

type DisableResourceInstanceDTO struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

type ResourceInstanceDTO struct {
	ID                   uint64       `json:"id"`
	Label                string       `json:"label"`
	Kind                 ShortKindDTO `json:"kind"`
	Status               string       `json:"status"`
	UnavailabilityReason string       `json:"unavailability_reason,omitempty"`
	Active               bool         `json:"active"`
	CreatedAt            string       `json:"created_at"`
}
