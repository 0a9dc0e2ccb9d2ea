package entities

import (
	"time"

	"github.com/aarondl/null/v8"
)

type ReportFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Variant  string
	Statuses []string
	KindIDs  []uint64
	Limit    uint64
	Offset   uint64
}

type ReportItem struct {
	RequestID     uint64
	Variant       string
	Status        string
	Quantity      int
	RequesterFio  string
	KindName      string
	ShiftName     string
	OpenedAt      time.Time
	ConfirmedAt   null.Time
	DeliveredAt   null.Time
	ReturnedAt    null.Time
	DueAt         null.Time
	InstanceCount int
}
