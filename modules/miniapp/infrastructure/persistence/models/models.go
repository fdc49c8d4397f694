package models

import (
	"time"
)

type Draft struct {
	UserID    int64             `json:"user_id"`
	Variant   string            `json:"variant"`
	Values    map[string]string `json:"values,omitempty"`
	Rows      []DraftRow        `json:"rows,omitempty"`
	LastRowID int               `json:"last_row_id,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

type DraftRow struct {
	ID     int               `json:"id"`
	Values map[string]string `json:"values"`
}

type Shared struct {
	UserID   int64  `json:"user_id"`
	Date     string `json:"date"`
	Location string `json:"location"`
}
