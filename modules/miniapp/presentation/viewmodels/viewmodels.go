package viewmodels

import (
	"time"

	"github.com/aquaops/pond-miniapp/pkg/rowlist"
)

type Me struct {
	TelegramID int64  `json:"telegramId"`
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
	Role       string `json:"role,omitempty"`
	Status     string `json:"status,omitempty"`
	IsAdmin    bool   `json:"isAdmin"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Catalogs carries each list with its own error; a failed list is empty.
type Catalogs struct {
	Locations        []string `json:"locations"`
	LocationsError   string   `json:"locationsError,omitempty"`
	FishTypes        []string `json:"fishTypes"`
	FishTypesError   string   `json:"fishTypesError,omitempty"`
	MeasurementTypes []Option `json:"measurementTypes"`
}

type Field struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	Required bool     `json:"required"`
	Options  []Option `json:"options,omitempty"`
}

type RowColumn struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Kind     string `json:"kind"`
	Required bool   `json:"required"`
}

type Variant struct {
	Key     string      `json:"key"`
	Title   string      `json:"title"`
	Fields  []Field     `json:"fields"`
	Columns []RowColumn `json:"columns,omitempty"`
}

type Shared struct {
	Date     string `json:"date"`
	Location string `json:"location"`
}

type Draft struct {
	Variant      string            `json:"variant"`
	Date         string            `json:"date"`
	Location     string            `json:"location"`
	Values       map[string]string `json:"values"`
	ActiveFields []string          `json:"activeFields"`
	RowsActive   bool              `json:"rowsActive"`
	Rows         []rowlist.Row     `json:"rows"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

type Submission struct {
	Message string `json:"message"`
	Draft   Draft  `json:"draft"`
}

type User struct {
	TelegramID int64    `json:"telegramId"`
	Fullname   string   `json:"fullname"`
	Phone      string   `json:"phone"`
	Role       string   `json:"role"`
	Status     string   `json:"status"`
	IsAdmin    bool     `json:"isAdmin"`
	Actions    []string `json:"actions"`
}

type Message struct {
	Message string `json:"message"`
}
