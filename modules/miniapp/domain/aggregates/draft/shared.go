package draft

import (
	"strings"
	"time"

	"github.com/aquaops/pond-miniapp/pkg/constants"
)

// Shared is the date and pond selection every form of an operator starts
// from. It survives submissions so several records can be logged for the
// same pond and day in a row.
type Shared interface {
	UserID() int64
	Date() string
	Location() string
	SetDate(date string) (Shared, error)
	SetLocation(location string) Shared
}

type shared struct {
	userID   int64
	date     string
	location string
}

// Today is the default date of a new shared selection.
func Today() string {
	return time.Now().UTC().Format(constants.DateLayout)
}

func NewShared(userID int64, date, location string) Shared {
	if strings.TrimSpace(date) == "" {
		date = Today()
	}
	return &shared{userID: userID, date: date, location: location}
}

func (s *shared) UserID() int64 {
	return s.userID
}

func (s *shared) Date() string {
	return s.date
}

func (s *shared) Location() string {
	return s.location
}

// SetDate accepts an empty date (the submission will ask for one) or a
// YYYY-MM-DD calendar date.
func (s *shared) SetDate(date string) (Shared, error) {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse(constants.DateLayout, date); err != nil {
			return s, ErrInvalidDate
		}
	}
	cp := *s
	cp.date = date
	return &cp, nil
}

func (s *shared) SetLocation(location string) Shared {
	cp := *s
	cp.location = strings.TrimSpace(location)
	return &cp
}
