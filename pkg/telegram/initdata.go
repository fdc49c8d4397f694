// Package telegram extracts caller identity from Telegram WebApp init data.
//
// The init data string is forwarded to the backend untouched; it is only
// parsed here to key per-user state. No signature check is done.
package telegram

import (
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrEmptyInitData   = errors.New("telegram: empty init data")
	ErrInvalidInitData = errors.New("telegram: malformed init data")
	ErrNoUser          = errors.New("telegram: init data carries no user")
)

type WebAppUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// FullName joins first and last name the way the app greets operators.
func (u WebAppUser) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type InitData struct {
	Raw      string
	User     WebAppUser
	AuthDate time.Time
	QueryID  string
}

func (d InitData) UserID() int64 {
	return d.User.ID
}

func ParseInitData(raw string) (InitData, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return InitData{}, ErrEmptyInitData
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return InitData{}, ErrInvalidInitData
	}

	data := InitData{Raw: raw, QueryID: values.Get("query_id")}
	if ts := values.Get("auth_date"); ts != "" {
		sec, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return InitData{}, ErrInvalidInitData
		}
		data.AuthDate = time.Unix(sec, 0).UTC()
	}

	userJSON := values.Get("user")
	if userJSON == "" {
		return InitData{}, ErrNoUser
	}
	if err := json.Unmarshal([]byte(userJSON), &data.User); err != nil {
		return InitData{}, ErrInvalidInitData
	}
	if data.User.ID == 0 {
		return InitData{}, ErrNoUser
	}
	return data, nil
}
