package backend

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
)

type User struct {
	TelegramID int64  `json:"telegramId"`
	Fullname   string `json:"fullname"`
	Phone      string `json:"phone"`
	Role       Role   `json:"role"`
	Status     Status `json:"status"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Result is the acknowledgement returned by every mutating endpoint.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Reason returns the server supplied explanation of a rejection, if any.
func (r Result) Reason() string {
	if r.Error != "" {
		return r.Error
	}
	return r.Message
}

type UpdateUserRequest struct {
	EditorID int64  `json:"editorId"`
	UserID   int64  `json:"userId"`
	Role     Role   `json:"role,omitempty"`
	Status   Status `json:"status,omitempty"`
}

type DeleteUserRequest struct {
	EditorID int64 `json:"editorId"`
	UserID   int64 `json:"userId"`
}

type locationsResponse struct {
	Success   bool     `json:"success"`
	Locations []string `json:"locations"`
}

type fishTypesResponse struct {
	Success   bool     `json:"success"`
	FishTypes []string `json:"fishTypes"`
}
