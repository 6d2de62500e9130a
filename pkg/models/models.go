// Package models provides shared types for the SMM-Optimize HTTP API and external tools.
// These types mirror the API JSON and are stable for use by pkg/api and other consumers.
package models

import "time"

// Client is an agency client (the business the agency works for).
type Client struct {
	ClientID       int64     `json:"client_id"`
	BusinessName   string    `json:"business_name"`
	ContactPerson  string    `json:"contact_person,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	AccountManager string    `json:"account_manager,omitempty"`
	TeamID         *int64    `json:"team_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// Team is a named group of agency users serving one or more clients.
type Team struct {
	TeamID      int64     `json:"team_id"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count,omitempty"`
	ClientCount int       `json:"client_count,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// User is an agency staff member with a workflow role.
type User struct {
	UserID    int64     `json:"user_id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// FullName returns "First Last", falling back to the email when both are empty.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	default:
		return u.Email
	}
}

// Task is a workflow work item. TaskType identifies the current workflow stage;
// the server is the sole authority on mutating TaskType and IsCompleted.
type Task struct {
	TaskID         int64     `json:"task_id"`
	TaskType       string    `json:"task_type"`
	IsCompleted    bool      `json:"is_completed"`
	AssignedToName string    `json:"assigned_to_name,omitempty"`
	ClientID       *int64    `json:"client_id,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// TransitionRequest is the payload for advancing (or returning) a task.
// The side-selection ids required by the task's current stage must be set;
// the client validates this locally before any network call.
type TransitionRequest struct {
	TaskID       int64        `json:"task_id"`
	ResultStatus ResultStatus `json:"result_status"`
	InvoiceID    *int64       `json:"invoice_id,omitempty"`
	CalendarID   *int64       `json:"calendar_id,omitempty"`
	MeetingID    *int64       `json:"meeting_id,omitempty"`
}

// Meeting is a scheduled client meeting.
type Meeting struct {
	MeetingID    int64     `json:"meeting_id"`
	ClientID     int64     `json:"client_id"`
	Title        string    `json:"title"`
	ScheduledFor time.Time `json:"scheduled_for"`
	MeetingLink  string    `json:"meeting_link,omitempty"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// CalendarEntry is one planned post in a client's monthly content calendar.
type CalendarEntry struct {
	EntryID     int64     `json:"entry_id"`
	CalendarID  int64     `json:"calendar_id"`
	ClientID    int64     `json:"client_id"`
	Date        string    `json:"date"` // YYYY-MM-DD
	Platform    string    `json:"platform,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	Caption     string    `json:"caption,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Note is a free-form note attached to a client.
type Note struct {
	NoteID    int64     `json:"note_id"`
	ClientID  int64     `json:"client_id"`
	Author    string    `json:"author,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

// Invoice is a client invoice referenced by the invoice-verification stage.
type Invoice struct {
	InvoiceID     int64     `json:"invoice_id"`
	ClientID      int64     `json:"client_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// TokenPair is the /api/auth/refresh/ response.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// LoginResponse is the /api/auth/login/ response.
type LoginResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
	User    User   `json:"user"`
}

// Notification is a push event delivered over the notification socket.
// ClientID, when present, identifies the client whose cached task data is stale.
type Notification struct {
	Type      string    `json:"type"`
	ClientID  *int64    `json:"client_id,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}
