package models

// Role is a closed set of workflow roles. Role gating throughout the client
// compares against these values; unknown role strings simply never match.
type Role string

const (
	RoleAccountManager   Role = "account_manager"
	RoleAccountant       Role = "accountant"
	RoleMarketingManager Role = "marketing_manager"
	RoleContentWriter    Role = "content_writer"
	RoleGraphicsDesigner Role = "graphics_designer"
)

// ResultStatus is the outcome a user picks when acting on a workflow stage.
// On approve the server advances the task; on the other outcomes the server
// alone decides where the task goes next.
type ResultStatus string

const (
	ResultApprove         ResultStatus = "approve"
	ResultChangesRequired ResultStatus = "changes_required"
	ResultDeclined        ResultStatus = "declined"
)

// Notification event types pushed over the socket.
const (
	NotificationTaskUpdated   = "task_updated"
	NotificationTaskAssigned  = "task_assigned"
	NotificationMeetingUpdate = "meeting_update"
)

// Client-side defaults.
const (
	DefaultEventChanBuffer  = 64
	DefaultRequestTimeoutMS = 30000
)
