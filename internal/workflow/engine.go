// Package workflow maps a task's current stage to the status label, actions,
// and side-selection requirements the UI may present, and validates a proposed
// transition before it leaves the client. Every function is a pure lookup over
// the compiled-in table; the package holds no mutable state.
package workflow

import (
	"fmt"

	"github.com/AweemRizwan/smm-optimize-sub001/pkg/models"
)

// fallbackLabel is shown for task types with no table entry.
const fallbackLabel = "Unknown"

// SelectionKind names a side-resource a stage may require.
type SelectionKind string

const (
	SelectionInvoice  SelectionKind = "invoice"
	SelectionCalendar SelectionKind = "calendar"
	SelectionMeeting  SelectionKind = "meeting"
)

// Selection carries the side-resource ids chosen by the user, if any.
type Selection struct {
	InvoiceID  *int64
	CalendarID *int64
	MeetingID  *int64
}

// MissingSelectionError reports a required side-selection that was not chosen.
// It is a field-level error: the transition was rejected locally and no
// network call was made.
type MissingSelectionError struct {
	Kind SelectionKind
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("a %s must be selected before this transition can be submitted", e.Kind)
}

// ResolveStage looks up the stage for a task type. Unknown ids return a
// deterministic fallback (same id, "Unknown" label, no actions) and ok=false;
// the caller renders no action buttons instead of failing.
func ResolveStage(id string) (Stage, bool) {
	if s, ok := stages[id]; ok {
		return s, true
	}
	return Stage{ID: id, StatusLabel: fallbackLabel}, false
}

// Authorized reports whether role may act while a task sits in stage.
func Authorized(s Stage, role models.Role) bool {
	for _, r := range s.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// VisibleActions returns the stage's actions when role is allowed to act,
// otherwise nil. Authorization is all-or-nothing per stage; individual
// actions are never filtered.
func VisibleActions(s Stage, role models.Role) []Action {
	if !Authorized(s, role) {
		return nil
	}
	return append([]Action(nil), s.Actions...)
}

// RequiredSelections returns the side-selection kinds the given role must
// provide before submitting a transition from the stage. The three
// requirement maps are checked independently, so more than one kind can be
// required at once.
func RequiredSelections(stageID string, role models.Role) []SelectionKind {
	var kinds []SelectionKind
	if r, ok := invoiceRoleByStage[stageID]; ok && r == role {
		kinds = append(kinds, SelectionInvoice)
	}
	if r, ok := calendarRoleByStage[stageID]; ok && r == role {
		kinds = append(kinds, SelectionCalendar)
	}
	if r, ok := meetingRoleByStage[stageID]; ok && r == role {
		kinds = append(kinds, SelectionMeeting)
	}
	return kinds
}

// ValidateTransition checks that every selection the stage requires of the
// role is present. It returns a *MissingSelectionError for the first unmet
// requirement (invoice, then calendar, then meeting), or nil when the
// transition may be submitted.
func ValidateTransition(s Stage, role models.Role, sel Selection) error {
	for _, kind := range RequiredSelections(s.ID, role) {
		switch kind {
		case SelectionInvoice:
			if sel.InvoiceID == nil {
				return &MissingSelectionError{Kind: SelectionInvoice}
			}
		case SelectionCalendar:
			if sel.CalendarID == nil {
				return &MissingSelectionError{Kind: SelectionCalendar}
			}
		case SelectionMeeting:
			if sel.MeetingID == nil {
				return &MissingSelectionError{Kind: SelectionMeeting}
			}
		}
	}
	return nil
}

// Advance returns the stage entered on an approve outcome. ok is false when
// the happy path ends at s. The next stage after a non-approve outcome is
// server-determined and unknown to the client.
func Advance(s Stage) (next string, ok bool) {
	if s.Next == "" {
		return "", false
	}
	return s.Next, true
}
