package domain

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Action is an operator intent on one payout, the selection, or the platform.
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionHold       Action = "hold"
	ActionRelease    Action = "release"
	ActionMarkPaid   Action = "mark-paid"
	ActionGlobalHold Action = "global-hold"
)

// ParseAction accepts the wire names of actions.
func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionApprove, ActionReject, ActionHold, ActionRelease, ActionMarkPaid, ActionGlobalHold:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Label is the human text for buttons and dialogs.
func (a Action) Label() string {
	switch a {
	case ActionApprove:
		return "Approve"
	case ActionReject:
		return "Reject"
	case ActionHold:
		return "Hold"
	case ActionRelease:
		return "Release"
	case ActionMarkPaid:
		return "Mark paid"
	case ActionGlobalHold:
		return "Toggle global hold"
	}
	return string(a)
}

// Bulkable reports whether the action can be sent for many payouts at once.
func (a Action) Bulkable() bool {
	return a == ActionApprove || a == ActionReject || a == ActionHold
}

// availableActions is the client-visible state machine. It only decides
// which buttons are offered; the backend validates every transition.
var availableActions = map[PayoutStatus][]Action{
	StatusPending:  {ActionApprove, ActionReject, ActionHold},
	StatusApproved: {ActionMarkPaid},
	StatusOnHold:   {ActionRelease, ActionReject},
}

// AvailableActions returns the actions offered for a payout in status s.
func AvailableActions(s PayoutStatus) []Action {
	return availableActions[s]
}

// Offers reports whether action a is offered for status s.
func Offers(s PayoutStatus, a Action) bool {
	for _, candidate := range availableActions[s] {
		if candidate == a {
			return true
		}
	}
	return false
}

const (
	MinReasonLength = 3
	MaxReasonLength = 500
)

// ValidateReason trims a rejection reason and checks its length in runes.
func ValidateReason(reason string) (string, error) {
	trimmed := strings.TrimSpace(reason)
	n := utf8.RuneCountInString(trimmed)
	if n < MinReasonLength || n > MaxReasonLength {
		return "", fmt.Errorf("%w: must be between %d and %d characters, got %d",
			ErrInvalidReason, MinReasonLength, MaxReasonLength, n)
	}
	return trimmed, nil
}
