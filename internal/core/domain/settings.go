package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PayoutSettings is the process-wide payout configuration. It lives on the
// server and is only changed through SaveSettings or the hold toggle.
type PayoutSettings struct {
	MinWithdrawal       float64
	MaxWithdrawal       float64
	DailyLimit          float64
	AgentCommissionRate float64 // percent
	ChamaCommissionRate float64 // percent
	WindowStart         string  // HH:MM
	WindowEnd           string  // HH:MM
	WindowDays          []string
	AutoApproveBelow    *float64
	GlobalHold          bool
	HoldReason          string
	UpdatedAt           *time.Time
}

var weekdays = map[string]bool{
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
}

// Validate runs the checks the settings form performs before submitting.
func (s *PayoutSettings) Validate() error {
	var errs []error

	if s.MinWithdrawal <= 0 {
		errs = append(errs, errors.New("minimum withdrawal must be greater than 0"))
	}
	if s.MaxWithdrawal < s.MinWithdrawal {
		errs = append(errs, errors.New("maximum withdrawal must not be below the minimum"))
	}
	if s.DailyLimit < s.MaxWithdrawal {
		errs = append(errs, errors.New("daily limit must not be below the maximum withdrawal"))
	}
	if s.AgentCommissionRate < 0 || s.AgentCommissionRate > 100 {
		errs = append(errs, errors.New("agent commission rate must be between 0 and 100"))
	}
	if s.ChamaCommissionRate < 0 || s.ChamaCommissionRate > 100 {
		errs = append(errs, errors.New("chama commission rate must be between 0 and 100"))
	}
	if s.AutoApproveBelow != nil && (*s.AutoApproveBelow < 0 || *s.AutoApproveBelow > s.MaxWithdrawal) {
		errs = append(errs, errors.New("auto-approve threshold must be between 0 and the maximum withdrawal"))
	}

	start, startErr := time.Parse("15:04", s.WindowStart)
	end, endErr := time.Parse("15:04", s.WindowEnd)
	if startErr != nil {
		errs = append(errs, fmt.Errorf("window start %q is not HH:MM", s.WindowStart))
	}
	if endErr != nil {
		errs = append(errs, fmt.Errorf("window end %q is not HH:MM", s.WindowEnd))
	}
	if startErr == nil && endErr == nil && start.Equal(end) {
		errs = append(errs, errors.New("window start and end must differ"))
	}

	if len(s.WindowDays) == 0 {
		errs = append(errs, errors.New("at least one window day is required"))
	}
	for _, d := range s.WindowDays {
		if !weekdays[strings.ToLower(d)] {
			errs = append(errs, fmt.Errorf("unknown window day %q", d))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSettings, errors.Join(errs...))
	}
	return nil
}

// Clone returns a deep copy so callers can edit a draft.
func (s *PayoutSettings) Clone() *PayoutSettings {
	if s == nil {
		return nil
	}
	c := *s
	c.WindowDays = append([]string(nil), s.WindowDays...)
	if s.AutoApproveBelow != nil {
		v := *s.AutoApproveBelow
		c.AutoApproveBelow = &v
	}
	return &c
}
