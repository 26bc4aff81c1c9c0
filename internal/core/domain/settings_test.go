package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() PayoutSettings {
	return PayoutSettings{
		MinWithdrawal:       100,
		MaxWithdrawal:       50000,
		DailyLimit:          100000,
		AgentCommissionRate: 2.5,
		ChamaCommissionRate: 1,
		WindowStart:         "09:00",
		WindowEnd:           "17:00",
		WindowDays:          []string{"monday", "Friday"},
	}
}

func TestPayoutSettings_Validate(t *testing.T) {
	threshold := 60000.0

	testCases := []struct {
		name   string
		mutate func(s *PayoutSettings)
		errMsg string
	}{
		{name: "valid", mutate: func(s *PayoutSettings) {}},
		{name: "zero minimum", mutate: func(s *PayoutSettings) { s.MinWithdrawal = 0 }, errMsg: "minimum withdrawal"},
		{name: "max below min", mutate: func(s *PayoutSettings) { s.MaxWithdrawal = 50 }, errMsg: "maximum withdrawal"},
		{name: "daily below max", mutate: func(s *PayoutSettings) { s.DailyLimit = 10 }, errMsg: "daily limit"},
		{name: "rate over 100", mutate: func(s *PayoutSettings) { s.AgentCommissionRate = 101 }, errMsg: "agent commission"},
		{name: "negative rate", mutate: func(s *PayoutSettings) { s.ChamaCommissionRate = -1 }, errMsg: "chama commission"},
		{name: "bad start", mutate: func(s *PayoutSettings) { s.WindowStart = "9am" }, errMsg: "window start"},
		{name: "equal window", mutate: func(s *PayoutSettings) { s.WindowEnd = "09:00" }, errMsg: "must differ"},
		{name: "no days", mutate: func(s *PayoutSettings) { s.WindowDays = nil }, errMsg: "at least one"},
		{name: "bad day", mutate: func(s *PayoutSettings) { s.WindowDays = []string{"funday"} }, errMsg: "funday"},
		{name: "threshold above max", mutate: func(s *PayoutSettings) { s.AutoApproveBelow = &threshold }, errMsg: "auto-approve"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSettings()
			tc.mutate(&s)

			err := s.Validate()
			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidSettings))
			assert.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestPayoutSettings_CloneIsDeep(t *testing.T) {
	threshold := 500.0
	s := validSettings()
	s.AutoApproveBelow = &threshold

	c := s.Clone()
	c.WindowDays[0] = "sunday"
	*c.AutoApproveBelow = 1

	assert.Equal(t, "monday", s.WindowDays[0])
	assert.Equal(t, 500.0, *s.AutoApproveBelow)
}
