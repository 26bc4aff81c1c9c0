package payouts

import (
	"PayoutDesk/internal/core/domain"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

type settingField func(s *domain.PayoutSettings, value string) error

func floatField(dst func(s *domain.PayoutSettings) *float64) settingField {
	return func(s *domain.PayoutSettings, value string) error {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number", value)
		}
		*dst(s) = v
		return nil
	}
}

// settingFields maps the names operators type to PayoutSettings fields.
var settingFields = map[string]settingField{
	"min":        floatField(func(s *domain.PayoutSettings) *float64 { return &s.MinWithdrawal }),
	"max":        floatField(func(s *domain.PayoutSettings) *float64 { return &s.MaxWithdrawal }),
	"daily":      floatField(func(s *domain.PayoutSettings) *float64 { return &s.DailyLimit }),
	"agent_rate": floatField(func(s *domain.PayoutSettings) *float64 { return &s.AgentCommissionRate }),
	"chama_rate": floatField(func(s *domain.PayoutSettings) *float64 { return &s.ChamaCommissionRate }),
	"window_start": func(s *domain.PayoutSettings, value string) error {
		s.WindowStart = value
		return nil
	},
	"window_end": func(s *domain.PayoutSettings, value string) error {
		s.WindowEnd = value
		return nil
	},
	"window_days": func(s *domain.PayoutSettings, value string) error {
		var days []string
		for _, d := range strings.Split(value, ",") {
			if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
				days = append(days, d)
			}
		}
		s.WindowDays = days
		return nil
	},
	"auto_approve": func(s *domain.PayoutSettings, value string) error {
		if strings.EqualFold(value, "off") {
			s.AutoApproveBelow = nil
			return nil
		}
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%q is not a number or \"off\"", value)
		}
		s.AutoApproveBelow = &v
		return nil
	},
}

// SettingNames lists the editable setting names, sorted.
func SettingNames() []string {
	names := make([]string, 0, len(settingFields))
	for name := range settingFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ApplySetting returns a copy of s with one field changed. The result is not
// validated; SaveSettings does that.
func ApplySetting(s *domain.PayoutSettings, field, value string) (*domain.PayoutSettings, error) {
	if s == nil {
		return nil, fmt.Errorf("payout settings are not loaded yet")
	}
	set, ok := settingFields[strings.ToLower(field)]
	if !ok {
		return nil, fmt.Errorf("unknown setting %q, expected one of %s", field, strings.Join(SettingNames(), ", "))
	}
	draft := s.Clone()
	if err := set(draft, strings.TrimSpace(value)); err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return draft, nil
}
