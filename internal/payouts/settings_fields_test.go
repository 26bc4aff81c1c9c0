package payouts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySetting(t *testing.T) {
	base := testSettings(false)

	testCases := []struct {
		field   string
		value   string
		wantErr string
	}{
		{field: "min", value: "250"},
		{field: "window_days", value: "Monday, friday ,"},
		{field: "auto_approve", value: "1000"},
		{field: "auto_approve", value: "off"},
		{field: "max", value: "lots", wantErr: "not a number"},
		{field: "colour", value: "blue", wantErr: "unknown setting"},
	}

	for _, tc := range testCases {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			draft, err := ApplySetting(base, tc.field, tc.value)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotSame(t, base, draft)
		})
	}

	draft, err := ApplySetting(base, "WINDOW_DAYS", "Monday, friday ,")
	require.NoError(t, err)
	assert.Equal(t, []string{"monday", "friday"}, draft.WindowDays)
	assert.Equal(t, []string{"monday"}, base.WindowDays, "base is untouched")

	draft, err = ApplySetting(base, "auto_approve", "1000")
	require.NoError(t, err)
	require.NotNil(t, draft.AutoApproveBelow)
	assert.Equal(t, 1000.0, *draft.AutoApproveBelow)

	_, err = ApplySetting(nil, "min", "1")
	assert.Error(t, err)
}
