package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableActions(t *testing.T) {
	testCases := []struct {
		status PayoutStatus
		want   []Action
	}{
		{StatusPending, []Action{ActionApprove, ActionReject, ActionHold}},
		{StatusApproved, []Action{ActionMarkPaid}},
		{StatusOnHold, []Action{ActionRelease, ActionReject}},
		{StatusPaid, nil},
		{StatusRejected, nil},
	}

	for _, tc := range testCases {
		t.Run(string(tc.status), func(t *testing.T) {
			assert.Equal(t, tc.want, AvailableActions(tc.status))
			assert.Equal(t, len(tc.want) == 0, tc.status.Terminal())
		})
	}

	assert.True(t, Offers(StatusOnHold, ActionRelease))
	assert.False(t, Offers(StatusApproved, ActionReject))
}

func TestParseAction(t *testing.T) {
	a, err := ParseAction(" Mark-Paid ")
	require.NoError(t, err)
	assert.Equal(t, ActionMarkPaid, a)

	_, err = ParseAction("refund")
	assert.Error(t, err)

	assert.True(t, ActionReject.Bulkable())
	assert.False(t, ActionRelease.Bulkable())
	assert.False(t, ActionGlobalHold.Bulkable())
}

func TestValidateReason(t *testing.T) {
	testCases := []struct {
		name    string
		reason  string
		want    string
		wantErr bool
	}{
		{name: "too short", reason: "no", wantErr: true},
		{name: "whitespace padded too short", reason: "   ab   ", wantErr: true},
		{name: "minimum", reason: "abc", want: "abc"},
		{name: "trimmed", reason: "  Duplicate request \n", want: "Duplicate request"},
		{name: "maximum", reason: strings.Repeat("x", MaxReasonLength), want: strings.Repeat("x", MaxReasonLength)},
		{name: "too long", reason: strings.Repeat("x", MaxReasonLength+1), wantErr: true},
		{name: "multibyte counted as runes", reason: "ñañ", want: "ñañ"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ValidateReason(tc.reason)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidReason))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
