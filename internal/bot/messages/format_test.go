package messages

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/payouts"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, `a\_b\*c \(1\.5\)\!`, Escape("a_b*c (1.5)!"))
	assert.Equal(t, `back\\slash`, Escape(`back\slash`))
}

func TestParsePayoutData(t *testing.T) {
	testCases := []struct {
		data       string
		wantAction domain.Action
		wantID     string
		wantErr    bool
	}{
		{data: PayoutData(domain.ActionApprove, "p1"), wantAction: domain.ActionApprove, wantID: "p1"},
		{data: PayoutData(domain.ActionMarkPaid, "pay_out_7"), wantAction: domain.ActionMarkPaid, wantID: "pay_out_7"},
		{data: "payout_refund_p1", wantErr: true},
		{data: "payout_approve_", wantErr: true},
		{data: "payout_approve", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.data, func(t *testing.T) {
			action, id, err := ParsePayoutData(tc.data)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.wantAction, action)
			assert.Equal(t, tc.wantID, id)
		})
	}
}

func testState() payouts.State {
	reason := "Duplicate"
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	return payouts.State{
		Payouts: []domain.PayoutRequest{
			{ID: "p1", Amount: 1500, Currency: "KES", Method: domain.MethodMpesa, Status: domain.StatusPending, AgentID: "a1", RequestedAt: at},
			{ID: "p2", Amount: 10, Currency: "KES", Method: domain.MethodBank, Status: domain.StatusRejected, ChamaID: "c1", RejectionReason: &reason, RequestedAt: at},
		},
		Pagination: domain.Pagination{Page: 2, Limit: 2, Total: 5},
		Filter:     domain.PayoutFilter{Page: 2, Limit: 2},
		Settings:   &domain.PayoutSettings{GlobalHold: true, HoldReason: "Audit"},
		Selected:   []string{"p1"},
	}
}

func TestPayoutList(t *testing.T) {
	text := PayoutList(testState())

	assert.Contains(t, text, "page 2/3 \\(5 total\\)")
	assert.Contains(t, text, "Global hold is on*: Audit")
	assert.Contains(t, text, "☑️ 1\\. `p1` *KES 1500\\.00*")
	assert.Contains(t, text, "reason: Duplicate")
	assert.Contains(t, text, "*Selected:* 1")

	assert.Contains(t, PayoutList(payouts.State{}), "No payouts match")
}

func TestPayoutKeyboard(t *testing.T) {
	rows := PayoutKeyboard(testState())

	// p2 is rejected, so only p1 gets a row, then navigation.
	require.Len(t, rows, 2)
	assert.Equal(t, "☑️ p1", rows[0][0].Text)
	assert.Equal(t, SelectData("p1"), rows[0][0].Data)
	require.Len(t, rows[0], 4)
	assert.Equal(t, "payout_reject_p1", rows[0][2].Data)

	require.Len(t, rows[1], 2)
	assert.Equal(t, PageData(1), rows[1][0].Data)
	assert.Equal(t, PageData(3), rows[1][1].Data)
}

func TestRejectionPromptShowsError(t *testing.T) {
	text := RejectionPrompt(&payouts.Rejection{PayoutID: "p1", Error: "too short."})
	assert.Contains(t, text, "`p1`")
	assert.Contains(t, text, "too short\\.")
}

func TestBuilderEdit(t *testing.T) {
	edit := NewBuilder(1000).WithPlainText("done.").WithInlineButtons(ConfirmKeyboard()).Edit(7)
	assert.Equal(t, int64(1000), edit.ChatID)
	assert.Equal(t, 7, edit.MessageID)
	assert.Equal(t, "done\\.", edit.Text)
	require.NotNil(t, edit.ReplyMarkup)

	params := NewBuilder(1000).WithInlineButtons(nil).Build()
	assert.Nil(t, params.ReplyMarkup)
}
