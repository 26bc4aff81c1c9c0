package messages

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"PayoutDesk/internal/payouts"
	"fmt"
	"strconv"
	"strings"
)

// Callback data understood by the operator handlers.
const (
	PrefixPayout   = "payout_"
	PrefixSelect   = "select_"
	PrefixPage     = "page_"
	PrefixConfirm  = "confirm_"
	DataConfirmYes = "confirm_yes"
	DataConfirmNo  = "confirm_no"
)

const timeLayout = "2006-01-02 15:04"

// PayoutData is the callback data of a per-payout action button.
func PayoutData(action domain.Action, payoutID string) string {
	return PrefixPayout + string(action) + "_" + payoutID
}

// ParsePayoutData splits "payout_<action>_<id>". Ids may contain underscores.
func ParsePayoutData(data string) (domain.Action, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(data, PrefixPayout), "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return "", "", fmt.Errorf("invalid payout callback %q", data)
	}
	action, err := domain.ParseAction(parts[0])
	if err != nil {
		return "", "", err
	}
	return action, parts[1], nil
}

// SelectData is the callback data of a selection toggle.
func SelectData(payoutID string) string {
	return PrefixSelect + payoutID
}

// PageData is the callback data of a pagination button.
func PageData(page int) string {
	return PrefixPage + strconv.Itoa(page)
}

// Money renders an amount with its currency.
func Money(amount float64, currency string) string {
	if currency == "" {
		return strconv.FormatFloat(amount, 'f', 2, 64)
	}
	return fmt.Sprintf("%s %.2f", currency, amount)
}

// TotalPages is the number of pages for p, at least 1.
func TotalPages(p domain.Pagination) int {
	if p.Limit <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + p.Limit - 1) / p.Limit
}

// PayoutList renders the listing part of the console.
func PayoutList(s payouts.State) string {
	var b strings.Builder

	filter := "all"
	if s.Filter.Status != "" {
		filter = string(s.Filter.Status)
	}
	page := s.Pagination.Page
	if page == 0 {
		page = s.Filter.Page
	}
	fmt.Fprintf(&b, "*Payouts* · %s · page %d/%d \\(%d total\\)\n",
		Escape(filter), page, TotalPages(s.Pagination), s.Pagination.Total)

	if s.Settings != nil && s.Settings.GlobalHold {
		b.WriteString("🛑 *Global hold is on*")
		if s.Settings.HoldReason != "" {
			b.WriteString(": " + Escape(s.Settings.HoldReason))
		}
		b.WriteString("\n")
	}
	switch {
	case s.Loading:
		b.WriteString("_Loading…_\n")
	case s.Refreshing:
		b.WriteString("_Refreshing…_\n")
	}
	b.WriteString("\n")

	if len(s.Payouts) == 0 {
		b.WriteString("_No payouts match this filter\\._")
		return b.String()
	}

	selected := make(map[string]bool, len(s.Selected))
	for _, id := range s.Selected {
		selected[id] = true
	}

	for i, p := range s.Payouts {
		mark := ""
		if selected[p.ID] {
			mark = "☑️ "
		}
		fmt.Fprintf(&b, "%s%d\\. `%s` *%s* · %s · %s %s\n",
			mark, i+1, Escape(p.ID), Escape(Money(p.Amount, p.Currency)),
			Escape(string(p.Method)), Escape(string(p.Source())), Escape(p.SourceID()))
		fmt.Fprintf(&b, "    %s · requested %s\n",
			Escape(string(p.Status)), Escape(p.RequestedAt.Format(timeLayout)))
		if p.RecipientName != "" {
			fmt.Fprintf(&b, "    to %s\n", Escape(p.RecipientName))
		}
		if p.RejectionReason != nil {
			fmt.Fprintf(&b, "    reason: %s\n", Escape(*p.RejectionReason))
		}
		if p.HoldReason != nil && p.Status == domain.StatusOnHold {
			fmt.Fprintf(&b, "    held: %s\n", Escape(*p.HoldReason))
		}
	}

	if len(s.Selected) > 0 {
		fmt.Fprintf(&b, "\n*Selected:* %d · use /bulk approve\\|reject\\|hold", len(s.Selected))
	}
	return b.String()
}

// PayoutKeyboard has one row per actionable payout and a pagination row.
func PayoutKeyboard(s payouts.State) [][]ports.Button {
	selected := make(map[string]bool, len(s.Selected))
	for _, id := range s.Selected {
		selected[id] = true
	}

	var rows [][]ports.Button
	for _, p := range s.Payouts {
		actions := domain.AvailableActions(p.Status)
		if len(actions) == 0 {
			continue
		}
		box := "☐ "
		if selected[p.ID] {
			box = "☑️ "
		}
		row := []ports.Button{{Text: box + p.ID, Data: SelectData(p.ID)}}
		for _, a := range actions {
			row = append(row, ports.Button{Text: a.Label(), Data: PayoutData(a, p.ID)})
		}
		rows = append(rows, row)
	}

	page := s.Filter.Page
	var nav []ports.Button
	if page > 1 {
		nav = append(nav, ports.Button{Text: "« Prev", Data: PageData(page - 1)})
	}
	if page < TotalPages(s.Pagination) {
		nav = append(nav, ports.Button{Text: "Next »", Data: PageData(page + 1)})
	}
	if len(nav) > 0 {
		rows = append(rows, nav)
	}
	return rows
}

// Stats renders counts and amounts per status.
func Stats(stats *domain.PayoutStats) string {
	if stats == nil {
		return "_Statistics are not loaded yet\\._"
	}
	var b strings.Builder
	b.WriteString("*Payout statistics*\n")
	for _, status := range domain.AllStatuses {
		t := stats.ByStatus[status]
		fmt.Fprintf(&b, "%s: %d · %s\n", Escape(string(status)), t.Count, Escape(Money(t.Amount, "")))
	}
	fmt.Fprintf(&b, "*Total:* %d · %s", stats.TotalCount, Escape(Money(stats.TotalAmount, "")))
	return b.String()
}

// Window renders the payout window status.
func Window(w *domain.PayoutWindowStatus) string {
	if w == nil {
		return "_Window status is not loaded yet\\._"
	}
	var b strings.Builder
	if w.IsOpen {
		b.WriteString("🟢 *Payout window is open*")
	} else {
		b.WriteString("🔴 *Payout window is closed*")
	}
	if w.IsHeld {
		b.WriteString("\n🛑 Payouts are on global hold")
	}
	if w.Message != "" {
		b.WriteString("\n" + Escape(w.Message))
	}
	if w.NextOpenAt != nil {
		b.WriteString("\nNext opening: " + Escape(w.NextOpenAt.Format(timeLayout)))
	}
	return b.String()
}

// Settings renders the payout settings with the names /set accepts.
func Settings(s *domain.PayoutSettings) string {
	if s == nil {
		return "_Settings are not loaded yet\\._"
	}
	auto := "off"
	if s.AutoApproveBelow != nil {
		auto = Money(*s.AutoApproveBelow, "")
	}
	hold := "off"
	if s.GlobalHold {
		hold = "on"
		if s.HoldReason != "" {
			hold += " (" + s.HoldReason + ")"
		}
	}

	lines := []string{
		"*Payout settings*",
		"min: " + Escape(Money(s.MinWithdrawal, "")),
		"max: " + Escape(Money(s.MaxWithdrawal, "")),
		"daily: " + Escape(Money(s.DailyLimit, "")),
		"agent\\_rate: " + Escape(strconv.FormatFloat(s.AgentCommissionRate, 'f', -1, 64)) + "%",
		"chama\\_rate: " + Escape(strconv.FormatFloat(s.ChamaCommissionRate, 'f', -1, 64)) + "%",
		"window\\_start: " + Escape(s.WindowStart),
		"window\\_end: " + Escape(s.WindowEnd),
		"window\\_days: " + Escape(strings.Join(s.WindowDays, ",")),
		"auto\\_approve: " + Escape(auto),
		"global hold: " + Escape(hold),
		"",
		"Change one with /set \\<field\\> \\<value\\>",
	}
	return strings.Join(lines, "\n")
}

// Confirmation renders the generic dialog.
func Confirmation(c *payouts.Confirmation) string {
	if c == nil {
		return "_Nothing to confirm\\._"
	}
	return "❓ " + Escape(c.Message)
}

// ConfirmKeyboard holds the yes/no buttons of the generic dialog.
func ConfirmKeyboard() [][]ports.Button {
	return [][]ports.Button{{
		{Text: "✅ Confirm", Data: DataConfirmYes},
		{Text: "✖️ Cancel", Data: DataConfirmNo},
	}}
}

// RejectionPrompt asks for the reason of a single rejection, showing the
// last validation or server error when there is one.
func RejectionPrompt(r *payouts.Rejection) string {
	if r == nil {
		return "_Nothing to reject\\._"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "✍️ Send the reason for rejecting `%s` \\(%d to %d characters\\), or /cancel\\.",
		Escape(r.PayoutID), domain.MinReasonLength, domain.MaxReasonLength)
	if r.Error != "" {
		b.WriteString("\n⚠️ " + Escape(r.Error))
	}
	return b.String()
}

// Notification renders a transient notification.
func Notification(n domain.Notification) string {
	icon := "ℹ️"
	switch n.Kind {
	case domain.NotifySuccess:
		icon = "✅"
	case domain.NotifyError:
		icon = "⚠️"
	}
	return icon + " " + Escape(n.Text)
}
