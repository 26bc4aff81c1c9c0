package rest

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

var (
	_ ports.PayoutAPI = (*Client)(nil)
	_ ports.AuthAPI   = (*Client)(nil)
)

// --- Wire types ---
// Everything the backend sends is optional until proven otherwise.

type wirePayout struct {
	ID              *string    `json:"id"`
	MongoID         *string    `json:"_id"`
	Amount          *float64   `json:"amount"`
	Currency        *string    `json:"currency"`
	Method          *string    `json:"method"`
	Status          *string    `json:"status"`
	AgentID         *string    `json:"agentId"`
	ChamaID         *string    `json:"chamaId"`
	RecipientName   *string    `json:"recipientName"`
	PhoneNumber     *string    `json:"phoneNumber"`
	BankAccount     *string    `json:"bankAccount"`
	RejectionReason *string    `json:"rejectionReason"`
	HoldReason      *string    `json:"holdReason"`
	RequestedAt     *time.Time `json:"requestedAt"`
	CreatedAt       *time.Time `json:"createdAt"`
	ProcessedAt     *time.Time `json:"processedAt"`
}

type wirePagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type wirePayoutList struct {
	Payouts    []wirePayout    `json:"payouts"`
	Pagination *wirePagination `json:"pagination"`
}

type wireTotals struct {
	Count  *int     `json:"count"`
	Amount *float64 `json:"amount"`
}

type wireWindow struct {
	Start *string  `json:"start"`
	End   *string  `json:"end"`
	Days  []string `json:"days"`
}

type wireSettings struct {
	MinWithdrawal       *float64    `json:"minWithdrawal"`
	MaxWithdrawal       *float64    `json:"maxWithdrawal"`
	DailyLimit          *float64    `json:"dailyLimit"`
	AgentCommissionRate *float64    `json:"agentCommissionRate"`
	ChamaCommissionRate *float64    `json:"chamaCommissionRate"`
	PayoutWindow        *wireWindow `json:"payoutWindow"`
	AutoApproveBelow    *float64    `json:"autoApproveBelow,omitempty"`
	IsHeld              *bool       `json:"isHeld,omitempty"`
	HoldReason          *string     `json:"holdReason,omitempty"`
	UpdatedAt           *time.Time  `json:"updatedAt,omitempty"`
}

type wireWindowStatus struct {
	IsOpen     *bool      `json:"isOpen"`
	IsHeld     *bool      `json:"isHeld"`
	Message    *string    `json:"message"`
	NextOpenAt *time.Time `json:"nextOpenAt"`
}

type wireBulkResult struct {
	Processed *int     `json:"processed"`
	Failed    []string `json:"failed"`
}

type wireLogin struct {
	Token *string           `json:"token"`
	User  *domain.AdminUser `json:"user"`
}

// --- Boundary parsing ---

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// toDomain validates a payout row. Rows that break the contract are refused.
func (w wirePayout) toDomain() (domain.PayoutRequest, error) {
	id := str(w.ID)
	if id == "" {
		id = str(w.MongoID)
	}
	if id == "" {
		return domain.PayoutRequest{}, errors.New("payout without id")
	}
	if w.Amount == nil {
		return domain.PayoutRequest{}, fmt.Errorf("payout %s: missing amount", id)
	}

	method := domain.PayoutMethod(str(w.Method))
	if !method.Valid() {
		return domain.PayoutRequest{}, fmt.Errorf("payout %s: unknown method %q", id, str(w.Method))
	}
	status := domain.PayoutStatus(str(w.Status))
	if !status.Valid() {
		return domain.PayoutRequest{}, fmt.Errorf("payout %s: unknown status %q", id, str(w.Status))
	}

	agentID, chamaID := str(w.AgentID), str(w.ChamaID)
	if (agentID == "") == (chamaID == "") {
		return domain.PayoutRequest{}, fmt.Errorf("payout %s: exactly one of agentId and chamaId must be set", id)
	}

	requestedAt := w.RequestedAt
	if requestedAt == nil {
		requestedAt = w.CreatedAt
	}
	if requestedAt == nil {
		return domain.PayoutRequest{}, fmt.Errorf("payout %s: missing requestedAt", id)
	}

	p := domain.PayoutRequest{
		ID:            id,
		Amount:        *w.Amount,
		Currency:      str(w.Currency),
		Method:        method,
		Status:        status,
		AgentID:       agentID,
		ChamaID:       chamaID,
		RecipientName: str(w.RecipientName),
		PhoneNumber:   w.PhoneNumber,
		BankAccount:   w.BankAccount,
		HoldReason:    w.HoldReason,
		RequestedAt:   *requestedAt,
		ProcessedAt:   w.ProcessedAt,
	}
	if p.Currency == "" {
		p.Currency = "KES"
	}
	// A rejection reason only means something on a rejected payout.
	if status == domain.StatusRejected {
		p.RejectionReason = w.RejectionReason
	}
	return p, nil
}

func (w wireSettings) toDomain() (*domain.PayoutSettings, error) {
	if w.MinWithdrawal == nil || w.MaxWithdrawal == nil {
		return nil, errors.New("settings: missing withdrawal limits")
	}
	if w.PayoutWindow == nil || w.PayoutWindow.Start == nil || w.PayoutWindow.End == nil {
		return nil, errors.New("settings: missing payout window")
	}

	s := &domain.PayoutSettings{
		MinWithdrawal:    *w.MinWithdrawal,
		MaxWithdrawal:    *w.MaxWithdrawal,
		WindowStart:      *w.PayoutWindow.Start,
		WindowEnd:        *w.PayoutWindow.End,
		WindowDays:       append([]string(nil), w.PayoutWindow.Days...),
		AutoApproveBelow: w.AutoApproveBelow,
		HoldReason:       str(w.HoldReason),
		UpdatedAt:        w.UpdatedAt,
	}
	if w.DailyLimit != nil {
		s.DailyLimit = *w.DailyLimit
	} else {
		s.DailyLimit = s.MaxWithdrawal
	}
	if w.AgentCommissionRate != nil {
		s.AgentCommissionRate = *w.AgentCommissionRate
	}
	if w.ChamaCommissionRate != nil {
		s.ChamaCommissionRate = *w.ChamaCommissionRate
	}
	if w.IsHeld != nil {
		s.GlobalHold = *w.IsHeld
	}
	return s, nil
}

func settingsToWire(s domain.PayoutSettings) wireSettings {
	start, end := s.WindowStart, s.WindowEnd
	return wireSettings{
		MinWithdrawal:       &s.MinWithdrawal,
		MaxWithdrawal:       &s.MaxWithdrawal,
		DailyLimit:          &s.DailyLimit,
		AgentCommissionRate: &s.AgentCommissionRate,
		ChamaCommissionRate: &s.ChamaCommissionRate,
		PayoutWindow:        &wireWindow{Start: &start, End: &end, Days: s.WindowDays},
		AutoApproveBelow:    s.AutoApproveBelow,
	}
}

// --- PayoutAPI ---

// ListPayouts fetches one page. Rows that fail validation are dropped and
// logged so one bad record does not blank the console.
func (c *Client) ListPayouts(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutPage, error) {
	query := url.Values{}
	if filter.Status != "" {
		query.Set("status", string(filter.Status))
	}
	if filter.Method != "" {
		query.Set("method", string(filter.Method))
	}
	if filter.Page > 0 {
		query.Set("page", strconv.Itoa(filter.Page))
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var list wirePayoutList
	if err := c.do(ctx, http.MethodGet, "/admin/payouts", query, nil, &list); err != nil {
		return nil, err
	}

	page := &domain.PayoutPage{Payouts: make([]domain.PayoutRequest, 0, len(list.Payouts))}
	for _, w := range list.Payouts {
		p, err := w.toDomain()
		if err != nil {
			c.log.Warn().Err(err).Msg("Dropping payout row that breaks the contract")
			continue
		}
		page.Payouts = append(page.Payouts, p)
	}

	if list.Pagination != nil {
		page.Pagination = domain.Pagination(*list.Pagination)
	} else {
		page.Pagination = domain.Pagination{Page: 1, Limit: len(page.Payouts), Total: len(page.Payouts)}
	}
	return page, nil
}

func (c *Client) GetStats(ctx context.Context) (*domain.PayoutStats, error) {
	var raw map[string]json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/admin/payouts/stats", nil, nil, &raw); err != nil {
		return nil, err
	}

	stats := &domain.PayoutStats{ByStatus: make(map[domain.PayoutStatus]domain.StatusTotals)}
	var total *wireTotals
	for key, msg := range raw {
		var w wireTotals
		if err := json.Unmarshal(msg, &w); err != nil {
			c.log.Debug().Str("key", key).Msg("Ignoring non-bucket stats field")
			continue
		}
		if key == "total" {
			total = &w
			continue
		}
		status := domain.PayoutStatus(key)
		if !status.Valid() {
			c.log.Debug().Str("key", key).Msg("Ignoring unknown stats bucket")
			continue
		}
		t := domain.StatusTotals{}
		if w.Count != nil {
			t.Count = *w.Count
		}
		if w.Amount != nil {
			t.Amount = *w.Amount
		}
		stats.ByStatus[status] = t
		stats.TotalCount += t.Count
		stats.TotalAmount += t.Amount
	}
	if total != nil && total.Count != nil && total.Amount != nil {
		stats.TotalCount = *total.Count
		stats.TotalAmount = *total.Amount
	}
	return stats, nil
}

func (c *Client) GetSettings(ctx context.Context) (*domain.PayoutSettings, error) {
	var w wireSettings
	if err := c.do(ctx, http.MethodGet, "/admin/payouts/settings", nil, nil, &w); err != nil {
		return nil, err
	}
	s, err := w.toDomain()
	if err != nil {
		c.log.Error().Err(err).Msg("Backend sent invalid settings")
		return nil, &APIError{Status: http.StatusOK, Message: "server sent invalid payout settings", cause: err}
	}
	return s, nil
}

func (c *Client) UpdateSettings(ctx context.Context, settings domain.PayoutSettings) error {
	return c.do(ctx, http.MethodPut, "/admin/payouts/settings", nil, settingsToWire(settings), nil)
}

func (c *Client) SetGlobalHold(ctx context.Context, isHeld bool, reason string) error {
	body := map[string]interface{}{"isHeld": isHeld}
	if reason != "" {
		body["reason"] = reason
	}
	return c.do(ctx, http.MethodPut, "/admin/payouts/settings/hold", nil, body, nil)
}

func (c *Client) GetWindowStatus(ctx context.Context) (*domain.PayoutWindowStatus, error) {
	var w wireWindowStatus
	if err := c.do(ctx, http.MethodGet, "/admin/payouts/window-status", nil, nil, &w); err != nil {
		return nil, err
	}
	if w.IsOpen == nil {
		return nil, &APIError{Status: http.StatusOK, Message: "server sent invalid window status"}
	}
	status := &domain.PayoutWindowStatus{
		IsOpen:     *w.IsOpen,
		Message:    str(w.Message),
		NextOpenAt: w.NextOpenAt,
	}
	if w.IsHeld != nil {
		status.IsHeld = *w.IsHeld
	}
	return status, nil
}

func (c *Client) ProcessPayout(ctx context.Context, payoutID string, action domain.Action, reason string) error {
	if action == domain.ActionGlobalHold {
		return fmt.Errorf("%s is not a per-payout action", action)
	}
	path := fmt.Sprintf("/admin/payouts/%s/%s", url.PathEscape(payoutID), action)

	var body interface{}
	if reason != "" {
		body = map[string]string{"reason": reason}
	}
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}

func (c *Client) BulkProcess(ctx context.Context, action domain.Action, payoutIDs []string, reason string) (*domain.BulkResult, error) {
	body := map[string]interface{}{
		"action":    action,
		"payoutIds": payoutIDs,
	}
	if reason != "" {
		body["reason"] = reason
	}

	var w wireBulkResult
	if err := c.do(ctx, http.MethodPost, "/admin/payouts/bulk", nil, body, &w); err != nil {
		return nil, err
	}

	result := &domain.BulkResult{Failed: w.Failed}
	if w.Processed != nil {
		result.Processed = *w.Processed
	} else {
		result.Processed = len(payoutIDs) - len(w.Failed)
	}
	return result, nil
}

// --- AuthAPI ---

func (c *Client) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	body := map[string]string{"email": email, "password": password}

	var w wireLogin
	if err := c.do(ctx, http.MethodPost, "/admin/auth/login", nil, body, &w); err != nil {
		return nil, err
	}
	if w.Token == nil || *w.Token == "" {
		return nil, &APIError{Status: http.StatusOK, Message: "login response carried no token"}
	}

	result := &domain.LoginResult{Token: *w.Token}
	if w.User != nil {
		result.User = *w.User
	} else {
		result.User = domain.AdminUser{Email: email}
	}
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/admin/auth/logout", nil, nil, nil)
}
