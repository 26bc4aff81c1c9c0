package ports

import (
	"PayoutDesk/internal/core/domain"
	"context"
)

// PayoutAPI is the REST backend as the payout console sees it. All
// transition rules are enforced behind this port.
type PayoutAPI interface {
	ListPayouts(ctx context.Context, filter domain.PayoutFilter) (*domain.PayoutPage, error)
	GetStats(ctx context.Context) (*domain.PayoutStats, error)
	GetSettings(ctx context.Context) (*domain.PayoutSettings, error)
	UpdateSettings(ctx context.Context, settings domain.PayoutSettings) error
	SetGlobalHold(ctx context.Context, isHeld bool, reason string) error
	GetWindowStatus(ctx context.Context) (*domain.PayoutWindowStatus, error)

	// ProcessPayout requests one transition. reason is sent for reject and hold.
	ProcessPayout(ctx context.Context, payoutID string, action domain.Action, reason string) error
	// BulkProcess applies one action to many payouts in a single request.
	BulkProcess(ctx context.Context, action domain.Action, payoutIDs []string, reason string) (*domain.BulkResult, error)
}

// AuthAPI is the login surface of the backend.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*domain.LoginResult, error)
	Logout(ctx context.Context) error
}
