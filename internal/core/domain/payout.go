package domain

import (
	"time"
)

// PayoutStatus is the server-side lifecycle state of a payout request.
type PayoutStatus string

const (
	StatusPending  PayoutStatus = "pending"
	StatusApproved PayoutStatus = "approved"
	StatusPaid     PayoutStatus = "paid"
	StatusRejected PayoutStatus = "rejected"
	StatusOnHold   PayoutStatus = "on_hold"
)

// Valid reports whether s is one of the known statuses.
func (s PayoutStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusPaid, StatusRejected, StatusOnHold:
		return true
	}
	return false
}

// Terminal reports whether no further action can apply.
func (s PayoutStatus) Terminal() bool {
	return s == StatusPaid || s == StatusRejected
}

// AllStatuses lists statuses in display order.
var AllStatuses = []PayoutStatus{StatusPending, StatusApproved, StatusOnHold, StatusPaid, StatusRejected}

// PayoutMethod is how the money leaves the platform.
type PayoutMethod string

const (
	MethodMpesa PayoutMethod = "mpesa"
	MethodBank  PayoutMethod = "bank"
)

func (m PayoutMethod) Valid() bool {
	return m == MethodMpesa || m == MethodBank
}

// PayoutSource identifies who asked for the money.
type PayoutSource string

const (
	SourceAgent PayoutSource = "agent"
	SourceChama PayoutSource = "chama"
)

// PayoutRequest is an agent- or chama-sourced withdrawal request.
// Exactly one of AgentID and ChamaID is set.
type PayoutRequest struct {
	ID              string
	Amount          float64
	Currency        string
	Method          PayoutMethod
	Status          PayoutStatus
	AgentID         string
	ChamaID         string
	RecipientName   string
	PhoneNumber     *string // mpesa only
	BankAccount     *string // bank only
	RejectionReason *string // set only when Status == rejected
	HoldReason      *string
	RequestedAt     time.Time
	ProcessedAt     *time.Time
}

// Source returns which kind of account requested the payout.
func (p *PayoutRequest) Source() PayoutSource {
	if p.ChamaID != "" {
		return SourceChama
	}
	return SourceAgent
}

// SourceID returns the agent or chama id, whichever is set.
func (p *PayoutRequest) SourceID() string {
	if p.ChamaID != "" {
		return p.ChamaID
	}
	return p.AgentID
}

// PayoutFilter narrows the payout listing.
type PayoutFilter struct {
	Status PayoutStatus // empty means all
	Method PayoutMethod // empty means all
	Page   int
	Limit  int
}

// Pagination mirrors the backend paging block.
type Pagination struct {
	Page  int
	Limit int
	Total int
}

// PayoutPage is one page of payouts.
type PayoutPage struct {
	Payouts    []PayoutRequest
	Pagination Pagination
}

// StatusTotals is a count and amount for one status.
type StatusTotals struct {
	Count  int
	Amount float64
}

// PayoutStats is recomputed by the server on each fetch. Never mutate it.
type PayoutStats struct {
	ByStatus    map[PayoutStatus]StatusTotals
	TotalCount  int
	TotalAmount float64
}

// PayoutWindowStatus tells whether processing is currently permitted.
type PayoutWindowStatus struct {
	IsOpen     bool
	IsHeld     bool
	Message    string
	NextOpenAt *time.Time
}

// BulkResult reports how a bulk request went.
type BulkResult struct {
	Processed int
	Failed    []string
}
