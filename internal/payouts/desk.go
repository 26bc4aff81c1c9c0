package payouts

import (
	"PayoutDesk/internal/core/domain"
	"PayoutDesk/internal/core/ports"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Processing keys for mutations that are not tied to one payout.
const (
	ProcessingGlobalHold = "global-hold"
	ProcessingBulk       = "bulk"
	ProcessingSettings   = "settings"
)

// Confirmation is the generic yes/no dialog.
type Confirmation struct {
	Action   domain.Action
	PayoutID string // empty for global hold and bulk
	Message  string
	Reason   string // hold reason for the global hold toggle
}

// Rejection is the reason-required modal for rejecting one payout.
type Rejection struct {
	PayoutID string
	Reason   string
	Error    string
}

// State is everything a console renders. Loading and Refreshing are never
// both true.
type State struct {
	Payouts      []domain.PayoutRequest
	Pagination   domain.Pagination
	Stats        *domain.PayoutStats
	Settings     *domain.PayoutSettings
	Window       *domain.PayoutWindowStatus
	Filter       domain.PayoutFilter
	Loading      bool
	Refreshing   bool
	Processing   string
	Selected     []string
	Confirmation *Confirmation
	Rejection    *Rejection
	Notification *domain.Notification
}

// Options tune a Desk.
type Options struct {
	PageSize         int
	NotificationTTL  time.Duration
	BulkRejectReason string
}

// Desk is the payout console of one operator chat. Network calls never run
// under the lock; the Loading, Refreshing and Processing flags are the
// guards against overlapping requests.
type Desk struct {
	chatID int64
	api    ports.PayoutAPI
	bus    ports.EventBus
	opts   Options
	log    zerolog.Logger

	mu       sync.Mutex
	state    State
	selected map[string]bool
	timer    *time.Timer
	// set when a mutation finished while a fetch was in flight
	refetchPending bool
}

// NewDesk creates an empty console for chatID.
func NewDesk(chatID int64, api ports.PayoutAPI, bus ports.EventBus, opts Options, baseLogger *zerolog.Logger) *Desk {
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	if opts.NotificationTTL <= 0 {
		opts.NotificationTTL = 5 * time.Second
	}
	if opts.BulkRejectReason == "" {
		opts.BulkRejectReason = "Bulk rejection by admin"
	}
	return &Desk{
		chatID:   chatID,
		api:      api,
		bus:      bus,
		opts:     opts,
		log:      baseLogger.With().Str("component", "payout_desk").Int64("chat_id", chatID).Logger(),
		state:    State{Filter: domain.PayoutFilter{Status: domain.StatusPending, Page: 1, Limit: opts.PageSize}},
		selected: make(map[string]bool),
	}
}

// ChatID returns the chat this console belongs to.
func (d *Desk) ChatID() int64 {
	return d.chatID
}

// --- Fetching ---

type fetchResult struct {
	page     *domain.PayoutPage
	stats    *domain.PayoutStats
	window   *domain.PayoutWindowStatus
	settings *domain.PayoutSettings
	err      error
}

// fetch runs the read calls in parallel. withSettings adds the settings call.
func (d *Desk) fetch(ctx context.Context, filter domain.PayoutFilter, withSettings bool) fetchResult {
	var (
		res  fetchResult
		wg   sync.WaitGroup
		errs [4]error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		res.page, errs[0] = d.api.ListPayouts(ctx, filter)
	}()
	go func() {
		defer wg.Done()
		res.stats, errs[1] = d.api.GetStats(ctx)
	}()
	go func() {
		defer wg.Done()
		res.window, errs[2] = d.api.GetWindowStatus(ctx)
	}()
	if withSettings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res.settings, errs[3] = d.api.GetSettings(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			res.err = err
			break
		}
	}
	return res
}

// apply stores whatever succeeded. Caller holds the lock.
func (d *Desk) apply(res fetchResult) {
	if res.page != nil {
		d.state.Payouts = res.page.Payouts
		d.state.Pagination = res.page.Pagination

		listed := make(map[string]bool, len(res.page.Payouts))
		for _, p := range res.page.Payouts {
			listed[p.ID] = true
		}
		d.pruneSelection(listed)
	}
	if res.stats != nil {
		d.state.Stats = res.stats
	}
	if res.window != nil {
		d.state.Window = res.window
	}
	if res.settings != nil {
		d.state.Settings = res.settings
	}
}

// Load is the initial load: payouts, stats, settings and window status.
func (d *Desk) Load(ctx context.Context) error {
	d.mu.Lock()
	if d.state.Loading || d.state.Refreshing {
		d.mu.Unlock()
		return domain.ErrBusy
	}
	d.state.Loading = true
	filter := d.state.Filter
	d.mu.Unlock()

	res := d.fetch(ctx, filter, true)

	d.mu.Lock()
	d.state.Loading = false
	d.apply(res)
	stale := d.refetchPending
	d.mu.Unlock()

	if res.err != nil {
		d.log.Error().Err(res.err).Msg("Initial load failed")
		d.Notify(ctx, domain.NotifyError, errorText(res.err))
		return res.err
	}
	if stale {
		d.refetchAfterMutation(ctx)
	}
	return nil
}

// Refresh re-fetches payouts, stats and window status on request.
func (d *Desk) Refresh(ctx context.Context) error {
	return d.refreshWith(ctx, nil)
}

// refreshWith applies change to the filter only once no other fetch is in
// flight, so rows and filter always agree.
func (d *Desk) refreshWith(ctx context.Context, change func(*domain.PayoutFilter)) error {
	ran, err := d.refresh(ctx, change)
	if !ran {
		return domain.ErrBusy
	}
	if err != nil {
		d.Notify(ctx, domain.NotifyError, errorText(err))
	}
	return err
}

// AutoRefresh is the periodic tick. It is silent: skips and failures are
// only logged. It reports whether a fetch ran.
func (d *Desk) AutoRefresh(ctx context.Context) bool {
	ran, err := d.refresh(ctx, nil)
	if !ran {
		d.log.Debug().Msg("Auto-refresh skipped, a fetch is already in flight")
		return false
	}
	if err != nil {
		d.log.Warn().Err(err).Msg("Auto-refresh failed")
	}
	return true
}

func (d *Desk) refresh(ctx context.Context, change func(*domain.PayoutFilter)) (bool, error) {
	d.mu.Lock()
	if d.state.Loading || d.state.Refreshing {
		d.mu.Unlock()
		return false, nil
	}
	if change != nil {
		change(&d.state.Filter)
	}
	d.state.Refreshing = true
	d.mu.Unlock()

	for {
		d.mu.Lock()
		d.refetchPending = false
		filter := d.state.Filter
		d.mu.Unlock()

		res := d.fetch(ctx, filter, false)

		d.mu.Lock()
		d.apply(res)
		again := d.refetchPending && res.err == nil
		if !again {
			d.state.Refreshing = false
		}
		d.mu.Unlock()

		if !again {
			return true, res.err
		}
	}
}

// refetchAfterMutation re-fetches now, or makes the fetch already in flight
// go around once more so it cannot return data older than the mutation.
func (d *Desk) refetchAfterMutation(ctx context.Context) {
	d.mu.Lock()
	if d.state.Loading || d.state.Refreshing {
		d.refetchPending = true
		d.mu.Unlock()
		return
	}
	d.mu.Unlock()

	if _, err := d.refresh(ctx, nil); err != nil {
		d.log.Warn().Err(err).Msg("Re-fetch after mutation failed")
	}
}

func (d *Desk) refetchSettings(ctx context.Context) {
	settings, err := d.api.GetSettings(ctx)
	if err != nil {
		d.log.Warn().Err(err).Msg("Failed to re-fetch settings")
		d.Notify(ctx, domain.NotifyError, errorText(err))
		return
	}
	d.mu.Lock()
	d.state.Settings = settings
	d.mu.Unlock()
}

// SetFilter changes the status filter (empty for all) and refreshes. While
// another fetch is in flight it returns ErrBusy and leaves the filter alone.
func (d *Desk) SetFilter(ctx context.Context, status domain.PayoutStatus) error {
	if status != "" && !status.Valid() {
		return fmt.Errorf("unknown status %q", status)
	}
	return d.refreshWith(ctx, func(f *domain.PayoutFilter) {
		f.Status = status
		f.Page = 1
	})
}

// SetPage moves to another page of the listing and refreshes.
func (d *Desk) SetPage(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}
	return d.refreshWith(ctx, func(f *domain.PayoutFilter) {
		f.Page = page
	})
}

// --- Selection ---

// ToggleSelect flips one payout in or out of the selection and reports
// whether it is now selected.
func (d *Desk) ToggleSelect(payoutID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.selected[payoutID] {
		delete(d.selected, payoutID)
		d.state.Selected = remove(d.state.Selected, payoutID)
		return false
	}
	d.selected[payoutID] = true
	d.state.Selected = append(d.state.Selected, payoutID)
	return true
}

// SelectAll selects every payout on the current page.
func (d *Desk) SelectAll() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, p := range d.state.Payouts {
		if !d.selected[p.ID] {
			d.selected[p.ID] = true
			d.state.Selected = append(d.state.Selected, p.ID)
		}
	}
	return len(d.state.Selected)
}

func (d *Desk) ClearSelection() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.clearSelection()
}

// Selected returns the selected ids in selection order.
func (d *Desk) Selected() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.state.Selected...)
}

func (d *Desk) clearSelection() {
	d.selected = make(map[string]bool)
	d.state.Selected = nil
}

func (d *Desk) pruneSelection(listed map[string]bool) {
	kept := d.state.Selected[:0]
	for _, id := range d.state.Selected {
		if listed[id] {
			kept = append(kept, id)
		} else {
			delete(d.selected, id)
		}
	}
	d.state.Selected = kept
}

func remove(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// --- Dialogs ---

// ConfirmAction opens the dialog for an operator intent. Rejecting a single
// payout always opens the rejection modal and ignores message. Everything
// else, bulk reject included, opens the generic confirmation.
func (d *Desk) ConfirmAction(action domain.Action, payoutID, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.confirm(action, payoutID, message, "")
}

// ConfirmGlobalHold opens the confirmation for flipping the global hold.
// reason is sent along when the hold is switched on.
func (d *Desk) ConfirmGlobalHold(reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.confirm(domain.ActionGlobalHold, "", "", reason)
}

func (d *Desk) confirm(action domain.Action, payoutID, message, reason string) error {
	switch {
	case payoutID != "" && action == domain.ActionReject:
		d.state.Confirmation = nil
		d.state.Rejection = &Rejection{PayoutID: payoutID}
		return nil
	case payoutID != "" && action == domain.ActionGlobalHold:
		return fmt.Errorf("%w: %s does not target a payout", domain.ErrActionNotOffered, action)
	case payoutID == "" && action != domain.ActionGlobalHold && !action.Bulkable():
		return fmt.Errorf("%w: %s cannot be applied in bulk", domain.ErrActionNotOffered, action)
	}

	if message == "" {
		message = d.defaultMessage(action, payoutID)
	}
	d.state.Rejection = nil
	d.state.Confirmation = &Confirmation{Action: action, PayoutID: payoutID, Message: message, Reason: reason}
	return nil
}

func (d *Desk) defaultMessage(action domain.Action, payoutID string) string {
	switch {
	case payoutID != "":
		return fmt.Sprintf("%s payout %s?", action.Label(), payoutID)
	case action == domain.ActionGlobalHold:
		if d.state.Settings != nil && d.state.Settings.GlobalHold {
			return "Release the global hold and resume payout processing?"
		}
		return "Put all payout processing on hold?"
	case action == domain.ActionReject:
		return fmt.Sprintf("Reject %d selected payouts? Bulk rejection cannot carry individual reasons; every payout gets %q.",
			len(d.state.Selected), d.opts.BulkRejectReason)
	default:
		return fmt.Sprintf("%s %d selected payouts?", action.Label(), len(d.state.Selected))
	}
}

// CancelConfirmation closes the generic dialog.
func (d *Desk) CancelConfirmation() {
	d.mu.Lock()
	d.state.Confirmation = nil
	d.mu.Unlock()
}

// CancelRejection closes the rejection modal.
func (d *Desk) CancelRejection() {
	d.mu.Lock()
	d.state.Rejection = nil
	d.mu.Unlock()
}

// Payout returns a listed payout by id.
func (d *Desk) Payout(id string) (domain.PayoutRequest, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.state.Payouts {
		if p.ID == id {
			return p, true
		}
	}
	return domain.PayoutRequest{}, false
}

// --- Mutations ---

type confirmMode int

const (
	modeSingle confirmMode = iota
	modeGlobalHold
	modeBulk
)

// HandleConfirmedAction runs the open confirmation against, in order: its
// payout, the global hold toggle, or the selection. An empty selection is a
// no-op. State is re-fetched after every success, never assumed.
func (d *Desk) HandleConfirmedAction(ctx context.Context) error {
	d.mu.Lock()
	c := d.state.Confirmation
	if c == nil {
		d.mu.Unlock()
		return domain.ErrNothingPending
	}
	if d.state.Processing != "" {
		d.mu.Unlock()
		return domain.ErrBusy
	}

	var (
		mode   confirmMode
		key    string
		ids    []string
		isHeld bool
	)
	switch {
	case c.PayoutID != "":
		mode, key = modeSingle, c.PayoutID
	case c.Action == domain.ActionGlobalHold:
		if d.state.Settings == nil {
			d.mu.Unlock()
			err := errors.New("payout settings are not loaded yet")
			d.Notify(ctx, domain.NotifyError, err.Error())
			return err
		}
		mode, key = modeGlobalHold, ProcessingGlobalHold
		isHeld = !d.state.Settings.GlobalHold
	default:
		ids = append([]string(nil), d.state.Selected...)
		if len(ids) == 0 {
			d.state.Confirmation = nil
			d.mu.Unlock()
			return nil
		}
		mode, key = modeBulk, ProcessingBulk
	}
	d.state.Confirmation = nil
	d.state.Processing = key
	d.mu.Unlock()

	log := d.log.With().Str("action", string(c.Action)).Str("target", key).Logger()

	var (
		err     error
		success string
	)
	switch mode {
	case modeSingle:
		err = d.api.ProcessPayout(ctx, c.PayoutID, c.Action, "")
		success = fmt.Sprintf("Payout %s: %s done", c.PayoutID, c.Action.Label())
	case modeGlobalHold:
		reason := ""
		if isHeld {
			reason = c.Reason
		}
		err = d.api.SetGlobalHold(ctx, isHeld, reason)
		success = "Global hold released"
		if isHeld {
			success = "Global hold enabled"
		}
	case modeBulk:
		reason := ""
		if c.Action == domain.ActionReject {
			reason = d.opts.BulkRejectReason
		}
		var result *domain.BulkResult
		result, err = d.api.BulkProcess(ctx, c.Action, ids, reason)
		if err == nil {
			success = fmt.Sprintf("%s: %d processed", c.Action.Label(), result.Processed)
			if len(result.Failed) > 0 {
				success += fmt.Sprintf(", %d failed", len(result.Failed))
			}
		}
	}

	d.mu.Lock()
	d.state.Processing = ""
	if err == nil && mode == modeBulk {
		d.clearSelection()
	}
	d.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("Confirmed action failed")
		d.Notify(ctx, domain.NotifyError, errorText(err))
		return err
	}

	log.Info().Msg("Confirmed action succeeded")
	d.Notify(ctx, domain.NotifySuccess, success)
	if mode == modeGlobalHold {
		d.refetchSettings(ctx)
	}
	d.refetchAfterMutation(ctx)
	return nil
}

// HandleRejectionConfirm validates the reason and rejects the payout. On any
// failure the modal stays open with the entered reason and the error.
func (d *Desk) HandleRejectionConfirm(ctx context.Context, payoutID, reason string) error {
	d.mu.Lock()
	r := d.state.Rejection
	if r == nil || r.PayoutID != payoutID {
		d.mu.Unlock()
		return domain.ErrNothingPending
	}
	r.Reason = reason

	trimmed, err := domain.ValidateReason(reason)
	if err != nil {
		r.Error = err.Error()
		d.mu.Unlock()
		return err
	}
	if d.state.Processing != "" {
		r.Error = domain.ErrBusy.Error()
		d.mu.Unlock()
		return domain.ErrBusy
	}
	r.Error = ""
	d.state.Processing = payoutID
	d.mu.Unlock()

	err = d.api.ProcessPayout(ctx, payoutID, domain.ActionReject, trimmed)

	d.mu.Lock()
	d.state.Processing = ""
	if err != nil {
		if d.state.Rejection != nil && d.state.Rejection.PayoutID == payoutID {
			d.state.Rejection.Error = errorText(err)
		}
	} else {
		d.state.Rejection = nil
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error().Err(err).Str("payout_id", payoutID).Msg("Rejection failed")
		d.Notify(ctx, domain.NotifyError, errorText(err))
		return err
	}

	d.log.Info().Str("payout_id", payoutID).Msg("Payout rejected")
	d.Notify(ctx, domain.NotifySuccess, fmt.Sprintf("Payout %s rejected", payoutID))
	d.refetchAfterMutation(ctx)
	return nil
}

// SaveSettings validates and submits settings. Invalid input never reaches
// the backend.
func (d *Desk) SaveSettings(ctx context.Context, settings domain.PayoutSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	d.mu.Lock()
	if d.state.Processing != "" {
		d.mu.Unlock()
		return domain.ErrBusy
	}
	d.state.Processing = ProcessingSettings
	d.mu.Unlock()

	err := d.api.UpdateSettings(ctx, settings)

	d.mu.Lock()
	d.state.Processing = ""
	d.mu.Unlock()

	if err != nil {
		d.log.Error().Err(err).Msg("Saving settings failed")
		d.Notify(ctx, domain.NotifyError, errorText(err))
		return err
	}
	d.Notify(ctx, domain.NotifySuccess, "Payout settings saved")
	d.refetchSettings(ctx)
	return nil
}

// --- Notifications ---

// Notify shows a transient notification and publishes it for delivery. It
// clears itself after the configured TTL unless replaced first.
func (d *Desk) Notify(ctx context.Context, kind domain.NotificationKind, text string) {
	now := time.Now()
	n := domain.Notification{
		ID:        uuid.NewString(),
		Kind:      kind,
		Text:      text,
		CreatedAt: now,
		ExpiresAt: now.Add(d.opts.NotificationTTL),
	}

	d.mu.Lock()
	d.state.Notification = &n
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.opts.NotificationTTL, func() { d.expire(n.ID) })
	d.mu.Unlock()

	if d.bus == nil {
		return
	}
	event := domain.NotificationEvent{ChatID: d.chatID, Notification: n}
	if err := d.bus.Publish(ctx, ports.TopicNotification, event); err != nil {
		d.log.Error().Err(err).Msg("Failed to publish notification")
	}
}

// DismissNotification clears the current notification.
func (d *Desk) DismissNotification() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Notification = nil
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Desk) expire(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.state.Notification != nil && d.state.Notification.ID == id {
		d.state.Notification = nil
	}
}

// Close stops the notification timer.
func (d *Desk) Close() {
	d.DismissNotification()
}

// --- Rendering ---

// Snapshot returns a copy of the state that is safe to read without the lock.
func (d *Desk) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	s.Payouts = append([]domain.PayoutRequest(nil), d.state.Payouts...)
	s.Selected = append([]string(nil), d.state.Selected...)
	s.Settings = d.state.Settings.Clone()
	if d.state.Confirmation != nil {
		c := *d.state.Confirmation
		s.Confirmation = &c
	}
	if d.state.Rejection != nil {
		r := *d.state.Rejection
		s.Rejection = &r
	}
	if d.state.Notification != nil {
		n := *d.state.Notification
		s.Notification = &n
	}
	return s
}

// errorText is what operators see for a failed call: the server's message
// when there is one.
func errorText(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		return "Session expired or not authorized: " + err.Error()
	}
	return err.Error()
}
