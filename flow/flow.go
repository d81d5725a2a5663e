package flow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/nucares/booking-gateway/models"
)

// API is the slice of the clinic API the booking flow depends on.
// clinic.Client satisfies it; tests supply scripted fakes.
type API interface {
	Profile(ctx context.Context) (models.UserProfile, error)
	CheckAvailability(ctx context.Context, account models.AccountType, service models.ServiceType, course string) (models.EligibilityResult, error)
	AvailableSlots(ctx context.Context, date string, service models.ServiceType) ([]models.TimeSlot, error)
	CreateAppointment(ctx context.Context, booking models.BookingRequest) (models.BookingOutcome, error)
}

// State is the flow's view state. Transitions fire only on completion of
// upstream calls, never on timers.
type State string

const (
	StateLoading             State = "loading"
	StateCheckingEligibility State = "checking_eligibility"
	StateUnavailable         State = "unavailable"
	StateReady               State = "ready"
	StateSubmitting          State = "submitting"
)

// SlotArea is the slot picker's presentation state. The three message states
// are mutually exclusive; "slots" means the fetched set is non-empty.
type SlotArea string

const (
	SlotAreaPickDate SlotArea = "pick_date"
	SlotAreaLoading  SlotArea = "loading"
	SlotAreaEmpty    SlotArea = "empty"
	SlotAreaSlots    SlotArea = "slots"
)

var (
	ErrBusy           = errors.New("flow: a submission is in flight")
	ErrNotEligible    = errors.New("flow: booking is not currently available")
	ErrSlotNotOffered = errors.New("flow: time is not among the offered slots")
	ErrNotReady       = errors.New("flow: date, time and reason are required before submitting")
)

// User-facing fallback messages. The eligibility gate fails closed: when the
// upstream cannot confirm availability, booking is refused, never permitted.
const (
	MsgGateUnreachable = "Unable to verify appointment availability. Please contact the clinic."
	MsgSlotsFailed     = "Failed to load available time slots. Please try again."
	MsgSubmitFailed    = "Failed to book the appointment. Please try again."
	MsgBooked          = "Appointment booked successfully."
)

// Flow drives one user's booking workflow: eligibility gate, slot resolver
// and booking submitter behind a single view state machine. All state is
// guarded by mu; upstream calls run outside the lock and their results are
// applied only if the triggering parameters are still current on arrival
// (sequence guards), so a superseded response can never clobber newer state.
// State transitions happen under the same lock acquisition as the checks
// that allow them, so a submission in flight cannot be overwritten by a
// concurrent re-check.
type Flow struct {
	api API

	mu      sync.Mutex
	state   State
	profile models.UserProfile
	service models.ServiceType

	elig    *models.EligibilityResult
	eligSeq uint64

	date         string
	slots        []models.TimeSlot
	slotsLoading bool
	slotErr      string
	slotSeq      uint64

	selectedTime models.TimeSlot
	reason       string

	submitErr  string
	successMsg string
}

// Begin fetches the user's profile and runs the initial eligibility check for
// the given service. The profile is fetched once and lives for the flow's
// lifetime.
func Begin(ctx context.Context, api API, service models.ServiceType) (*Flow, error) {
	f := &Flow{api: api, state: StateLoading, service: service}

	profile, err := api.Profile(ctx)
	if err != nil {
		return nil, err
	}
	f.profile = profile

	f.mu.Lock()
	seq := f.beginGateLocked()
	f.mu.Unlock()

	f.finishGate(ctx, seq, profile, service)
	return f, nil
}

// Profile returns the immutable profile the flow was started with.
func (f *Flow) Profile() models.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile
}

// SetService switches the service type and re-runs the eligibility gate. The
// previous eligibility result is never reused, and any slot selection is
// dropped with the slot set it came from.
func (f *Flow) SetService(ctx context.Context, service models.ServiceType) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	f.service = service
	f.selectedTime = ""
	f.slots = nil
	f.slotsLoading = false
	f.slotErr = ""
	f.submitErr = ""
	f.successMsg = ""
	seq := f.beginGateLocked()
	profile := f.profile
	f.mu.Unlock()

	f.finishGate(ctx, seq, profile, service)
	return nil
}

// Recheck re-runs the eligibility gate for the current service, the
// "unavailable" screen's retry action.
func (f *Flow) Recheck(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	service := f.service
	profile := f.profile
	seq := f.beginGateLocked()
	f.mu.Unlock()

	f.finishGate(ctx, seq, profile, service)
	return nil
}

// SetDate selects a booking date and resolves its slots. The previously
// selected time is cleared unconditionally: its validity was tied to the old
// query and must not survive even if the new set contains the same value.
// Window validation ([today, today+30]) belongs to the input boundary.
func (f *Flow) SetDate(ctx context.Context, date string) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if f.state != StateReady {
		f.mu.Unlock()
		return ErrNotEligible
	}
	f.date = date
	f.selectedTime = ""
	f.slots = nil
	f.slotErr = ""
	f.successMsg = ""
	if date == "" {
		f.slotsLoading = false
		f.mu.Unlock()
		return nil
	}
	f.slotsLoading = true
	f.slotSeq++
	seq := f.slotSeq
	service := f.service
	f.mu.Unlock()

	f.resolveSlots(ctx, seq, date, service)
	return nil
}

// SetTime selects a slot. The value must come from the current slot set.
func (f *Flow) SetTime(t models.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrBusy
	}
	if f.state != StateReady {
		return ErrNotEligible
	}
	for _, s := range f.slots {
		if s == t {
			f.selectedTime = t
			return nil
		}
	}
	return ErrSlotNotOffered
}

// SetReason stores the booking reason. Emptiness and length are enforced at
// submit readiness, not here, so partial typing is fine.
func (f *Flow) SetReason(reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitting {
		return ErrBusy
	}
	if f.state != StateReady {
		return ErrNotEligible
	}
	f.reason = reason
	return nil
}

// Submit re-verifies eligibility and posts the booking. At most one
// submission is in flight at a time; a second call while submitting gets
// ErrBusy. The booking POST never fires when the gate refuses at submit time
// (server state may have changed since the last check) or when any required
// field is missing.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.state == StateSubmitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if !f.canSubmitLocked() {
		f.mu.Unlock()
		return ErrNotReady
	}
	f.state = StateSubmitting
	f.submitErr = ""
	f.successMsg = ""
	profile := f.profile
	service := f.service
	date := f.date
	slot := f.selectedTime
	reason := strings.TrimSpace(f.reason)
	f.mu.Unlock()

	// Confirm-then-commit guard: the earlier result may be stale.
	gate := f.gate(ctx, profile, service)
	if !gate.Available {
		f.mu.Lock()
		f.state = StateReady
		f.submitErr = gate.Message
		f.mu.Unlock()
		return nil
	}

	booking := models.BookingRequest{
		UserID:      profile.ID,
		DisplayName: profile.DisplayName,
		ContactID:   profile.ContactID(),
		ServiceType: service,
		Date:        date,
		Time:        slot,
		Reason:      reason,
	}
	outcome, err := f.api.CreateAppointment(ctx, booking)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = StateReady
	if err != nil {
		f.submitErr = MsgSubmitFailed
		return nil
	}
	if !outcome.Success {
		f.submitErr = outcome.Message
		if f.submitErr == "" {
			f.submitErr = MsgSubmitFailed
		}
		return nil
	}

	// Success clears the form but keeps service and eligibility, so a second
	// booking of the same type needs no fresh gate pass.
	f.date = ""
	f.selectedTime = ""
	f.reason = ""
	f.slots = nil
	f.slotErr = ""
	f.successMsg = outcome.Message
	if f.successMsg == "" {
		f.successMsg = MsgBooked
	}
	return nil
}

// beginGateLocked marks the flow as checking eligibility and claims a fresh
// sequence. Callers hold mu, so the transition shares the lock acquisition
// with the busy check that allowed it.
func (f *Flow) beginGateLocked() uint64 {
	f.state = StateCheckingEligibility
	f.eligSeq++
	return f.eligSeq
}

// finishGate performs the eligibility check claimed by beginGateLocked. A
// response arriving after a newer check or a service switch is discarded.
func (f *Flow) finishGate(ctx context.Context, seq uint64, profile models.UserProfile, service models.ServiceType) {
	result := f.gate(ctx, profile, service)

	f.mu.Lock()
	if seq != f.eligSeq || service != f.service {
		f.mu.Unlock()
		return // superseded
	}
	f.elig = &result
	if result.Available {
		f.state = StateReady
	} else {
		f.state = StateUnavailable
		f.slotsLoading = false
		f.slotSeq++ // discard any slot fetch still in flight
	}
	date := f.date
	refetch := result.Available && date != ""
	var slotSeq uint64
	if refetch {
		f.slotsLoading = true
		f.slotErr = ""
		f.slotSeq++
		slotSeq = f.slotSeq
	}
	f.mu.Unlock()

	if refetch {
		f.resolveSlots(ctx, slotSeq, date, service)
	}
}

// gate calls the upstream availability check and fails closed: a transport
// failure, rejection or malformed response all read as unavailable.
func (f *Flow) gate(ctx context.Context, profile models.UserProfile, service models.ServiceType) models.EligibilityResult {
	result, err := f.api.CheckAvailability(ctx, profile.AccountType, service, profile.Course)
	if err != nil {
		return models.EligibilityResult{Available: false, Message: MsgGateUnreachable}
	}
	if !result.Available && result.Message == "" {
		result.Message = MsgGateUnreachable
	}
	return result
}

// resolveSlots fetches slots for one (date, service) query and applies the
// result only if that query is still current. A failed fetch reads as an
// empty set with a surfaced error.
func (f *Flow) resolveSlots(ctx context.Context, seq uint64, date string, service models.ServiceType) {
	slots, err := f.api.AvailableSlots(ctx, date, service)

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.slotSeq || date != f.date || service != f.service {
		return // superseded
	}
	f.slotsLoading = false
	if err != nil {
		f.slots = nil
		f.slotErr = MsgSlotsFailed
		return
	}
	f.slots = slots
}

func (f *Flow) canSubmitLocked() bool {
	if f.state != StateReady || f.elig == nil || !f.elig.Available {
		return false
	}
	reason := strings.TrimSpace(f.reason)
	if f.date == "" || f.selectedTime == "" || reason == "" {
		return false
	}
	return utf8.RuneCountInString(reason) <= models.MaxReasonLen
}
