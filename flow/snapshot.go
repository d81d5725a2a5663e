package flow

import "github.com/nucares/booking-gateway/models"

// Snapshot is a consistent read of the flow for the HTTP surface.
type Snapshot struct {
	State          State                     `json:"state"`
	Service        models.ServiceType        `json:"service_type"`
	Profile        models.UserProfile        `json:"profile"`
	Eligibility    *models.EligibilityResult `json:"eligibility,omitempty"`
	Date           string                    `json:"date"`
	Slots          []models.TimeSlot         `json:"slots"`
	SlotArea       SlotArea                  `json:"slot_area"`
	SlotError      string                    `json:"slot_error,omitempty"`
	SelectedTime   models.TimeSlot           `json:"selected_time"`
	Reason         string                    `json:"reason"`
	CanSubmit      bool                      `json:"can_submit"`
	SubmitError    string                    `json:"submit_error,omitempty"`
	SuccessMessage string                    `json:"success_message,omitempty"`
}

// Snapshot returns the current view state.
func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()

	snap := Snapshot{
		State:          f.state,
		Service:        f.service,
		Profile:        f.profile,
		Date:           f.date,
		Slots:          append([]models.TimeSlot(nil), f.slots...),
		SlotArea:       f.slotAreaLocked(),
		SlotError:      f.slotErr,
		SelectedTime:   f.selectedTime,
		Reason:         f.reason,
		CanSubmit:      f.canSubmitLocked(),
		SubmitError:    f.submitErr,
		SuccessMessage: f.successMsg,
	}
	if f.elig != nil {
		e := *f.elig
		snap.Eligibility = &e
	}
	return snap
}

// slotAreaLocked derives the slot picker's presentation state. The three
// message states are mutually exclusive and exhaustive for an empty set.
func (f *Flow) slotAreaLocked() SlotArea {
	switch {
	case f.date == "":
		return SlotAreaPickDate
	case f.slotsLoading:
		return SlotAreaLoading
	case len(f.slots) == 0:
		return SlotAreaEmpty
	default:
		return SlotAreaSlots
	}
}
