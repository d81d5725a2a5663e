package models

// EligibilityResult is the gate's answer for one (profile, service) pair. It
// is produced fresh on every check and never reused across a service switch.
type EligibilityResult struct {
	Available bool   `json:"available"`
	Message   string `json:"message,omitempty"` // required when not available
}

// TimeSlot is an opaque HH:MM value, bookable only for the (date, service)
// query that produced it.
type TimeSlot string

// BookingRequest is assembled transiently inside the submit step, after
// eligibility and slot validity have been reconfirmed.
type BookingRequest struct {
	UserID      uint        `json:"user_id"`
	DisplayName string      `json:"name"`
	ContactID   string      `json:"contact_id"`
	ServiceType ServiceType `json:"service_type"`
	Date        string      `json:"date"` // YYYY-MM-DD
	Time        TimeSlot    `json:"time"`
	Reason      string      `json:"reason"`
}

// BookingOutcome is terminal for one submission attempt.
type BookingOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// MaxReasonLen bounds the free-text reason on a booking.
const MaxReasonLen = 1000
