package utils

import "time"

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

// BookingWindowDays is how far ahead a booking date may lie.
const BookingWindowDays = 30

// ClinicLocation returns the clinic's timezone. Falls back to UTC if tzdata
// is unavailable.
func ClinicLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Manila")
	if err != nil {
		return time.UTC
	}
	return loc
}

// WithinBookingWindow reports whether date (YYYY-MM-DD) lies in
// [today, today+30] in clinic time. This is the input-boundary check; the
// slot resolver itself does not re-validate.
func WithinBookingWindow(date string, now time.Time) bool {
	d, err := time.ParseInLocation(DateLayout, date, ClinicLocation())
	if err != nil {
		return false
	}
	local := now.In(ClinicLocation())
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, ClinicLocation())
	return !d.Before(today) && !d.After(today.AddDate(0, 0, BookingWindowDays))
}
