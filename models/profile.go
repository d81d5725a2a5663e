package models

import (
	"fmt"
	"strings"
)

type AccountType string

const (
	AccountStudent  AccountType = "Student"
	AccountEmployee AccountType = "Employee"
)

// UserProfile is the identity the booking flow works with. It is built once
// from the clinic API's /user payload and immutable for the flow's lifetime.
type UserProfile struct {
	ID            uint        `json:"id"`
	DisplayName   string      `json:"display_name"`
	AccountType   AccountType `json:"account_type"`
	Course        string      `json:"course,omitempty"` // students only
	StudentNumber string      `json:"student_number,omitempty"`
	EmployeeID    string      `json:"employee_id,omitempty"`
}

// ClassifyRole maps the clinic API's free-form role string onto the closed
// account classification. Secondary-school and college students both classify
// as Student; employees carry no course. Matching is case-insensitive because
// the upstream records are inconsistent ("SHS" vs "shs", "College Student" vs
// "college"); an unrecognized role is an error, never a silent default.
func ClassifyRole(role string) (AccountType, error) {
	r := strings.ToLower(strings.TrimSpace(role))
	switch {
	case strings.Contains(r, "employee"):
		return AccountEmployee, nil
	case strings.Contains(r, "shs"), strings.Contains(r, "secondary"):
		return AccountStudent, nil
	case strings.Contains(r, "college"):
		return AccountStudent, nil
	}
	return "", fmt.Errorf("unrecognized role category %q", role)
}

// ContactID returns the identifier sent with a booking: student number first,
// employee id second, and a synthesized fallback so a booking is never filed
// without one.
func (p UserProfile) ContactID() string {
	if p.StudentNumber != "" {
		return p.StudentNumber
	}
	if p.EmployeeID != "" {
		return p.EmployeeID
	}
	return fmt.Sprintf("NU-%d", p.ID)
}

// JoinName builds the display name from the profile's name parts, skipping
// blanks.
func JoinName(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, " ")
}
