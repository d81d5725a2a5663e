package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nucares/booking-gateway/models"
)

// TokenSource supplies the bearer token for upstream calls. Flows capture one
// at start instead of reading shared storage ad hoc.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource holding a fixed token.
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client talks to the NU-CARES clinic API.
type Client struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
}

// NewClient creates a clinic API client rooted at baseURL.
func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Profile fetches the authenticated user and classifies it once into the
// closed account enumeration.
func (c *Client) Profile(ctx context.Context) (models.UserProfile, error) {
	var payload struct {
		ID            uint   `json:"id"`
		FirstName     string `json:"first_name"`
		MiddleName    string `json:"middle_name"`
		LastName      string `json:"last_name"`
		Role          string `json:"role"`
		Course        string `json:"course"`
		StudentNumber string `json:"student_number"`
		EmployeeID    string `json:"employee_id"`
	}
	if err := c.get(ctx, "/user", &payload); err != nil {
		return models.UserProfile{}, err
	}

	account, err := models.ClassifyRole(payload.Role)
	if err != nil {
		return models.UserProfile{}, err
	}

	profile := models.UserProfile{
		ID:            payload.ID,
		DisplayName:   models.JoinName(payload.FirstName, payload.MiddleName, payload.LastName),
		AccountType:   account,
		StudentNumber: payload.StudentNumber,
		EmployeeID:    payload.EmployeeID,
	}
	if account == models.AccountStudent {
		profile.Course = payload.Course
	}
	return profile, nil
}

// CheckAvailability asks whether the given account classification may book the
// service right now. Course is sent only when non-empty.
func (c *Client) CheckAvailability(ctx context.Context, account models.AccountType, service models.ServiceType, course string) (models.EligibilityResult, error) {
	body := map[string]string{
		"account_type": string(account),
		"service_type": string(service),
	}
	if course != "" {
		body["course"] = course
	}

	var payload struct {
		Available bool   `json:"available"`
		Message   string `json:"message"`
	}
	if err := c.post(ctx, "/appointment-schedule/check-availability", body, &payload); err != nil {
		return models.EligibilityResult{}, err
	}
	return models.EligibilityResult{Available: payload.Available, Message: payload.Message}, nil
}

// AvailableSlots fetches the bookable times for one (date, service) pair.
func (c *Client) AvailableSlots(ctx context.Context, date string, service models.ServiceType) ([]models.TimeSlot, error) {
	q := url.Values{}
	q.Set("date", date)
	q.Set("service_type", string(service))

	var payload struct {
		Data struct {
			AvailableSlots []models.TimeSlot `json:"available_slots"`
		} `json:"data"`
	}
	if err := c.get(ctx, "/appointments/available-slots?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload.Data.AvailableSlots, nil
}

// CreateAppointment submits a booking. A rejection that carries a server
// message comes back as an unsuccessful outcome rather than an error so the
// message can be surfaced verbatim.
func (c *Client) CreateAppointment(ctx context.Context, booking models.BookingRequest) (models.BookingOutcome, error) {
	resp, err := c.do(ctx, http.MethodPost, "/appointments", booking)
	if err != nil {
		return models.BookingOutcome{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	decodeErr := json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && payload.Message != "" {
			return models.BookingOutcome{Success: false, Message: payload.Message}, nil
		}
		return models.BookingOutcome{}, fmt.Errorf("clinic api: status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return models.BookingOutcome{}, fmt.Errorf("clinic api: decode response: %w", decodeErr)
	}
	return models.BookingOutcome{Success: payload.Success, Message: payload.Message}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clinic api: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clinic api: decode response: %w", err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("clinic api: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("clinic api: decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}
