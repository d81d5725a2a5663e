package clinic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucares/booking-gateway/clinic"
	"github.com/nucares/booking-gateway/models"
)

func TestProfile(t *testing.T) {
	t.Run("classifies a college student", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/user", r.URL.Path)
			assert.Equal(t, "Bearer token-123", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{
				"id":             7,
				"first_name":     "Juan",
				"middle_name":    "",
				"last_name":      "Dela Cruz",
				"role":           "College Student",
				"course":         "BSCS",
				"student_number": "2021-00123",
			})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("token-123"))
		profile, err := c.Profile(context.Background())
		require.NoError(t, err)

		assert.Equal(t, uint(7), profile.ID)
		assert.Equal(t, "Juan Dela Cruz", profile.DisplayName)
		assert.Equal(t, models.AccountStudent, profile.AccountType)
		assert.Equal(t, "BSCS", profile.Course)
	})

	t.Run("employee carries no course", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"id":          11,
				"first_name":  "Maria",
				"last_name":   "Santos",
				"role":        "Employee",
				"course":      "N/A", // upstream sometimes fills this for employees
				"employee_id": "EMP-042",
			})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		profile, err := c.Profile(context.Background())
		require.NoError(t, err)

		assert.Equal(t, models.AccountEmployee, profile.AccountType)
		assert.Empty(t, profile.Course)
	})

	t.Run("unrecognized role is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"id": 1, "role": "Super Admin"})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		_, err := c.Profile(context.Background())
		assert.Error(t, err)
	})
}

func TestCheckAvailability(t *testing.T) {
	t.Run("student payload includes course", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/appointment-schedule/check-availability", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]any{"available": true})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		result, err := c.CheckAvailability(context.Background(), models.AccountStudent, models.ServiceDoctor, "BSCS")
		require.NoError(t, err)

		assert.True(t, result.Available)
		assert.Equal(t, map[string]string{
			"account_type": "Student",
			"service_type": "doctor",
			"course":       "BSCS",
		}, got)
	})

	t.Run("employee payload omits the course key entirely", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			json.NewEncoder(w).Encode(map[string]any{"available": true})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		_, err := c.CheckAvailability(context.Background(), models.AccountEmployee, models.ServiceDentist, "")
		require.NoError(t, err)

		_, hasCourse := got["course"]
		assert.False(t, hasCourse)
		assert.Equal(t, "Employee", got["account_type"])
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		_, err := c.CheckAvailability(context.Background(), models.AccountStudent, models.ServiceDoctor, "BSCS")
		assert.Error(t, err)
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>gateway timeout</html>"))
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		_, err := c.CheckAvailability(context.Background(), models.AccountStudent, models.ServiceDoctor, "BSCS")
		assert.Error(t, err)
	})
}

func TestAvailableSlots(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/appointments/available-slots", r.URL.Path)
		assert.Equal(t, "2026-09-02", r.URL.Query().Get("date"))
		assert.Equal(t, "dentist", r.URL.Query().Get("service_type"))
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"available_slots": []string{"09:00", "09:30", "10:00"}},
		})
	}))
	defer srv.Close()

	c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
	slots, err := c.AvailableSlots(context.Background(), "2026-09-02", models.ServiceDentist)
	require.NoError(t, err)
	assert.Equal(t, []models.TimeSlot{"09:00", "09:30", "10:00"}, slots)
}

func TestCreateAppointment(t *testing.T) {
	booking := models.BookingRequest{
		UserID:      7,
		DisplayName: "Juan Dela Cruz",
		ContactID:   "2021-00123",
		ServiceType: models.ServiceDoctor,
		Date:        "2026-09-02",
		Time:        "09:00",
		Reason:      "Fever",
	}

	t.Run("success decodes the outcome", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var got models.BookingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Equal(t, booking, got)
			json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "Booked"})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		outcome, err := c.CreateAppointment(context.Background(), booking)
		require.NoError(t, err)
		assert.True(t, outcome.Success)
		assert.Equal(t, "Booked", outcome.Message)
	})

	t.Run("rejection with a message becomes an unsuccessful outcome", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Slot already taken"})
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		outcome, err := c.CreateAppointment(context.Background(), booking)
		require.NoError(t, err)
		assert.False(t, outcome.Success)
		assert.Equal(t, "Slot already taken", outcome.Message)
	})

	t.Run("rejection without a message is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		c := clinic.NewClient(srv.URL, clinic.StaticToken("t"))
		_, err := c.CreateAppointment(context.Background(), booking)
		assert.Error(t, err)
	})
}
