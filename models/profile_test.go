package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nucares/booking-gateway/models"
)

func TestClassifyRole(t *testing.T) {
	// The upstream records are inconsistent about case and spelling, so the
	// classification must not be.
	cases := []struct {
		role string
		want models.AccountType
	}{
		{"Employee", models.AccountEmployee},
		{"employee", models.AccountEmployee},
		{"SHS", models.AccountStudent},
		{"shs student", models.AccountStudent},
		{"Secondary School Student", models.AccountStudent},
		{"College", models.AccountStudent},
		{"College Student", models.AccountStudent},
		{"  college  ", models.AccountStudent},
	}
	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			got, err := models.ClassifyRole(tc.role)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unknown roles are rejected", func(t *testing.T) {
		for _, role := range []string{"", "Super Admin", "SuperAdmin", "nurse"} {
			_, err := models.ClassifyRole(role)
			assert.Error(t, err, role)
		}
	})
}

func TestContactID(t *testing.T) {
	t.Run("student number wins", func(t *testing.T) {
		p := models.UserProfile{ID: 7, StudentNumber: "2021-00123", EmployeeID: "EMP-1"}
		assert.Equal(t, "2021-00123", p.ContactID())
	})

	t.Run("employee id next", func(t *testing.T) {
		p := models.UserProfile{ID: 7, EmployeeID: "EMP-1"}
		assert.Equal(t, "EMP-1", p.ContactID())
	})

	t.Run("synthesized fallback", func(t *testing.T) {
		p := models.UserProfile{ID: 7}
		assert.Equal(t, "NU-7", p.ContactID())
	})
}

func TestJoinName(t *testing.T) {
	assert.Equal(t, "Juan Dela Cruz", models.JoinName("Juan", "", "Dela Cruz"))
	assert.Equal(t, "Maria Santos", models.JoinName("Maria", "  ", "Santos"))
}

func TestParseServiceType(t *testing.T) {
	for _, s := range []string{"doctor", "dentist"} {
		_, err := models.ParseServiceType(s)
		assert.NoError(t, err)
	}
	_, err := models.ParseServiceType("Doctor")
	assert.Error(t, err)

	assert.Equal(t, models.ServiceDentist, models.ServiceDoctor.Other())
	assert.Equal(t, models.ServiceDoctor, models.ServiceDentist.Other())
}
