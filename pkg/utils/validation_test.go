package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type passwordProbe struct {
	Password string `validate:"password"`
}

type usernameProbe struct {
	Username string `validate:"username"`
}

func TestPasswordRule(t *testing.T) {
	cases := []struct {
		name     string
		password string
		valid    bool
	}{
		{"all classes", "Passw0rd!", true},
		{"too short", "Pa0!", false},
		{"no uppercase", "passw0rd!", false},
		{"no lowercase", "PASSW0RD!", false},
		{"no digit", "Password!", false},
		{"no special", "Passw0rdX", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(passwordProbe{Password: tc.password})
			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestUsernameRule(t *testing.T) {
	cases := []struct {
		name     string
		username string
		valid    bool
	}{
		{"plain", "alice", true},
		{"with underscore", "alice_b", true},
		{"with at sign", "alice@work", true},
		{"digits allowed after first", "alice99", true},
		{"leading digit", "9alice", false},
		{"space", "alice b", false},
		{"dash", "alice-b", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			errs := ValidateStruct(usernameProbe{Username: tc.username})
			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestPasswordConfirmationMismatch(t *testing.T) {
	probe := struct {
		Password  string `validate:"required,password"`
		Password2 string `validate:"required,eqfield=Password"`
	}{
		Password:  "Passw0rd!",
		Password2: "Different1!",
	}

	errs := ValidateStruct(probe)
	assert.Contains(t, errs, "Password2")
	assert.Equal(t, "Passwords do not match", errs["Password2"])
}
