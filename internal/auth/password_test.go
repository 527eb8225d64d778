package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("Passw0rd!", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", hash)

	assert.NoError(t, ComparePassword(hash, "Passw0rd!"))
	assert.Error(t, ComparePassword(hash, "wrong-password"))
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid with bang", "Passw0rd!", true},
		{"valid with space", "pass word1", true},
		{"valid with quote", `abcde1"x`, true},
		{"too short", "short1!", false},
		{"no symbol", "Password1", false},
		{"no digit", "Password!", false},
		{"no letter", "12345678!", false},
		{"short and no symbol", "short1", false},
		{"symbol outside the set", "Password1@", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := ValidatePassword(tc.password)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				var policyErr *PasswordPolicyError
				assert.ErrorAs(t, err, &policyErr)
			}
		})
	}
}
