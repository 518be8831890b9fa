package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"registration_backend/internal/feature/registration/usecase"
)

func TestPasswordPolicy_Validate(t *testing.T) {
	t.Parallel()

	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantMsgs []string
	}{
		{name: "strong", password: "Str0ngPass!"},
		{name: "unicode letters count as characters", password: "Ünïcödé1!"},
		{name: "too short", password: "Sh0rt!", wantMsgs: []string{"at least 8"}},
		{name: "too long", password: "Aa1!" + strings.Repeat("x", 70), wantMsgs: []string{"at most 72 bytes"}},
		{name: "no upper", password: "str0ngpass!", wantMsgs: []string{"uppercase"}},
		{name: "no lower", password: "STR0NGPASS!", wantMsgs: []string{"lowercase"}},
		{name: "no digit", password: "StrongPass!", wantMsgs: []string{"digit"}},
		{name: "no special", password: "Str0ngPass", wantMsgs: []string{"special"}},
		{name: "several failures", password: "abc", wantMsgs: []string{"at least 8", "uppercase", "digit", "special"}},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := policy.Validate(tt.password)
			if len(tt.wantMsgs) == 0 {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, usecase.ErrWeakPassword)
			for _, msg := range tt.wantMsgs {
				assert.ErrorContains(t, err, msg)
			}
		})
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost, DefaultPasswordPolicy())

	hash, err := h.Hash("Str0ngPass!")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngPass!", hash)

	assert.True(t, h.Verify("Str0ngPass!", hash))
	assert.False(t, h.Verify("Str0ngPass?", hash))
	assert.False(t, h.Verify("Str0ngPass!", "not-a-hash"))
}

func TestBcryptHasher_RejectsWeakPassword(t *testing.T) {
	t.Parallel()

	h := NewBcryptHasher(bcrypt.MinCost, DefaultPasswordPolicy())

	hash, err := h.Hash("password")
	assert.ErrorIs(t, err, usecase.ErrWeakPassword)
	assert.Empty(t, hash)
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	t.Parallel()

	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0, DefaultPasswordPolicy()).cost)
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99, DefaultPasswordPolicy()).cost)
	assert.Equal(t, 12, NewBcryptHasher(12, DefaultPasswordPolicy()).cost)
}
