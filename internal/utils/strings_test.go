package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.com", true},
		{"  user.name+tag@example.co.uk ", true},
		{"", false},
		{"not-an-email", false},
		{"testemailcom", false},
		{"user@localhost", false},
		{"user @example.com", false},
		{"user@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidEmail(tt.email))
		})
	}
}

func TestIsValidPhone(t *testing.T) {
	assert.True(t, IsValidPhone("+1 (555) 123-4567", 10))
	assert.True(t, IsValidPhone("9876543210", 10))
	assert.False(t, IsValidPhone("555-1234", 10))
	assert.False(t, IsValidPhone("phone", 10))
	// Arabic-Indic digits do not count toward the minimum
	assert.False(t, IsValidPhone("55٥٥٥٥٥٥٥٥", 10))
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "15551234567", DigitsOnly("+1 (555) 123-4567"))
	assert.Equal(t, "", DigitsOnly("abc"))
	assert.Equal(t, "12", DigitsOnly("1٣٤2"))
}

func TestIsSixDigitCode(t *testing.T) {
	assert.True(t, IsSixDigitCode("012345"))
	assert.False(t, IsSixDigitCode("12345"))
	assert.False(t, IsSixDigitCode("1234567"))
	assert.False(t, IsSixDigitCode("12a456"))
	assert.False(t, IsSixDigitCode(" 123456"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail("  A@B.com "))
}
