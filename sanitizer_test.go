package sso_test

import (
	"testing"

	sso "github.com/flowersso/go-sso"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeInput(t *testing.T) {
	sanitizer := sso.NewXSSSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Strips script tags and their content",
			input:    "<script>alert(1)</script>Developer",
			expected: "Developer",
		},
		{
			name:     "Strips formatting tags",
			input:    "<b>Platform</b> Engineering",
			expected: "Platform Engineering",
		},
		{
			name:     "Trims surrounding whitespace",
			input:    "   Boise   ",
			expected: "Boise",
		},
		{
			name:     "Plain text passes through",
			input:    "Senior Engineer",
			expected: "Senior Engineer",
		},
		{
			name:     "Empty input stays empty",
			input:    "",
			expected: "",
		},
		{
			name:     "Nested markup is fully removed",
			input:    "<div><img src=x onerror=alert(1)>Sales</div>",
			expected: "Sales",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizer.SanitizeInput(tt.input))
		})
	}
}

func TestSanitizeOutput(t *testing.T) {
	sanitizer := sso.NewXSSSanitizer()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Escapes markup instead of stripping it",
			input:    "<b>x</b>",
			expected: "&lt;b&gt;x&lt;/b&gt;",
		},
		{
			name:     "Trims before escaping",
			input:    "  plain  ",
			expected: "plain",
		},
		{
			name:     "Escapes ampersands",
			input:    "R&D",
			expected: "R&amp;D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizer.SanitizeOutput(tt.input))
		})
	}
}

func TestSetPolicy(t *testing.T) {
	sanitizer := sso.NewXSSSanitizer()

	t.Run("Nil policy is rejected", func(t *testing.T) {
		err := sanitizer.SetPolicy(nil)
		assert.Error(t, err)
		assert.True(t, sso.IsValidationError(err))
	})

	t.Run("Relaxed policy keeps safe formatting tags", func(t *testing.T) {
		assert.NoError(t, sanitizer.SetPolicy(sso.RelaxedPolicy()))

		cleaned := sanitizer.SanitizeInput("<b>bold</b><script>alert(1)</script>")
		assert.Equal(t, "<b>bold</b>", cleaned)
	})
}
