package sso

import (
	"html"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/microcosm-cc/bluemonday"
)

// XSSSanitizer strips or escapes unsafe markup from untrusted strings.
//
// The default policy is default-deny: no tags survive cleaning. A relaxed
// policy permitting a small safe tag set can be swapped in with SetPolicy.
type XSSSanitizer struct {
	policy *bluemonday.Policy
	logger Logger
}

var _ Sanitizer = (*XSSSanitizer)(nil)

// NewXSSSanitizer returns a sanitizer with the default-deny policy.
func NewXSSSanitizer() *XSSSanitizer {
	return &XSSSanitizer{
		policy: bluemonday.StrictPolicy(),
		logger: defLogger{},
	}
}

// RelaxedPolicy returns an allow-list permitting a small set of safe
// formatting tags, for callers that need user-generated rich text.
func RelaxedPolicy() *bluemonday.Policy {
	return bluemonday.UGCPolicy()
}

func (s *XSSSanitizer) WithLogger(logger Logger) *XSSSanitizer {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Policy returns the active allow-list.
func (s *XSSSanitizer) Policy() *bluemonday.Policy {
	return s.policy
}

// SetPolicy swaps the active allow-list. A nil policy is rejected.
func (s *XSSSanitizer) SetPolicy(policy *bluemonday.Policy) error {
	if policy == nil {
		s.logger.Error("attempt to set sanitizer policy to nil")
		return goerrors.New("sanitizer policy must be provided", goerrors.CategoryValidation)
	}
	s.policy = policy
	return nil
}

// SanitizeInput strips all markup not permitted by the active policy and
// trims surrounding whitespace. Free-text values pass through here before
// they are accepted into a record.
func (s *XSSSanitizer) SanitizeInput(input string) string {
	return strings.TrimSpace(s.policy.Sanitize(input))
}

// SanitizeOutput HTML-entity-escapes and trims, for safe re-display of
// already-stored values.
func (s *XSSSanitizer) SanitizeOutput(input string) string {
	return html.EscapeString(strings.TrimSpace(input))
}
