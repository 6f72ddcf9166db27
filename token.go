package sso

// Bearer token length bounds, inclusive. JWT-like tokens fall in a
// predictable size band; anything outside it is rejected before a network
// round-trip is spent on it.
const (
	TokenMinLength = 250
	TokenMaxLength = 400
)

var defaultTokenSanitizer = NewXSSSanitizer()

// Token is a validated bearer credential. It carries no semantic fields
// locally; the RemoteAuthenticator resolves who it belongs to.
//
// A Token can only be obtained through NewToken, so holding one means the
// raw string already passed sanitization and the length bounds.
type Token struct {
	value string
}

// NewToken sanitizes and validates a raw bearer credential. The returned
// error names which bound was violated.
func NewToken(raw string) (*Token, error) {
	return NewTokenSanitized(raw, defaultTokenSanitizer)
}

// NewTokenSanitized is NewToken with an explicit sanitizer, for callers
// that configured their own policy.
func NewTokenSanitized(raw string, sanitizer Sanitizer) (*Token, error) {
	if raw == "" {
		return nil, ErrTokenMissing
	}

	safe := sanitizer.SanitizeInput(raw)

	if len(safe) < TokenMinLength {
		return nil, ErrTokenTooShort
	}
	if len(safe) > TokenMaxLength {
		return nil, ErrTokenTooLong
	}

	return &Token{value: safe}, nil
}

// Value returns the sanitized token string.
func (t *Token) Value() string {
	return t.value
}

// String redacts the token so it cannot leak through logs.
func (t *Token) String() string {
	return "sso.Token(redacted)"
}
