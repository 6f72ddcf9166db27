package sso

import (
	"context"
	"fmt"
)

// Logger is the minimal logging surface the package needs. The default
// implementation prints to stdout; production callers should plug in the
// zerolog adapters from logging.go.
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Sanitizer cleans untrusted text before it enters or leaves the system.
type Sanitizer interface {
	SanitizeInput(input string) string
	SanitizeOutput(input string) string
}

// PasswordHasher produces and checks one-way password digests.
//
// Hash is strict: empty plaintext is a validation error. Verify is
// permissive on bad stored data: a malformed digest yields (false, nil)
// so a corrupted row can never become a crash oracle.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) (bool, error)
}

// Authenticator resolves a validated bearer token into the credentials it
// belongs to, delegating entirely to the remote identity service.
type Authenticator interface {
	Authenticate(ctx context.Context, token *Token) (*Credentials, error)
}

// Tokenizer mints signed session tokens from a credentials record.
type Tokenizer interface {
	Tokenize(credentials *Credentials) (string, error)
}

type defLogger struct{}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SSO "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SSO "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SSO "+newline(format), args...)
}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SSO "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
