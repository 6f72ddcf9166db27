// Package sso implements the credential authentication and authorization
// core of a single-sign-on service.
//
// The package validates bearer tokens against a remote authentication
// service, persists and retrieves user credential records, enforces
// role-based authorization for privileged mutations, hashes and verifies
// passwords, mints signed session tokens, and sanitizes all untrusted text
// before it enters or leaves the system.
//
// The building blocks compose bottom-up: XSSSanitizer and BcryptHasher are
// leaves, Token wraps a validated bearer credential, RemoteAuthenticator
// exchanges a Token for a Credentials record over HTTP, SessionTokenizer
// mints signed session tokens, and CredentialsStore ties persistence,
// remote authentication, and password verification together.
//
// Every component receives its collaborators through its constructor; there
// is no package-level mutable state beyond the default sanitizer used by
// NewToken.
package sso
