package sso

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// Session token defaults. The lifetime doubles as the revocation mechanism:
// there is no server-side revocation list, so tokens stay short-lived.
const (
	SessionIssuer   = "Auth Service"
	SessionTokenTTL = 60 * time.Minute
)

// SessionClaims is the claims subset a session token carries.
type SessionClaims struct {
	jwt.RegisteredClaims
	UID        int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Location   string `json:"location"`
	Department string `json:"department"`
	Title      string `json:"title"`
}

// SessionTokenizer mints signed, time-bounded session tokens. Tokens are
// generated, never persisted server-side.
type SessionTokenizer struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	logger     Logger
}

var _ Tokenizer = (*SessionTokenizer)(nil)

// NewSessionTokenizer builds a tokenizer around a symmetric signing key.
// The key is an operational secret provisioned outside source control; an
// empty key is rejected.
func NewSessionTokenizer(signingKey []byte) (*SessionTokenizer, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	return &SessionTokenizer{
		signingKey: signingKey,
		issuer:     SessionIssuer,
		ttl:        SessionTokenTTL,
		logger:     defLogger{},
	}, nil
}

func (t *SessionTokenizer) WithLogger(logger Logger) *SessionTokenizer {
	if logger != nil {
		t.logger = logger
	}
	return t
}

// WithIssuer overrides the default issuer claim.
func (t *SessionTokenizer) WithIssuer(issuer string) *SessionTokenizer {
	if issuer != "" {
		t.issuer = issuer
	}
	return t
}

// Tokenize mints a signed session token embedding the identity claims of
// the given credentials. Subject is the concatenated first and last name;
// expiry is issuance plus the fixed lifetime.
func (t *SessionTokenizer) Tokenize(credentials *Credentials) (string, error) {
	if credentials == nil {
		t.logger.Error("cannot tokenize nil credentials")
		return "", ErrNilCredentials
	}

	now := time.Now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.issuer,
			Subject:   credentials.FirstName + " " + credentials.LastName,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
		UID:        credentials.ID,
		FirstName:  credentials.FirstName,
		LastName:   credentials.LastName,
		Location:   credentials.Location,
		Department: credentials.Department,
		Title:      credentials.Title,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(t.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	t.logger.Debug("minted session token for identity %d", credentials.ID)
	return signed, nil
}

// Validate parses and verifies a minted session token, returning its
// claims.
func (t *SessionTokenizer) Validate(raw string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &SessionClaims{}, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			t.logger.Error("unexpected session token signing method: %v", tok.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.signingKey, nil
	}, jwt.WithIssuer(t.issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, goerrors.Wrap(err, goerrors.CategoryAuth, "session token is expired").
				WithTextCode(TextCodeSessionInvalid)
		}
		return nil, goerrors.Wrap(err, ErrSessionInvalid.Category, ErrSessionInvalid.Message).
			WithTextCode(ErrSessionInvalid.TextCode)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, ErrSessionInvalid
	}

	return claims, nil
}
