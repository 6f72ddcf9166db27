package sso

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// MaxFieldLength bounds every free-text field on a credentials record.
const MaxFieldLength = 64

// Login password bounds.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 64
)

// Credentials is a persisted user record. The JSON tags mirror the wire
// format of the remote authentication service (fName, lName, dept, loc);
// the bun tags map the credentials table, with the lookup-table values
// (title, department, location, role) scanned from joins.
//
// Password carries a transient plaintext on insert or update and is never
// persisted or serialized; only PasswordHash reaches the store.
type Credentials struct {
	bun.BaseModel `bun:"table:credentials,alias:cred" json:"-"`

	ID               int64  `bun:"id,pk,autoincrement" json:"id"`
	Email            string `bun:"email" json:"email,omitempty"`
	Password         string `bun:"-" json:"-"`
	PasswordHash     string `bun:"password_hash" json:"-"`
	TempPasswordHash string `bun:"temp_password_hash,nullzero" json:"-"`
	IsAdmin          bool   `bun:"is_admin" json:"is_admin,omitempty"`
	FirstName        string `bun:"first_name" json:"fName,omitempty"`
	LastName         string `bun:"last_name" json:"lName,omitempty"`
	Title            string `bun:"title,scanonly" json:"title,omitempty"`
	Department       string `bun:"department,scanonly" json:"dept,omitempty"`
	Location         string `bun:"location,scanonly" json:"loc,omitempty"`
	Role             string `bun:"user_role,scanonly" json:"user_role,omitempty"`
}

// Sanitize passes every free-text field through the sanitizer before the
// record is accepted. Defense-in-depth: injected markup must not survive
// into stored records or into anything rendered from them.
func (c *Credentials) Sanitize(s Sanitizer) {
	c.Email = s.SanitizeInput(c.Email)
	c.FirstName = s.SanitizeInput(c.FirstName)
	c.LastName = s.SanitizeInput(c.LastName)
	c.Title = s.SanitizeInput(c.Title)
	c.Department = s.SanitizeInput(c.Department)
	c.Location = s.SanitizeInput(c.Location)
	c.Role = s.SanitizeInput(c.Role)
}

// Validate enforces the record invariants: non-negative identifier, valid
// email syntax, and the 64-character bound on every free-text field.
func (c *Credentials) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.ID, validation.Min(int64(0))),
		validation.Field(&c.Email, validation.Length(0, MaxFieldLength), is.Email),
		validation.Field(&c.FirstName, validation.Length(0, MaxFieldLength)),
		validation.Field(&c.LastName, validation.Length(0, MaxFieldLength)),
		validation.Field(&c.Title, validation.Length(0, MaxFieldLength)),
		validation.Field(&c.Department, validation.Length(0, MaxFieldLength)),
		validation.Field(&c.Location, validation.Length(0, MaxFieldLength)),
		validation.Field(&c.Role, validation.Length(0, MaxFieldLength)),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid credentials record")
	}
	return nil
}

// IsZero reports whether the record carries no identity at all, which is
// how an empty payload from the remote authentication service shows up.
func (c *Credentials) IsZero() bool {
	return c.ID == 0 && c.Email == "" && c.FirstName == "" && c.LastName == ""
}

// scrubSecrets clears the hash fields before a record is handed back to a
// caller. Hashes are one-way, but they still never leave the store layer.
func (c *Credentials) scrubSecrets() *Credentials {
	c.Password = ""
	c.PasswordHash = ""
	c.TempPasswordHash = ""
	return c
}

// LoginCredentials is the email/password pair submitted on a direct login.
type LoginCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NewLoginCredentials sanitizes and validates a login pair.
func NewLoginCredentials(email, password string, s Sanitizer) (*LoginCredentials, error) {
	lc := &LoginCredentials{
		Email:    s.SanitizeInput(email),
		Password: s.SanitizeInput(password),
	}
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	return lc, nil
}

// Validate enforces email syntax plus the password length band.
func (lc *LoginCredentials) Validate() error {
	err := validation.ValidateStruct(lc,
		validation.Field(&lc.Email,
			validation.Required,
			validation.Length(1, MaxFieldLength),
			is.Email,
		),
		validation.Field(&lc.Password,
			validation.Required,
			validation.Length(MinPasswordLength, MaxPasswordLength),
		),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login credentials")
	}
	return nil
}
