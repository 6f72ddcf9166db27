package sso

import (
	"context"
	"database/sql"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
)

// Credentials live in one table joined to lookup tables for the free-text
// profile dimensions. Every statement is parameterized; user-controlled
// strings never reach query text.
const selectCredentialsSQL = `SELECT cred.id, cred.email, cred.password_hash,
	cred.temp_password_hash, cred.is_admin, cred.first_name, cred.last_name,
	t.title AS title, d.department AS department,
	l.location AS location, r.user_role AS user_role
FROM credentials AS cred
INNER JOIN titles AS t ON cred.title_id = t.id
INNER JOIN departments AS d ON cred.department_id = d.id
INNER JOIN locations AS l ON cred.location_id = l.id
INNER JOIN user_roles AS r ON cred.user_role_id = r.id`

const insertCredentialsSQL = `INSERT INTO credentials
	(email, password_hash, is_admin, first_name, last_name,
	 title_id, department_id, location_id, user_role_id)
VALUES (?, ?, ?, ?, ?,
	(SELECT id FROM titles WHERE title = ?),
	(SELECT id FROM departments WHERE department = ?),
	(SELECT id FROM locations WHERE location = ?),
	(SELECT id FROM user_roles WHERE user_role = ?))`

const updateCredentialsSQL = `UPDATE credentials SET
	email = ?, is_admin = ?, first_name = ?, last_name = ?,
	title_id = (SELECT id FROM titles WHERE title = ?),
	department_id = (SELECT id FROM departments WHERE department = ?),
	location_id = (SELECT id FROM locations WHERE location = ?),
	user_role_id = (SELECT id FROM user_roles WHERE user_role = ?)
WHERE id = ?`

const updatePasswordSQL = `UPDATE credentials
SET password_hash = ?, temp_password_hash = NULL
WHERE id = ?`

const setTempPasswordSQL = `UPDATE credentials
SET temp_password_hash = ?
WHERE id = ?`

// clearTempPasswordSQL is guarded on the current hash value so that a
// temporary password can only ever be consumed once, even under concurrent
// logins: the second UPDATE matches zero rows.
const clearTempPasswordSQL = `UPDATE credentials
SET temp_password_hash = NULL
WHERE id = ? AND temp_password_hash = ?`

const deleteCredentialsSQL = `DELETE FROM credentials WHERE id = ?`

const isAdminSQL = `SELECT is_admin FROM credentials WHERE id = ?`

// CredentialsStore is persistence-backed CRUD and lookup for Credentials,
// composed on top of the remote authenticator and the password hasher.
//
// Connections are acquired per-operation from the pool and released on
// every exit path; no operation holds one across a remote round-trip.
// There is no in-memory cache: every authorization check re-reads current
// state, trading a small latency cost for correctness under concurrent
// privilege changes.
type CredentialsStore struct {
	db            *bun.DB
	authenticator Authenticator
	hasher        PasswordHasher
	sanitizer     Sanitizer
	logger        Logger
	securityLog   Logger
}

// NewCredentialsStore wires the store to its collaborators. All
// dependencies are explicit constructor parameters; there are no
// process-wide singletons to reach for.
func NewCredentialsStore(db *bun.DB, authenticator Authenticator) *CredentialsStore {
	return &CredentialsStore{
		db:            db,
		authenticator: authenticator,
		hasher:        NewBcryptHasher(),
		sanitizer:     NewXSSSanitizer(),
		logger:        defLogger{},
		securityLog:   defLogger{},
	}
}

func (s *CredentialsStore) WithHasher(hasher PasswordHasher) *CredentialsStore {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

func (s *CredentialsStore) WithSanitizer(sanitizer Sanitizer) *CredentialsStore {
	if sanitizer != nil {
		s.sanitizer = sanitizer
	}
	return s
}

func (s *CredentialsStore) WithLogger(logger Logger) *CredentialsStore {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithSecurityLogger routes security-relevant events (failed logins,
// admin-gate denials) to a dedicated logger.
func (s *CredentialsStore) WithSecurityLogger(logger Logger) *CredentialsStore {
	if logger != nil {
		s.securityLog = logger
	}
	return s
}

// LoginByPassword authenticates an email/password pair against the stored
// hashes. The stored password hash is checked first; on mismatch the
// single-use temporary password hash is tried and, if it matches, cleared
// atomically before success is reported.
//
// Unknown email and wrong password both come back as ErrLoginFailed; only
// the security log tells them apart.
func (s *CredentialsStore) LoginByPassword(ctx context.Context, email, password string) (*Credentials, error) {
	login, err := NewLoginCredentials(email, password, s.sanitizer)
	if err != nil {
		return nil, err
	}

	record, err := s.getByEmail(ctx, login.Email)
	if err != nil {
		if IsNotFound(err) {
			s.securityLog.Warn("login attempt for unknown email")
			return nil, ErrLoginFailed
		}
		return nil, err
	}

	ok, err := s.hasher.Verify(login.Password, record.PasswordHash)
	if err != nil {
		return nil, err
	}
	if ok {
		s.logger.Info("password login succeeded for identity %d", record.ID)
		return record.scrubSecrets(), nil
	}

	if record.TempPasswordHash != "" {
		ok, err = s.hasher.Verify(login.Password, record.TempPasswordHash)
		if err != nil {
			return nil, err
		}
		if ok {
			if err := s.consumeTempPassword(ctx, record); err != nil {
				return nil, err
			}
			s.logger.Info("temporary password login succeeded for identity %d", record.ID)
			return record.scrubSecrets(), nil
		}
	}

	s.securityLog.Warn("login attempt with wrong password for identity %d", record.ID)
	return nil, ErrLoginFailed
}

// consumeTempPassword clears the temporary hash, succeeding only if this
// login is the first to consume it.
func (s *CredentialsStore) consumeTempPassword(ctx context.Context, record *Credentials) error {
	res, err := s.db.ExecContext(ctx, clearTempPasswordSQL, record.ID, record.TempPasswordHash)
	if err != nil {
		return s.persistenceError(err, "failed to clear temporary password")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return s.persistenceError(err, "failed to clear temporary password")
	}
	if rows == 0 {
		s.securityLog.Warn("temporary password for identity %d was already consumed", record.ID)
		return ErrLoginFailed
	}
	return nil
}

// LoginByToken resolves a bearer token through the remote authenticator,
// then overlays the current email, admin flag, and profile fields from the
// store. The lookup is always keyed by the durable identifier, never by
// token claims.
func (s *CredentialsStore) LoginByToken(ctx context.Context, token *Token) (*Credentials, error) {
	resolved, err := s.authenticator.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}

	record, err := s.getByID(ctx, resolved.ID)
	if err != nil {
		if IsNotFound(err) {
			s.securityLog.Warn("token resolved to identity %d with no stored record", resolved.ID)
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return record.scrubSecrets(), nil
}

// VerifyIsAdmin resolves the token remotely and then reads the current
// stored admin flag for that identifier. The flag is re-read on every call
// rather than trusted from any previously issued token, so a revoked admin
// loses privileges on the next call, not on token renewal.
func (s *CredentialsStore) VerifyIsAdmin(ctx context.Context, token *Token) (bool, error) {
	resolved, err := s.authenticator.Authenticate(ctx, token)
	if err != nil {
		return false, err
	}

	var isAdmin bool
	err = s.db.NewRaw(isAdminSQL, resolved.ID).Scan(ctx, &isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.securityLog.Warn("admin check for identity %d with no stored record", resolved.ID)
			return false, nil
		}
		return false, s.persistenceError(err, "failed to read admin flag")
	}

	return isAdmin, nil
}

// requireAdmin gates every privileged mutation.
func (s *CredentialsStore) requireAdmin(ctx context.Context, token *Token) error {
	isAdmin, err := s.VerifyIsAdmin(ctx, token)
	if err != nil {
		return err
	}
	if !isAdmin {
		s.securityLog.Warn("admin-restricted operation attempted without admin privileges")
		return ErrAdminRequired
	}
	return nil
}

// Insert creates a new credentials record. Admin-gated. The transient
// plaintext password is hashed before it reaches the statement; lookup
// values resolve to their ids through subselects.
func (s *CredentialsStore) Insert(ctx context.Context, record *Credentials, adminToken *Token) (*Credentials, error) {
	if err := s.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNilCredentials
	}

	record.Sanitize(s.sanitizer)
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := validateRequiredFields(record, true); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(record.Password)
	if err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, insertCredentialsSQL,
		record.Email, hash, record.IsAdmin, record.FirstName, record.LastName,
		record.Title, record.Department, record.Location, record.Role,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRecordExists
		}
		return nil, s.persistenceError(err, "failed to insert credentials")
	}

	if id, err := res.LastInsertId(); err == nil {
		record.ID = id
	}

	s.logger.Info("inserted credentials record %d", record.ID)
	return record.scrubSecrets(), nil
}

// Update rewrites a record's profile fields. Admin-gated. A non-empty
// transient password also rotates the stored hash.
func (s *CredentialsStore) Update(ctx context.Context, record *Credentials, adminToken *Token) error {
	if err := s.requireAdmin(ctx, adminToken); err != nil {
		return err
	}
	if record == nil {
		return ErrNilCredentials
	}

	record.Sanitize(s.sanitizer)
	if err := record.Validate(); err != nil {
		return err
	}
	if err := validateRequiredFields(record, false); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, updateCredentialsSQL,
		record.Email, record.IsAdmin, record.FirstName, record.LastName,
		record.Title, record.Department, record.Location, record.Role,
		record.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrRecordExists
		}
		return s.persistenceError(err, "failed to update credentials")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return s.persistenceError(err, "failed to update credentials")
	}
	if rows == 0 {
		return ErrIdentityNotFound
	}

	if record.Password != "" {
		if err := s.UpdatePassword(ctx, record.ID, record.Password); err != nil {
			return err
		}
	}

	s.logger.Info("updated credentials record %d", record.ID)
	return nil
}

// Delete removes a record by identifier. Admin-gated. Hard delete.
func (s *CredentialsStore) Delete(ctx context.Context, id int64, adminToken *Token) error {
	if err := s.requireAdmin(ctx, adminToken); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, deleteCredentialsSQL, id)
	if err != nil {
		return s.persistenceError(err, "failed to delete credentials")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return s.persistenceError(err, "failed to delete credentials")
	}
	if rows == 0 {
		return ErrIdentityNotFound
	}

	s.logger.Info("deleted credentials record %d", id)
	return nil
}

// ListAll returns every stored record, hashes scrubbed. Admin-gated.
func (s *CredentialsStore) ListAll(ctx context.Context, adminToken *Token) ([]Credentials, error) {
	if err := s.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}

	var records []Credentials
	if err := s.db.NewRaw(selectCredentialsSQL).Scan(ctx, &records); err != nil {
		return nil, s.persistenceError(err, "failed to list credentials")
	}

	for i := range records {
		records[i].scrubSecrets()
	}
	return records, nil
}

// UpdatePassword is the self-service password change. The plaintext is
// hashed before storage and any outstanding temporary password is
// invalidated alongside.
func (s *CredentialsStore) UpdatePassword(ctx context.Context, id int64, plaintext string) error {
	err := validation.Validate(plaintext,
		validation.Required,
		validation.Length(MinPasswordLength, MaxPasswordLength),
	)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password")
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, updatePasswordSQL, hash, id)
	if err != nil {
		return s.persistenceError(err, "failed to update password")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return s.persistenceError(err, "failed to update password")
	}
	if rows == 0 {
		return ErrIdentityNotFound
	}

	s.logger.Info("rotated password for identity %d", id)
	return nil
}

// IssueTempPassword starts the forgot-password flow: it generates a random
// single-use password, stores only its hash, and returns the plaintext
// once for out-of-band delivery. The temporary password is destroyed on
// its first successful use by LoginByPassword.
func (s *CredentialsStore) IssueTempPassword(ctx context.Context, email string) (string, error) {
	record, err := s.getByEmail(ctx, s.sanitizer.SanitizeInput(email))
	if err != nil {
		if IsNotFound(err) {
			return "", ErrIdentityNotFound
		}
		return "", err
	}

	plaintext := GenerateTempPassword()
	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return "", err
	}

	if _, err := s.db.ExecContext(ctx, setTempPasswordSQL, hash, record.ID); err != nil {
		return "", s.persistenceError(err, "failed to store temporary password")
	}

	s.logger.Info("issued temporary password for identity %d", record.ID)
	return plaintext, nil
}

func (s *CredentialsStore) getByEmail(ctx context.Context, email string) (*Credentials, error) {
	record := &Credentials{}
	err := s.db.NewRaw(selectCredentialsSQL+" WHERE cred.email = ?", email).Scan(ctx, record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, s.persistenceError(err, "failed to look up credentials by email")
	}
	return record, nil
}

func (s *CredentialsStore) getByID(ctx context.Context, id int64) (*Credentials, error) {
	record := &Credentials{}
	err := s.db.NewRaw(selectCredentialsSQL+" WHERE cred.id = ?", id).Scan(ctx, record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, s.persistenceError(err, "failed to look up credentials by id")
	}
	return record, nil
}

// persistenceError converts a low-level store failure into a typed error.
// Swallowing these would silently turn "the database is down" into "no
// such user", so they always propagate distinctly.
func (s *CredentialsStore) persistenceError(err error, message string) error {
	s.logger.Error("%s: %v", message, err)
	return goerrors.Wrap(err, goerrors.CategoryOperation, message).
		WithTextCode(TextCodeBackendUnavailable)
}

// validateRequiredFields enforces presence on insert (and profile presence
// on update, where the password is optional).
func validateRequiredFields(c *Credentials, requirePassword bool) error {
	fields := []*validation.FieldRules{
		validation.Field(&c.Email, validation.Required),
		validation.Field(&c.FirstName, validation.Required),
		validation.Field(&c.LastName, validation.Required),
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Department, validation.Required),
		validation.Field(&c.Location, validation.Required),
		validation.Field(&c.Role, validation.Required),
	}
	if requirePassword {
		fields = append(fields, validation.Field(&c.Password,
			validation.Required,
			validation.Length(MinPasswordLength, MaxPasswordLength),
		))
	}

	if err := validation.ValidateStruct(c, fields...); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "incomplete credentials record")
	}
	return nil
}
