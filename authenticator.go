package sso

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// DefaultAuthTimeout bounds the remote-authentication round-trip so an
// unresponsive identity service cannot block callers indefinitely.
const DefaultAuthTimeout = 10 * time.Second

// RemoteAuthenticator resolves a bearer token into a Credentials record by
// calling the external authentication service over HTTP. It never touches
// local persistence: it answers "who does this token belong to" and
// nothing else.
type RemoteAuthenticator struct {
	endpoint  *url.URL
	client    *http.Client
	sanitizer Sanitizer
	logger    Logger
}

var _ Authenticator = (*RemoteAuthenticator)(nil)

type authRequest struct {
	Token string `json:"token"`
}

// NewRemoteAuthenticator validates the endpoint once, at construction.
// A malformed endpoint URL fails here rather than on the first call.
func NewRemoteAuthenticator(endpoint string) (*RemoteAuthenticator, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth,
			"cannot construct authentication server url from provided string")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, goerrors.New(
			"authentication server url must be absolute http or https",
			goerrors.CategoryAuth,
		)
	}

	return &RemoteAuthenticator{
		endpoint:  parsed,
		client:    &http.Client{Timeout: DefaultAuthTimeout},
		sanitizer: NewXSSSanitizer(),
		logger:    defLogger{},
	}, nil
}

func (a *RemoteAuthenticator) WithLogger(logger Logger) *RemoteAuthenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// WithHTTPClient swaps the HTTP client, e.g. to change the timeout.
func (a *RemoteAuthenticator) WithHTTPClient(client *http.Client) *RemoteAuthenticator {
	if client != nil {
		a.client = client
	}
	return a
}

// WithTimeout adjusts the bound on the remote round-trip.
func (a *RemoteAuthenticator) WithTimeout(timeout time.Duration) *RemoteAuthenticator {
	if timeout > 0 {
		a.client.Timeout = timeout
	}
	return a
}

// Authenticate issues a single synchronous POST carrying the token and
// returns the credentials the identity service vouches for. HTTP 201 is
// the only success signal. No retry is performed here; retry policy, if
// any, belongs to the caller.
func (a *RemoteAuthenticator) Authenticate(ctx context.Context, token *Token) (*Credentials, error) {
	if token == nil {
		a.logger.Error("nil token provided: cannot authenticate")
		return nil, goerrors.New("nil token provided: cannot authenticate", goerrors.CategoryAuth)
	}

	body, err := json.Marshal(authRequest{Token: token.Value()})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode token payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build authentication request")
	}
	req.Header.Set("Content-Type", "application/json")

	a.logger.Debug("authenticating token against %s", a.endpoint.Host)

	resp, err := a.client.Do(req)
	if err != nil {
		a.logger.Error("error connecting to authentication server: %v", err)
		return nil, goerrors.Wrap(err, ErrAuthServiceUnavailable.Category, ErrAuthServiceUnavailable.Message).
			WithTextCode(ErrAuthServiceUnavailable.TextCode)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		a.logger.Error("received response code %d from authentication server", resp.StatusCode)
		return nil, goerrors.New("authentication server rejected token", goerrors.CategoryAuth).
			WithTextCode(TextCodeAuthRejected).
			WithMetadata(map[string]any{"status": resp.StatusCode})
	}

	credentials := &Credentials{}
	if err := json.NewDecoder(resp.Body).Decode(credentials); err != nil {
		a.logger.Error("failed to decode credentials from authentication server: %v", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth,
			"unparseable credentials payload from authentication server")
	}

	if credentials.IsZero() {
		a.logger.Error("authentication server returned empty credentials")
		return nil, ErrEmptyIdentity
	}

	credentials.Sanitize(a.sanitizer)
	if err := credentials.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryAuth,
			"authentication server returned invalid credentials")
	}

	a.logger.Info("successfully resolved credentials for identity %d", credentials.ID)
	return credentials, nil
}
