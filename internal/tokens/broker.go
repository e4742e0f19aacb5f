package tokens

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/telhawk-systems/logrelay/internal/metrics"
)

// GrantType is the fixed out-of-band grant used for assertion exchange.
const GrantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// DefaultAssertionTTL bounds assertion validity; token authorities reject
// anything longer.
const DefaultAssertionTTL = time.Hour

// Token is a short-lived bearer credential for the warehouse write scope.
type Token struct {
	AccessToken string
	Expiry      time.Time
}

// ExchangeError reports a non-2xx response from the token authority.
type ExchangeError struct {
	StatusCode int
}

func (e *ExchangeError) Error() string {
	return fmt.Sprintf("token exchange failed with status %d", e.StatusCode)
}

// Broker exchanges a signed assertion for a bearer token. One outbound call
// per invocation, no retries; callers decide whether to try again.
type Broker struct {
	cred         *Credential
	tokenURL     string
	scope        string
	assertionTTL time.Duration
	httpClient   *http.Client
}

// NewBroker builds a broker for the given credential and token endpoint.
// A token URL embedded in the credential takes precedence over tokenURL.
func NewBroker(cred *Credential, tokenURL, scope string, timeout time.Duration) *Broker {
	if cred != nil && cred.TokenURL != "" {
		tokenURL = cred.TokenURL
	}
	return &Broker{
		cred:         cred,
		tokenURL:     tokenURL,
		scope:        scope,
		assertionTTL: DefaultAssertionTTL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Token signs a fresh assertion and exchanges it at the token endpoint.
func (b *Broker) Token(ctx context.Context) (*Token, error) {
	assertion, err := SignAssertion(b.cred, b.tokenURL, b.scope, b.assertionTTL)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("grant_type", GrantType)
	form.Set("assertion", assertion)

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, b.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build token request: %w", err)
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.httpClient.Do(request)
	if err != nil {
		metrics.TokenExchangeErrors.Inc()
		return nil, fmt.Errorf("send token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		metrics.TokenExchangeErrors.Inc()
		return nil, &ExchangeError{StatusCode: resp.StatusCode}
	}

	var result exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		metrics.TokenExchangeErrors.Inc()
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if result.AccessToken == "" {
		metrics.TokenExchangeErrors.Inc()
		return nil, fmt.Errorf("token response missing access_token")
	}

	expiresIn := result.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = int64(DefaultAssertionTTL / time.Second)
	}

	metrics.TokenRefreshes.Inc()
	return &Token{
		AccessToken: result.AccessToken,
		Expiry:      time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
