// Package googleauth implements the service-account JWT bearer flow used by
// the calendar and analytics adapters. Each scope gets its own cached access
// token; a fresh assertion is signed and exchanged when the cache is cold or
// the token is near expiry.
package googleauth

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/apexlens/backoffice/internal/config"
	"github.com/apexlens/backoffice/internal/domain"
)

const grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

// expirySlack renews tokens this long before the provider's deadline.
const expirySlack = time.Minute

// TokenSource mints Google API access tokens for a service account.
type TokenSource struct {
	email      string
	key        *rsa.PrivateKey
	tokenURL   string
	httpClient *http.Client
	log        *slog.Logger

	mu     sync.Mutex
	tokens map[string]cachedToken // keyed by scope
}

type cachedToken struct {
	value     string
	expiresAt time.Time
}

// NewTokenSource parses the configured private key and returns a ready source.
func NewTokenSource(cfg config.GoogleConfig, logger *slog.Logger) (*TokenSource, error) {
	key, err := parsePrivateKey(cfg.PrivateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("googleauth: %w", err)
	}

	return &TokenSource{
		email:      cfg.ServiceAccountEmail,
		key:        key,
		tokenURL:   cfg.TokenURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        logger.With("adapter", "googleauth"),
		tokens:     make(map[string]cachedToken),
	}, nil
}

// NewTokenSourceWithURL overrides the token endpoint (for testing).
func NewTokenSourceWithURL(email, privateKeyPEM, tokenURL string, logger *slog.Logger) (*TokenSource, error) {
	ts, err := NewTokenSource(config.GoogleConfig{
		ServiceAccountEmail: email,
		PrivateKeyPEM:       privateKeyPEM,
		TokenURL:            tokenURL,
	}, logger)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// Token returns a valid access token for the scope, reusing the cached one
// until shortly before expiry.
func (s *TokenSource) Token(ctx context.Context, scope string) (string, error) {
	s.mu.Lock()
	if tok, ok := s.tokens[scope]; ok && time.Now().Before(tok.expiresAt.Add(-expirySlack)) {
		s.mu.Unlock()
		return tok.value, nil
	}
	s.mu.Unlock()

	assertion, err := s.signAssertion(scope)
	if err != nil {
		return "", fmt.Errorf("googleauth: sign assertion: %w", err)
	}

	value, expiresIn, err := s.exchange(ctx, assertion)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.tokens[scope] = cachedToken{
		value:     value,
		expiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}
	s.mu.Unlock()

	s.log.DebugContext(ctx, "token minted", slog.String("scope", scope), slog.Int("expires_in", expiresIn))
	return value, nil
}

// signAssertion builds the RS256 claim set Google expects for the flow.
func (s *TokenSource) signAssertion(scope string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss":   s.email,
		"scope": scope,
		"aud":   s.tokenURL,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(s.key)
}

func (s *TokenSource) exchange(ctx context.Context, assertion string) (string, int, error) {
	form := url.Values{}
	form.Set("grant_type", grantType)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("googleauth: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("googleauth: token exchange: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("googleauth: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", 0, &domain.UpstreamError{
			Provider: "googleauth",
			Status:   resp.StatusCode,
			Message:  strings.TrimSpace(string(body)),
		}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", 0, fmt.Errorf("googleauth: decode json: %w", err)
	}
	if out.AccessToken == "" {
		return "", 0, fmt.Errorf("googleauth: empty access_token in response")
	}

	return out.AccessToken, out.ExpiresIn, nil
}

func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(pemData))
	if block == nil {
		return nil, fmt.Errorf("no PEM block in private key")
	}

	// Service-account keys ship as PKCS#8; accept PKCS#1 as well.
	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is not RSA")
		}
		return rsaKey, nil
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return key, nil
}
