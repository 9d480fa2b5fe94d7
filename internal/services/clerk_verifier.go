package services

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// SessionClaims is the subset of a Clerk session token the API relies on.
type SessionClaims struct {
	UserID          string
	SessionID       string
	Issuer          string
	AuthorizedParty string
	ExpiresAt       time.Time
}

type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*SessionClaims, error)
}

type ClerkVerifierConfig struct {
	JWKSURL string
	Issuer  string
	// AuthorizedParties restricts the azp claim when non-empty.
	AuthorizedParties []string
	// HMACSecret enables HS256 tokens. Only set it outside production.
	HMACSecret string
	Leeway     time.Duration
	HTTPClient *http.Client
}

type clerkVerifier struct {
	log  *logger.Logger
	cfg  ClerkVerifierConfig
	jwks *jwksCache
}

func NewClerkVerifier(log *logger.Logger, cfg ClerkVerifierConfig) SessionVerifier {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Leeway <= 0 {
		cfg.Leeway = 5 * time.Second
	}
	jwks := newJWKSCache(cfg.HTTPClient)
	jwks.setURL(strings.TrimSpace(cfg.JWKSURL))
	return &clerkVerifier{
		log:  log.With("service", "ClerkVerifier"),
		cfg:  cfg,
		jwks: jwks,
	}
}

func (v *clerkVerifier) Verify(ctx context.Context, tokenString string) (*SessionClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, fmt.Errorf("session token is empty")
	}

	// The JWKS cache only decodes RSA keys.
	methods := []string{"RS256"}
	if v.cfg.HMACSecret != "" {
		methods = append(methods, "HS256")
	}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods(methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.Leeway),
	}
	if iss := strings.TrimSpace(v.cfg.Issuer); iss != "" {
		opts = append(opts, jwt.WithIssuer(iss))
	}
	parser := jwt.NewParser(opts...)

	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); ok {
			return []byte(v.cfg.HMACSecret), nil
		}
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid session token: %w", err)
	}
	if tok == nil || !tok.Valid {
		return nil, fmt.Errorf("invalid session token")
	}

	out := &SessionClaims{}
	out.UserID, _ = claims["sub"].(string)
	out.SessionID, _ = claims["sid"].(string)
	out.Issuer, _ = claims["iss"].(string)
	out.AuthorizedParty, _ = claims["azp"].(string)
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if strings.TrimSpace(out.UserID) == "" {
		return nil, fmt.Errorf("missing sub")
	}
	if len(v.cfg.AuthorizedParties) > 0 && out.AuthorizedParty != "" &&
		!containsString(v.cfg.AuthorizedParties, out.AuthorizedParty) {
		return nil, fmt.Errorf("authorized party mismatch: %q", out.AuthorizedParty)
	}
	return out, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if strings.TrimRight(v, "/") == strings.TrimRight(s, "/") {
			return true
		}
	}
	return false
}

// ----- JWKS cache (supports RSA + EC) -----

type jwksCache struct {
	httpClient *http.Client

	mu      sync.RWMutex
	jwksURL string
	keys    map[string]any // kid -> *rsa.PublicKey or *ecdsa.PublicKey

	fetchedAt time.Time
	ttl       time.Duration
}

func newJWKSCache(httpClient *http.Client) *jwksCache {
	return &jwksCache{
		httpClient: httpClient,
		keys:       map[string]any{},
		ttl:        time.Hour,
	}
}

func (j *jwksCache) setURL(url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jwksURL = url
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`

	// RSA
	N string `json:"n"`
	E string `json:"e"`

	// EC
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func (j *jwksCache) getKey(ctx context.Context, kid string) (any, error) {
	j.mu.RLock()
	key := j.keys[kid]
	stale := time.Since(j.fetchedAt) > j.ttl
	url := j.jwksURL
	j.mu.RUnlock()

	if key != nil && !stale {
		return key, nil
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("jwks url not set")
	}

	// Unknown kids trigger a refresh so rotated keys are picked up.
	if err := j.refresh(ctx, url); err != nil {
		j.mu.RLock()
		key = j.keys[kid]
		j.mu.RUnlock()
		if key != nil {
			return key, nil
		}
		return nil, err
	}

	j.mu.RLock()
	defer j.mu.RUnlock()
	key = j.keys[kid]
	if key == nil {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	return key, nil
}

func (j *jwksCache) refresh(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := j.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return err
	}

	next := map[string]any{}
	for _, k := range set.Keys {
		if strings.TrimSpace(k.Kid) == "" {
			continue
		}
		switch k.Kty {
		case "RSA":
			if pub, err := rsaFromModExp(k.N, k.E); err == nil {
				next[k.Kid] = pub
			}
		case "EC":
			if pub, err := ecdsaFromXY(k.Crv, k.X, k.Y); err == nil {
				next[k.Kid] = pub
			}
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = time.Now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}

func ecdsaFromXY(crv, xB64, yB64 string) (*ecdsa.PublicKey, error) {
	if crv != "P-256" {
		return nil, fmt.Errorf("unsupported curve: %s", crv)
	}
	curve := elliptic.P256()
	xb, err := base64.RawURLEncoding.DecodeString(xB64)
	if err != nil {
		return nil, err
	}
	yb, err := base64.RawURLEncoding.DecodeString(yB64)
	if err != nil {
		return nil, err
	}
	x := new(big.Int).SetBytes(xb)
	y := new(big.Int).SetBytes(yb)
	if !curve.IsOnCurve(x, y) {
		return nil, fmt.Errorf("invalid EC point")
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}
