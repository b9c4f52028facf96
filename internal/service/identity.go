package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/stagefive/notebook/internal/domain"
)

var tracer = otel.Tracer("identity")

// SessionCookieName carries the session token between requests.
const SessionCookieName = "notebook_session"

const sessionAudience = "notebook"

// identityNamespace makes user ids a stable opaque function of the
// email address.
var identityNamespace = uuid.MustParse("8c2f55e0-0d7a-4b3e-9a65-4cf1e7f9d3a1")

// IdentityService issues and verifies session tokens and builds the
// login/logout URLs for the current page. Verification results are
// cached in-process until the token expires.
type IdentityService struct {
	secret []byte
	issuer string
	ttl    time.Duration
	cache  *gocache.Cache
}

func NewIdentityService(secret, issuer string, ttl time.Duration) *IdentityService {
	return &IdentityService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

type sessionClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// IdentityFor derives the opaque identity for an email address. The
// same email always maps to the same id.
func (s *IdentityService) IdentityFor(email string) domain.Identity {
	return domain.Identity{
		ID:    uuid.NewSHA1(identityNamespace, []byte(email)).String(),
		Email: email,
	}
}

// IssueToken creates a signed session token for the identity.
func (s *IdentityService) IssueToken(identity domain.Identity) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		Email: identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   identity.ID,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Wrap(err, "IdentityService.IssueToken: signing failed")
	}
	return token, nil
}

// Verify checks the token signature and claims and returns the
// embedded identity.
func (s *IdentityService) Verify(ctx context.Context, token string) (domain.Identity, error) {
	_, span := tracer.Start(ctx, "Identity.Service.Verify")
	defer span.End()

	if cached, ok := s.cache.Get(token); ok {
		return cached.(domain.Identity), nil
	}

	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithAudience(sessionAudience))
	if err != nil {
		span.RecordError(err)
		return domain.Identity{}, errors.Wrap(err, "session token validation failed")
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || claims.Subject == "" {
		err := fmt.Errorf("invalid session claims")
		span.RecordError(err)
		return domain.Identity{}, err
	}

	identity := domain.Identity{ID: claims.Subject, Email: claims.Email}

	expiry := gocache.DefaultExpiration
	if claims.ExpiresAt != nil {
		expiry = time.Until(claims.ExpiresAt.Time)
	}
	s.cache.Set(token, identity, expiry)

	return identity, nil
}

// TTL is the lifetime of issued tokens, used for the cookie max age.
func (s *IdentityService) TTL() time.Duration {
	return s.ttl
}

// LoginURL returns the login entrypoint that will come back to uri.
func (s *IdentityService) LoginURL(uri string) string {
	q := url.Values{}
	q.Set("continue", uri)
	return "/auth/login?" + q.Encode()
}

// LogoutURL returns the logout entrypoint that will come back to uri.
func (s *IdentityService) LogoutURL(uri string) string {
	q := url.Values{}
	q.Set("continue", uri)
	return "/auth/logout?" + q.Encode()
}
