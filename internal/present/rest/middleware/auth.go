package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/stagefive/notebook/internal/domain"
	"github.com/stagefive/notebook/internal/service"
)

var tracer = otel.Tracer("auth")

type AuthMiddleware struct {
	identity *service.IdentityService
}

func NewAuthMiddleware(identity *service.IdentityService) *AuthMiddleware {
	return &AuthMiddleware{
		identity: identity,
	}
}

// IdentifyIdentity resolves the session token from the cookie or the
// Authorization header and stores the requester identity in the
// request context. A missing or invalid token is not an error; the
// request proceeds unauthenticated.
func (s *AuthMiddleware) IdentifyIdentity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Auth.Middleware.IdentifyIdentity")
		defer span.End()

		var token string

		authHeader := c.Request().Header.Get("authorization")
		if authHeader != "" {
			split := strings.Split(authHeader, " ")
			if len(split) != 2 {
				span.RecordError(fmt.Errorf("invalid authentication header"))
				goto skipCheckAuthorization
			}

			authType, headerToken := split[0], split[1]
			if authType != "Bearer" {
				span.RecordError(fmt.Errorf("only Bearer is acceptable"))
				goto skipCheckAuthorization
			}
			token = headerToken
		} else if cookie, err := c.Cookie(service.SessionCookieName); err == nil {
			token = cookie.Value
		}

		if token != "" {
			result, err := s.identity.Verify(ctx, token)
			if err != nil {
				span.RecordError(errors.Wrap(err, "AuthMiddleware.IdentifyIdentity: identity.Verify failed"))
				goto skipCheckAuthorization
			}

			ctx = context.WithValue(ctx, domain.RequesterIdCtxKey, result.ID)
			ctx = context.WithValue(ctx, domain.RequesterEmailCtxKey, result.Email)
			span.SetAttributes(attribute.String("RequesterId", result.ID))
		}

	skipCheckAuthorization:
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
