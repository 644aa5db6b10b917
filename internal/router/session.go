package router

import (
	"errors"
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"quietseed/internal/auth"
	apperrors "quietseed/internal/errors"
	"quietseed/internal/handler"
)

var errTokenRevoked = errors.New("token revoked")

// SessionGate authenticates bearer access tokens and enforces the admin flag.
type SessionGate struct {
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewSessionGate builds the gate from the JWT service and the token store
// that records revoked access tokens.
func NewSessionGate(jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) *SessionGate {
	return &SessionGate{jwtService: jwtService, tokenStore: tokenStore}
}

// Authenticate requires a valid, unrevoked access token and stores its
// claims under handler.ClaimsContextKey.
func (g *SessionGate) Authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		ContextKey:  handler.ClaimsContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			claims, err := g.jwtService.ValidateAccessToken(token)
			if err != nil {
				return nil, err
			}
			revoked, err := g.tokenStore.IsAccessTokenBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return nil, err
			}
			if revoked {
				return nil, errTokenRevoked
			}
			return claims, nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrUnauthorized.Error(),
				Code:  "UNAUTHORIZED",
			})
		},
	})
}

// RequireAdmin rejects authenticated sessions without the admin flag.
// It must run after Authenticate.
func (g *SessionGate) RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := c.Get(handler.ClaimsContextKey).(*auth.Claims)
			if !ok || claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
					Error: apperrors.ErrUnauthorized.Error(),
					Code:  "UNAUTHORIZED",
				})
			}
			if !claims.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
					Error: apperrors.ErrForbidden.Error(),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}
