package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"p2plending/internal/adapter/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

type AuthConfig struct {
	HMACSecret string
	Issuer     string
	ClockSkew  time.Duration
}

// JWTAuth authenticates mutating requests with an HMAC bearer token and
// stores its subject as the request principal. Reads pass through, with the
// principal attached when a valid token is present.
func JWTAuth(cfg AuthConfig) echo.MiddlewareFunc {
	secret := []byte(cfg.HMACSecret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			readOnly := false
			switch req.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				readOnly = true
			}

			raw := extractBearer(req.Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				if readOnly {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			subject, err := parseSubject(raw, secret, cfg)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token: " + err.Error()})
			}
			c.SetRequest(req.WithContext(auth.WithPrincipal(req.Context(), subject)))
			return next(c)
		}
	}
}

func parseSubject(raw string, secret []byte, cfg AuthConfig) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth secret not configured")
	}
	opts := []jwt.ParserOption{jwt.WithLeeway(cfg.ClockSkew), jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("token invalid")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}

func extractBearer(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
