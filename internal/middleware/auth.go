package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/domain/model"
	"drinkshop/internal/usecase"
)

const (
	CtxUserIDKey   = "user_id"   // int64
	CtxUserRoleKey = "user_role" // string
)

func errorJSON(msg string) map[string]string {
	return map[string]string{"error": msg}
}

// usecase.AuthUsecaseに依存する約束（テストではmockに差し替える）
type Authenticator interface {
	Authenticate(ctx context.Context, access, refresh, userAgent, ip string) (usecase.AuthResult, error)
}

// Cookie優先でaccess tokenを拾う。SPA以外のクライアント用にBearerも受ける。
func extractAccessToken(c echo.Context) string {
	if v := cookieValue(c, AccessTokenCookie); v != "" {
		return v
	}
	authz := c.Request().Header.Get("Authorization")
	parts := strings.SplitN(authz, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func authenticate(c echo.Context, auth Authenticator, cfg config.Config) (usecase.AuthResult, error) {
	access := extractAccessToken(c)
	refresh := cookieValue(c, RefreshTokenCookie)

	result, err := auth.Authenticate(
		c.Request().Context(),
		access,
		refresh,
		c.Request().UserAgent(),
		c.RealIP(),
	)
	if err != nil {
		return usecase.AuthResult{}, err
	}

	// アクセストークンが切れていてもrefreshが生きていればここで差し替わる
	if result.Rotated {
		SetTokenCookies(c, cfg, result.Token)
	}
	return result, nil
}

// AuthRequired はログイン必須のルート用
func AuthRequired(auth Authenticator, cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result, err := authenticate(c, auth, cfg)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			c.Set(CtxUserIDKey, result.UserID)
			c.Set(CtxUserRoleKey, string(result.Role))
			return next(c)
		}
	}
}

// OptionalAuth はカートのようにゲストでも通すルート用。
// 認証に失敗してもエラーにせず、ゲストとして先へ進める。
func OptionalAuth(auth Authenticator, cfg config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if result, err := authenticate(c, auth, cfg); err == nil {
				c.Set(CtxUserIDKey, result.UserID)
				c.Set(CtxUserRoleKey, string(result.Role))
			}
			return next(c)
		}
	}
}

// RequireAdmin はAuthRequiredの後段で使う
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxUserRoleKey).(string)
			if role != string(model.RoleAdmin) {
				return c.JSON(http.StatusForbidden, errorJSON("forbidden"))
			}
			return next(c)
		}
	}
}
