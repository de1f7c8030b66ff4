package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/usecase"
)

// 認証・カートのCookie名
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	CartSessionCookie  = "cart_session_key"
)

func newCookie(cfg config.Config, name, value string, maxAge time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.GoEnv == "prod",
		SameSite: http.SameSiteLaxMode,
	}
}

// SetTokenCookies はaccess/refreshの組をhttpOnly Cookieに書く
func SetTokenCookies(c echo.Context, cfg config.Config, pair usecase.TokenPair) {
	c.SetCookie(newCookie(cfg, AccessTokenCookie, pair.AccessToken, cfg.AccessTokenTTL))
	c.SetCookie(newCookie(cfg, RefreshTokenCookie, pair.RefreshToken, cfg.RefreshTokenTTL))
}

func ClearTokenCookies(c echo.Context, cfg config.Config) {
	c.SetCookie(newCookie(cfg, AccessTokenCookie, "", -time.Second))
	c.SetCookie(newCookie(cfg, RefreshTokenCookie, "", -time.Second))
}

// ゲストカートのセッションキー。有効期限はrefreshと同じ30日に揃える。
func ApplyCartCookie(c echo.Context, cfg config.Config, ck usecase.CartCookie) {
	if ck.SetKey != "" {
		c.SetCookie(newCookie(cfg, CartSessionCookie, ck.SetKey, cfg.RefreshTokenTTL))
		return
	}
	if ck.Clear {
		c.SetCookie(newCookie(cfg, CartSessionCookie, "", -time.Second))
	}
}

func cookieValue(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil || ck == nil {
		return ""
	}
	return ck.Value
}
