package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/domain/model"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

//middleware が c.Set("user_id", int64) した値を取り出す

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}

func getRoleFromContext(c echo.Context) model.Role {
	role, _ := c.Get(middleware.CtxUserRoleKey).(string)
	return model.Role(role)
}

// カート系ルートの持ち主。ログインしていればuser、いなければCookieのキー。
func cartIdentity(c echo.Context) usecase.CartIdentity {
	var id usecase.CartIdentity
	if userID, ok := getUserIDFromContext(c); ok {
		id.UserID = &userID
	}
	if ck, err := c.Cookie(middleware.CartSessionCookie); err == nil && ck != nil {
		id.SessionKey = ck.Value
	}
	return id
}
