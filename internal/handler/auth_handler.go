package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"drinkshop/internal/config"
	"drinkshop/internal/middleware"
	"drinkshop/internal/usecase"
)

// /auth と /user/profile のHTTP
type AuthHandler struct {
	uc  *usecase.AuthUsecase
	cfg config.Config
}

// DI
func NewAuthHandler(uc *usecase.AuthUsecase, cfg config.Config) *AuthHandler {
	return &AuthHandler{uc: uc, cfg: cfg}
}

type SignupRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	MiddleName string `json:"middle_name"`
	Phone      string `json:"phone"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	MiddleName *string `json:"middle_name"`
	BirthDate  *string `json:"birth_date"`
	Gender     *string `json:"gender"`
	Phone      *string `json:"phone"`
}

type DeleteAccountRequest struct {
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, auth middleware.Authenticator) {
	g := e.Group("/auth")
	g.POST("/signup", h.signup)
	g.GET("/verify-email", h.verifyEmail)
	g.POST("/signin", h.signin)
	g.POST("/refresh", h.refresh)
	g.POST("/signout", h.signout)
	g.POST("/password-reset", h.requestPasswordReset)
	g.POST("/password-reset/confirm", h.confirmPasswordReset)

	p := e.Group("/user/profile")
	p.Use(middleware.AuthRequired(auth, h.cfg))
	p.GET("", h.me)
	p.PATCH("", h.updateProfile)
	p.DELETE("", h.deleteAccount)
}

func (h *AuthHandler) signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Signup(c.Request().Context(), usecase.SignupInput{
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Phone:      req.Phone,
	}); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusAccepted, MessageResponse{Message: "confirmation email sent"})
}

func (h *AuthHandler) verifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "token is required"})
	}

	user, err := h.uc.VerifyEmail(c.Request().Context(), token)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	result, err := h.uc.Signin(c.Request().Context(), usecase.SigninInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: c.Request().UserAgent(),
		IPAddress: c.RealIP(),
	})
	if err != nil {
		return writeError(c, err)
	}

	middleware.SetTokenCookies(c, h.cfg, result.Token)
	return c.JSON(http.StatusOK, result.User)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	refresh := ""
	if ck, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && ck != nil {
		refresh = ck.Value
	}

	result, err := h.uc.Refresh(c.Request().Context(), refresh, c.Request().UserAgent(), c.RealIP())
	if err != nil {
		middleware.ClearTokenCookies(c, h.cfg)
		return writeError(c, err)
	}

	middleware.SetTokenCookies(c, h.cfg, result.Token)
	return c.JSON(http.StatusOK, MessageResponse{Message: "refreshed"})
}

func (h *AuthHandler) signout(c echo.Context) error {
	refresh := ""
	if ck, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && ck != nil {
		refresh = ck.Value
	}

	if err := h.uc.Signout(c.Request().Context(), refresh); err != nil {
		return writeError(c, err)
	}

	middleware.ClearTokenCookies(c, h.cfg)
	return c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	user, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) updateProfile(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	in := usecase.UpdateProfileInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		MiddleName: req.MiddleName,
		Gender:     req.Gender,
		Phone:      req.Phone,
	}
	if req.BirthDate != nil {
		t, err := time.ParseInLocation("2006-01-02", *req.BirthDate, time.UTC)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid birth_date"})
		}
		in.BirthDate = &t
	}

	user, err := h.uc.UpdateProfile(c.Request().Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) deleteAccount(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req DeleteAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.DeleteAccount(c.Request().Context(), userID, req.Password); err != nil {
		return writeError(c, err)
	}

	middleware.ClearTokenCookies(c, h.cfg)
	return c.JSON(http.StatusOK, MessageResponse{Message: "account deleted"})
}

func (h *AuthHandler) requestPasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, MessageResponse{Message: "if the email exists, a reset link has been sent"})
}

func (h *AuthHandler) confirmPasswordReset(c echo.Context) error {
	var req PasswordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.ConfirmPasswordReset(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "password updated"})
}
