package usecase

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"drinkshop/internal/config"
	"drinkshop/internal/domain/model"
	"drinkshop/internal/infra/mail"
	repo "drinkshop/internal/repository"
)

// パスワード再設定トークンの有効期限
const resetTokenTTL = time.Hour

// メール確認トークンの有効期限
const verificationTokenTTL = 24 * time.Hour

type SignupInput struct {
	Email      string
	Password   string
	FirstName  string
	LastName   string
	MiddleName string
	Phone      string
}

type SigninInput struct {
	Email     string
	Password  string
	UserAgent string
	IPAddress string
}

type UserResponse struct {
	ID         int64      `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	MiddleName string     `json:"middle_name"`
	BirthDate  *time.Time `json:"birth_date"`
	Gender     string     `json:"gender"`
	Phone      string     `json:"phone"`
	Role       string     `json:"role"`
}

// ハンドラがCookieに詰める平文トークンの組
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

type SigninResult struct {
	User  UserResponse
	Token TokenPair
}

// Authenticateの結果。Rotatedのときだけ新しいCookieを書く。
type AuthResult struct {
	UserID  int64
	Role    model.Role
	Rotated bool
	Token   TokenPair
}

type UpdateProfileInput struct {
	FirstName  *string
	LastName   *string
	MiddleName *string
	BirthDate  *time.Time
	Gender     *string
	Phone      *string
}

type AuthUsecase struct {
	cfg              config.Config
	userRepo         repo.UserRepository
	sessionRepo      repo.SessionRepository
	verificationRepo repo.VerificationRepository
	tm               repo.TransactionManager
	mailer           mail.Mailer
}

func NewAuthUsecase(
	cfg config.Config,
	userRepo repo.UserRepository,
	sessionRepo repo.SessionRepository,
	verificationRepo repo.VerificationRepository,
	tm repo.TransactionManager,
	mailer mail.Mailer,
) *AuthUsecase {
	return &AuthUsecase{
		cfg:              cfg,
		userRepo:         userRepo,
		sessionRepo:      sessionRepo,
		verificationRepo: verificationRepo,
		tm:               tm,
		mailer:           mailer,
	}
}

// refresh token生成（平文 + DB保存hash）
func newRandomTokenAndHash() (plain string, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}

	plain = base64.RawURLEncoding.EncodeToString(b)

	sum := sha256.Sum256([]byte(plain))
	hash = base64.RawURLEncoding.EncodeToString(sum[:])

	return plain, hash, nil
}

func hashToken(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func (u *AuthUsecase) issueAccessToken(userID int64, role model.Role) (string, int, error) {
	now := nowUTC()
	ttl := u.cfg.AccessTokenTTL
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := t.SignedString([]byte(u.cfg.JWTSecret))
	if err != nil {
		return "", 0, err
	}

	return signed, int(ttl.Seconds()), nil
}

// parseAccessToken はJWTを検証してsub/roleを返す。期限切れはjwtのエラーで区別する。
func (u *AuthUsecase) parseAccessToken(raw string) (int64, model.Role, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(u.cfg.JWTSecret), nil
	})
	if err != nil || token == nil || !token.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", errors.New("invalid claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok || sub <= 0 {
		return 0, "", errors.New("invalid sub")
	}
	roleStr, _ := claims["role"].(string)
	role := model.Role(roleStr)
	if role != model.RoleUser && role != model.RoleAdmin {
		return 0, "", errors.New("invalid role")
	}

	return int64(sub), role, nil
}

func (u *AuthUsecase) createSession(ctx context.Context, userID int64, tokenHash, userAgent, ip string) error {
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		TokenHash: tokenHash,
		UserAgent: userAgent,
		IPAddress: ip,
		ExpiresAt: nowUTC().Add(u.cfg.RefreshTokenTTL),
	}
	return u.sessionRepo.Create(ctx, session)
}

// Signup は本登録の前段。確認トークンをメールで送り、確認待ちの行を作る。
func (u *AuthUsecase) Signup(ctx context.Context, in SignupInput) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}
	if in.FirstName == "" || in.LastName == "" {
		return NewHTTPError(http.StatusBadRequest, "first_name and last_name are required")
	}

	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return NewHTTPError(http.StatusConflict, "email already registered")
	}

	// 以前の確認待ちが残っていたら作り直す
	if pending, err := u.verificationRepo.FindUnverifiedByEmail(ctx, email); err == nil {
		if err := u.verificationRepo.DeleteUnverifiedByID(ctx, pending.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	token := uuid.NewString()
	pending := &model.UnverifiedUser{
		Email:             email,
		PasswordHash:      string(hashed),
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		MiddleName:        in.MiddleName,
		Phone:             in.Phone,
		VerificationToken: token,
		TokenExpiresAt:    nowUTC().Add(verificationTokenTTL),
	}
	if err := u.verificationRepo.CreateUnverified(ctx, pending); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return NewHTTPError(http.StatusConflict, "email already registered")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	go func(email, token string) {
		link := fmt.Sprintf("%s/auth/verify-email?token=%s", u.cfg.FrontendURL, token)
		body := fmt.Sprintf(`<p>Confirm your email: <a href="%s">%s</a></p>`, link, link)
		if err := u.mailer.Send(email, "Confirm your email", body); err != nil {
			log.Printf("verification mail: %v", err)
		}
	}(email, token)

	return nil
}

// VerifyEmail は確認待ちを本登録へ昇格させる
func (u *AuthUsecase) VerifyEmail(ctx context.Context, token string) (UserResponse, error) {
	pending, err := u.verificationRepo.FindUnverifiedByToken(ctx, token)
	if err != nil {
		return UserResponse{}, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	if nowUTC().After(pending.TokenExpiresAt) {
		return UserResponse{}, NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}

	user := &model.User{
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		FirstName:    pending.FirstName,
		LastName:     pending.LastName,
		MiddleName:   pending.MiddleName,
		BirthDate:    pending.BirthDate,
		Gender:       pending.Gender,
		Phone:        pending.Phone,
		Role:         model.RoleUser,
		IsActive:     true,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return UserResponse{}, NewHTTPError(http.StatusConflict, "email already registered")
		}
		return UserResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.verificationRepo.DeleteUnverifiedByID(ctx, pending.ID); err != nil {
		log.Printf("cleanup unverified user %d: %v", pending.ID, err)
	}

	return toUserResponse(user), nil
}

func toUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Email:      user.Email,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		MiddleName: user.MiddleName,
		BirthDate:  user.BirthDate,
		Gender:     string(user.Gender),
		Phone:      user.Phone,
		Role:       string(user.Role),
	}
}

// Signin は認証してaccess/refreshの組を発行する。
// どの失敗でも返すメッセージは同じにして、どちらが違うかを漏らさない。
func (u *AuthUsecase) Signin(ctx context.Context, in SigninInput) (SigninResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return SigninResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return SigninResult{}, NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}
	if !user.IsActive {
		return SigninResult{}, NewHTTPError(http.StatusForbidden, "account is disabled")
	}

	access, expiresIn, err := u.issueAccessToken(user.ID, user.Role)
	if err != nil {
		return SigninResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refresh, refreshHash, err := newRandomTokenAndHash()
	if err != nil {
		return SigninResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	if err := u.createSession(ctx, user.ID, refreshHash, in.UserAgent, in.IPAddress); err != nil {
		return SigninResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.userRepo.UpdateLastLogin(ctx, user.ID, nowUTC()); err != nil {
		log.Printf("update last login %d: %v", user.ID, err)
	}

	return SigninResult{
		User: toUserResponse(user),
		Token: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    expiresIn,
		},
	}, nil
}

// rotate は古いセッションを新しいものに置き換える。古いrefreshは二度と通らない。
func (u *AuthUsecase) rotate(ctx context.Context, refreshPlain, userAgent, ip string) (AuthResult, error) {
	session, err := u.sessionRepo.FindByTokenHash(ctx, hashToken(refreshPlain))
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if nowUTC().After(session.ExpiresAt) {
		if err := u.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
			log.Printf("delete expired session %s: %v", session.ID, err)
		}
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, session.UserID)
	if err != nil || !user.IsActive {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	access, expiresIn, err := u.issueAccessToken(user.ID, user.Role)
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	refresh, refreshHash, err := newRandomTokenAndHash()
	if err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.createSession(ctx, user.ID, refreshHash, userAgent, ip); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.sessionRepo.DeleteByID(ctx, session.ID); err != nil {
		return AuthResult{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return AuthResult{
		UserID:  user.ID,
		Role:    user.Role,
		Rotated: true,
		Token: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    expiresIn,
		},
	}, nil
}

// Authenticate はミドルウェアの入口。
// accessが有効ならそのまま通し、refreshが来ていればセッション期限を延ばす。
// accessが切れていてもrefreshが生きていればローテーションして通す。
func (u *AuthUsecase) Authenticate(ctx context.Context, access, refresh, userAgent, ip string) (AuthResult, error) {
	if access != "" {
		userID, role, err := u.parseAccessToken(access)
		if err == nil {
			if refresh != "" {
				// スライディングウィンドウ。失敗しても認証自体は通す。
				if session, err := u.sessionRepo.FindByTokenHash(ctx, hashToken(refresh)); err == nil {
					until := nowUTC().Add(u.cfg.RefreshTokenTTL)
					if err := u.sessionRepo.ExtendExpiry(ctx, session.ID, until); err != nil {
						log.Printf("extend session %s: %v", session.ID, err)
					}
				}
			}
			return AuthResult{UserID: userID, Role: role}, nil
		}
	}

	if refresh == "" {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.rotate(ctx, refresh, userAgent, ip)
}

// Refresh は明示的なトークン再発行
func (u *AuthUsecase) Refresh(ctx context.Context, refreshPlain, userAgent, ip string) (AuthResult, error) {
	if refreshPlain == "" {
		return AuthResult{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.rotate(ctx, refreshPlain, userAgent, ip)
}

// Signout はセッションを消す。既に無くてもエラーにしない。
func (u *AuthUsecase) Signout(ctx context.Context, refreshPlain string) error {
	if refreshPlain == "" {
		return nil
	}
	if err := u.sessionRepo.DeleteByTokenHash(ctx, hashToken(refreshPlain)); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *AuthUsecase) Me(ctx context.Context, userID int64) (UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return UserResponse{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	return toUserResponse(user), nil
}

// UpdateProfile はnilでないフィールドだけ更新する
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) (UserResponse, error) {
	upd := repo.ProfileUpdate{
		FirstName:  in.FirstName,
		LastName:   in.LastName,
		MiddleName: in.MiddleName,
		BirthDate:  in.BirthDate,
		Phone:      in.Phone,
	}
	if in.Gender != nil {
		g := model.Gender(*in.Gender)
		if g != model.GenderMale && g != model.GenderFemale && g != model.GenderUnspecified {
			return UserResponse{}, NewHTTPError(http.StatusBadRequest, "invalid gender")
		}
		upd.Gender = &g
	}

	if err := u.userRepo.UpdateProfile(ctx, userID, upd); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			return UserResponse{}, NewHTTPError(http.StatusNotFound, "user not found")
		}
		return UserResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return u.Me(ctx, userID)
}

// DeleteAccount は退会。パスワード確認つきで、本人のデータを子から順に消す。
// 最後の管理者は消せない。
func (u *AuthUsecase) DeleteAccount(ctx context.Context, userID int64, password string) error {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return NewHTTPError(http.StatusForbidden, "wrong password")
	}
	if user.Role == model.RoleAdmin {
		others, err := u.userRepo.CountAdminsExcept(ctx, userID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if others == 0 {
			return NewHTTPError(http.StatusConflict, "cannot delete the last admin")
		}
	}

	return u.tm.WithinTx(ctx, func(r repo.TxRepos) error {
		// カート（明細→本体）
		if cart, err := r.Carts().FindByUserID(ctx, userID); err == nil {
			if err := r.CartItems().DeleteByCartID(ctx, cart.ID); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
		}
		if err := r.Carts().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// 注文（配送情報・明細→本体）
		for page := 1; ; page++ {
			orders, _, err := r.Orders().ListByUserID(ctx, userID, page, 100)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if len(orders) == 0 {
				break
			}
			for _, o := range orders {
				if err := r.Delivery().DeleteByOrderID(ctx, o.ID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if err := r.OrderItems().DeleteByOrderID(ctx, o.ID); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}
		if err := r.Orders().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if err := r.Addresses().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Sessions().DeleteAllByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.Users().Delete(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
}

// RequestPasswordReset はメールが登録済みかを漏らさないため常に成功を返す
func (u *AuthUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := u.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil
	}

	token := uuid.NewString()
	reset := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: nowUTC().Add(resetTokenTTL),
	}
	if err := u.verificationRepo.CreateResetToken(ctx, reset); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	go func(email, token string) {
		link := fmt.Sprintf("%s/auth/reset-password?token=%s", u.cfg.FrontendURL, token)
		body := fmt.Sprintf(`<p>Reset your password: <a href="%s">%s</a></p>`, link, link)
		if err := u.mailer.Send(email, "Password reset", body); err != nil {
			log.Printf("password reset mail: %v", err)
		}
	}(user.Email, token)

	return nil
}

// ConfirmPasswordReset はパスワードを差し替えて全セッションを失効させる
func (u *AuthUsecase) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	reset, err := u.verificationRepo.FindResetToken(ctx, token)
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}
	if reset.IsUsed || nowUTC().After(reset.ExpiresAt) {
		return NewHTTPError(http.StatusBadRequest, "invalid or expired token")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	if err := u.userRepo.UpdatePassword(ctx, reset.UserID, string(hashed)); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.verificationRepo.MarkResetTokenUsed(ctx, reset.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if err := u.sessionRepo.DeleteAllByUserID(ctx, reset.UserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
