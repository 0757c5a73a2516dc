package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thanhng-dev/classcal/internal/auth"
	"github.com/thanhng-dev/classcal/internal/config"
	"github.com/thanhng-dev/classcal/internal/domain/user"
	"github.com/thanhng-dev/classcal/internal/repo/postgres"
	"github.com/thanhng-dev/classcal/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
}

type AuthHandler struct {
	users        UserReader
	userWriter   UserWriter
	jwt          *auth.Manager
	refreshStore *postgres.RefreshTokensRepo
	cfg          config.Config
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager, refreshStore *postgres.RefreshTokensRepo, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:        users,
		userWriter:   userWriter,
		jwt:          jwtManager,
		refreshStore: refreshStore,
		cfg:          cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	// new accounts can manage the calendar but are not the seeded admin

	role := "editor"

	u, err := h.userWriter.Create(cctx, req.Email, hash, req.Name, role)

	if err != nil {
		if err == postgres.ErrEmailAlreadyUsed {
			RespondBadRequest(ctx, "Email is already in use.", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	accessToken, err := h.issueSession(ctx, cctx, u.ID, u.Email, u.Role)

	if err != nil {
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}
	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)
	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	accessToken, err := h.issueSession(ctx, cctx, foundUser.ID, foundUser.Email, foundUser.Role)

	if err != nil {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
	})
}

// Refresh rotates the refresh token inside a row-locked transaction and
// hands back a fresh access token.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefresh(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	tx, err := h.refreshStore.BeginTx(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	defer func() { _ = tx.Rollback(cctx) }()

	row, err := h.refreshStore.GetForUpdate(cctx, tx, claims.JTI)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	if row.RevokedAt != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	if time.Now().UTC().After(row.ExpiresAt) {
		RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired.")
		return
	}

	// the presented token must be the one this grant was issued for

	if row.Fingerprint != h.jwt.FingerprintRefresh(raw) {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token.")
		return
	}

	accessToken, grant, err := h.jwt.Issue(row.UserID, claims.Email, claims.Role)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	// revoke old, insert new

	err = h.refreshStore.Revoke(cctx, tx, row.ID, &grant.JTI)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	err = h.refreshStore.Create(cctx, tx, postgres.RefreshToken{
		ID:          grant.JTI,
		UserID:      row.UserID,
		Fingerprint: h.jwt.FingerprintRefresh(grant.Token),
		ExpiresAt:   grant.ExpiresAt,
		CreatedAt:   time.Now().UTC(),
	})

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	err = tx.Commit(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	h.setRefreshCookie(ctx, grant.Token, grant.ExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"accessToken": accessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(refreshCookieName)

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	claims, err := h.jwt.VerifyRefresh(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	tx, err := h.refreshStore.BeginTx(cctx)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}
	defer func() { _ = tx.Rollback(cctx) }()

	// revoke that one token (idempotent); ?all=1 drops every session
	if ctx.Query("all") == "1" {
		_ = h.refreshStore.RevokeAllForUser(cctx, tx, claims.UserID)
	} else {
		_ = h.refreshStore.Revoke(cctx, tx, claims.JTI, nil)
	}
	_ = tx.Commit(cctx)

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

func (h *AuthHandler) issueSession(ctx *gin.Context, cctx context.Context, userID, email, role string) (string, error) {
	accessToken, grant, err := h.jwt.Issue(userID, email, role)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return "", err
	}

	err = h.storeRefreshGrant(cctx, userID, grant)

	if err != nil {
		RespondInternal(ctx, "Could not create session")
		return "", err
	}

	h.setRefreshCookie(ctx, grant.Token, grant.ExpiresAt)

	return accessToken, nil
}

func (h *AuthHandler) storeRefreshGrant(ctx context.Context, userID string, grant auth.RefreshGrant) error {
	tx, err := h.refreshStore.BeginTx(ctx)

	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = h.refreshStore.Create(ctx, tx, postgres.RefreshToken{
		ID:          grant.JTI,
		UserID:      userID,
		Fingerprint: h.jwt.FingerprintRefresh(grant.Token),
		ExpiresAt:   grant.ExpiresAt,
		CreatedAt:   time.Now().UTC(),
	})

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const refreshCookieName = "refresh_token"

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		refreshCookieName,
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		refreshCookieName,
		"",
		-1,
		"/auth",
		"",
		secure,
		true,
	)
}
