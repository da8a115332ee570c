package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// SignInPath is where the UI lands after a session ends.
const SignInPath = "/sign-in"

// TokenIssuer signs gateway tokens.
type TokenIssuer interface {
	Issue(sessionID string, user *domain.User) (string, time.Time, error)
}

type AuthHandler struct {
	sessions Sessions
	tokens   TokenIssuer
	secure   bool
	log      zerolog.Logger
}

// NewAuthHandler creates an AuthHandler. secure marks the token cookie
// Secure (production, behind TLS).
func NewAuthHandler(sessions Sessions, tokens TokenIssuer, secure bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, tokens: tokens, secure: secure, log: log}
}

// Login signs in against the backend inside a fresh session and returns a
// gateway token naming it.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "NIM or email, and password"
// @Success      200   {object}  loginResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	ctx := c.Request().Context()
	sess, err := h.sessions.Init(ctx)
	if err != nil {
		return err
	}
	user, err := sess.Services.Auth.Login(ctx, ports.LoginInput{NIM: req.NIM, Email: req.Email, Password: req.Password})
	if err != nil {
		h.sessions.Clear(context.WithoutCancel(ctx), sess.ID)
		return err
	}
	sess.SetUser(ctx, user)

	token, exp, err := h.tokens.Issue(sess.ID, user)
	if err != nil {
		h.sessions.Clear(context.WithoutCancel(ctx), sess.ID)
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.log.Info().Str("session_id", sess.ID).Str("user_id", user.ID).Str("role", user.Role).Msg("user signed in")
	return c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: exp, User: user})
}

// Logout ends the backend session and the gateway session. The local session
// is cleared even if the backend call fails.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionEndedResponse
// @Router       /v1/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := query.Mutate(ctx, sess.Queries, query.Logout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, sess.Services.Auth.Logout(ctx)
	}); err != nil {
		h.log.Warn().Err(err).Str("session_id", sess.ID).Msg("backend logout failed")
	}
	h.sessions.Clear(context.WithoutCancel(ctx), sess.ID)
	clearTokenCookie(c)

	return c.JSON(http.StatusOK, sessionEndedResponse{Message: "signed out", Redirect: SignInPath})
}

// Me returns the signed-in user. The view never goes stale on its own; only
// profile mutations invalidate it.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	user, err := query.Fetch(c.Request().Context(), sess.Queries, query.CurrentUser(sess.Services.Auth))
	if err != nil {
		return err
	}
	sess.SetUser(c.Request().Context(), user)
	return c.JSON(http.StatusOK, user)
}
