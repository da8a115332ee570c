package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// UserHandler serves the signed-in user's profile. Profile writes are
// folded into the session user; a password change ends the session.
type UserHandler struct {
	sessions    Sessions
	uploadLimit int64
	log         zerolog.Logger
}

func NewUserHandler(sessions Sessions, uploadLimit int64, log zerolog.Logger) *UserHandler {
	return &UserHandler{sessions: sessions, uploadLimit: uploadLimit, log: log}
}

// Profile handles GET /v1/user/profile.
func (h *UserHandler) Profile(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.Profile(s.Services.User))
}

// UpdateProfile handles PUT /v1/user/profile.
//
// @Summary      Update profile
// @Tags         user
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Failure      422   {object}  errorResponse
// @Router       /v1/user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	in := ports.ProfileInput{Name: strings.TrimSpace(req.Name), Email: strings.TrimSpace(req.Email)}
	if in.Name == "" && in.Email == "" {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "nothing to update")
	}

	user, err := query.Mutate(c.Request().Context(), s.Queries, query.UpdateProfile, func(ctx context.Context) (*domain.User, error) {
		return s.Services.User.UpdateProfile(ctx, in)
	})
	if err != nil {
		return err
	}
	afterUserMutation(c, h.sessions, s, query.UpdateProfile, user)
	return c.JSON(http.StatusOK, s.User())
}

// ChangePassword handles PUT /v1/user/password. On success the session is
// gone and the client must sign in again.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	_, err = query.Mutate(c.Request().Context(), s.Queries, query.ChangePassword, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Services.User.ChangePassword(ctx, ports.PasswordInput{
			CurrentPassword: req.CurrentPassword,
			NewPassword:     req.NewPassword,
		})
	})
	if err != nil {
		return err
	}
	afterUserMutation(c, h.sessions, s, query.ChangePassword, nil)
	h.log.Info().Str("session_id", s.ID).Msg("password changed, session ended")
	return c.JSON(http.StatusOK, sessionEndedResponse{Message: "password changed, please sign in again", Redirect: SignInPath})
}

// UploadAvatar handles POST /v1/user/avatar (multipart field "avatar").
func (h *UserHandler) UploadAvatar(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	file, err := readUpload(c, "avatar", true, h.uploadLimit)
	if err != nil {
		return err
	}

	user, err := query.Mutate(c.Request().Context(), s.Queries, query.UploadAvatar, func(ctx context.Context) (*domain.User, error) {
		return s.Services.User.UploadAvatar(ctx, *file)
	})
	if err != nil {
		return err
	}
	afterUserMutation(c, h.sessions, s, query.UploadAvatar, user)
	return c.JSON(http.StatusOK, s.User())
}
