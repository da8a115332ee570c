package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/api/middleware"
	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
	"github.com/galacash/gateway/internal/session"
)

// Sessions is the session lifecycle the handlers drive.
type Sessions interface {
	Init(ctx context.Context) (*session.Session, error)
	Clear(ctx context.Context, id string)
}

// ctxSession extracts the session injected by the Auth middleware. Its
// absence means the route was mounted without Auth.
func ctxSession(c echo.Context) (*session.Session, error) {
	s, ok := c.Get(middleware.SessionKey).(*session.Session)
	if !ok || s == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return s, nil
}

// fetch serves a descriptor through the session cache.
func fetch[T any](c echo.Context, d query.Descriptor[T]) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	v, err := query.Fetch(c.Request().Context(), s.Queries, d)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

// afterUserMutation applies the session side of a profile mutation: merge
// the result into the session user, or end the session.
func afterUserMutation(c echo.Context, sessions Sessions, s *session.Session, m query.Mutation, user *domain.User) {
	effect, _ := query.EffectOf(m)
	if effect.MergeSession {
		s.MergeUser(c.Request().Context(), user)
	}
	if effect.EndSession {
		sessions.Clear(c.Request().Context(), s.ID)
		clearTokenCookie(c)
	}
}

func clearTokenCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// checkBillTransition rejects a status change the freshest cached copy of the
// bill already rules out. Without a fresh copy the backend decides.
func checkBillTransition(c echo.Context, s *session.Session, id string, next domain.BillStatus) error {
	bill, ok := query.Peek[*domain.CashBill](c.Request().Context(), s.Queries, query.DetailKey(query.NSCashBills, id), query.StaleDetail)
	if !ok || bill == nil || bill.Status == "" {
		return nil
	}
	if !bill.Status.CanTransitionTo(next) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			domain.ErrInvalidTransition.Error()+": "+string(bill.Status)+" → "+string(next))
	}
	return nil
}

// checkApplicationTransition is checkBillTransition for fund applications.
func checkApplicationTransition(c echo.Context, s *session.Session, id string, next domain.ApplicationStatus) error {
	fa, ok := query.Peek[*domain.FundApplication](c.Request().Context(), s.Queries, query.DetailKey(query.NSFundApplications, id), query.StaleDetail)
	if !ok || fa == nil || fa.Status == "" {
		return nil
	}
	if !fa.Status.CanTransitionTo(next) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity,
			domain.ErrInvalidTransition.Error()+": "+string(fa.Status)+" → "+string(next))
	}
	return nil
}

// sendBlob writes an export download.
func sendBlob(c echo.Context, blob *ports.Blob, filename string) error {
	contentType := blob.ContentType
	if contentType == "" {
		contentType = xlsxMIME
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, contentType, blob.Data)
}

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
