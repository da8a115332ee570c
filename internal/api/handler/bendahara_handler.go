package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/kas"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// BendaharaHandler serves the treasurer routes. RBAC is applied by the
// router; every method here assumes a bendahara session.
type BendaharaHandler struct {
	uploadLimit int64
	now         func() time.Time
}

func NewBendaharaHandler(uploadLimit int64) *BendaharaHandler {
	return &BendaharaHandler{uploadLimit: uploadLimit, now: time.Now}
}

// Dashboard handles GET /v1/bendahara/dashboard.
func (h *BendaharaHandler) Dashboard(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.BendaharaDashboard(s.Services.Bendahara))
}

// FundApplications handles GET /v1/bendahara/fund-applications.
func (h *BendaharaHandler) FundApplications(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindFundApplicationFilter(c)
	if err != nil {
		return err
	}
	return fetch(c, query.BendaharaFundApplications(s.Services.Bendahara, f))
}

// ApproveFundApplication handles POST /v1/bendahara/fund-applications/:id/approve.
//
// @Summary      Approve a fund application
// @Tags         bendahara
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Fund application ID"
// @Success      200  {object}  domain.FundApplication
// @Failure      403  {object}  errorResponse
// @Failure      422  {object}  errorResponse
// @Router       /v1/bendahara/fund-applications/{id}/approve [post]
func (h *BendaharaHandler) ApproveFundApplication(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := checkApplicationTransition(c, s, id, domain.ApplicationApproved); err != nil {
		return err
	}

	fa, err := query.Mutate(c.Request().Context(), s.Queries, query.ApproveFundApplication, func(ctx context.Context) (*domain.FundApplication, error) {
		return s.Services.Bendahara.ApproveFundApplication(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fa)
}

// RejectFundApplication handles POST /v1/bendahara/fund-applications/:id/reject.
func (h *BendaharaHandler) RejectFundApplication(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	req, err := bindReject(c)
	if err != nil {
		return err
	}
	if err := checkApplicationTransition(c, s, id, domain.ApplicationRejected); err != nil {
		return err
	}

	fa, err := query.Mutate(c.Request().Context(), s.Queries, query.RejectFundApplication, func(ctx context.Context) (*domain.FundApplication, error) {
		return s.Services.Bendahara.RejectFundApplication(ctx, id, req.Reason)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, fa)
}

// CashBills handles GET /v1/bendahara/cash-bills.
func (h *BendaharaHandler) CashBills(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindCashBillFilter(c)
	if err != nil {
		return err
	}
	return fetch(c, query.BendaharaCashBills(s.Services.Bendahara, f))
}

// ConfirmPayment handles POST /v1/bendahara/cash-bills/:id/confirm.
func (h *BendaharaHandler) ConfirmPayment(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := checkBillTransition(c, s, id, domain.BillPaid); err != nil {
		return err
	}

	bill, err := query.Mutate(c.Request().Context(), s.Queries, query.ConfirmPayment, func(ctx context.Context) (*domain.CashBill, error) {
		return s.Services.Bendahara.ConfirmPayment(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

// RejectPayment handles POST /v1/bendahara/cash-bills/:id/reject. The bill
// returns to unpaid.
func (h *BendaharaHandler) RejectPayment(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	req, err := bindReject(c)
	if err != nil {
		return err
	}
	if err := checkBillTransition(c, s, id, domain.BillUnpaid); err != nil {
		return err
	}

	bill, err := query.Mutate(c.Request().Context(), s.Queries, query.RejectPayment, func(ctx context.Context) (*domain.CashBill, error) {
		return s.Services.Bendahara.RejectPayment(ctx, id, req.Reason)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

// Students handles GET /v1/bendahara/students.
func (h *BendaharaHandler) Students(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var f ports.StudentFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return fetch(c, query.Students(s.Services.Bendahara, f))
}

func (h *BendaharaHandler) bindRekap(c echo.Context) (ports.RekapFilter, error) {
	var f ports.RekapFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	if f.Month < 0 || f.Month > 12 {
		return f, echo.NewHTTPError(http.StatusBadRequest, "month must be between 1 and 12")
	}
	return f, nil
}

// RekapKas handles GET /v1/bendahara/rekap-kas.
//
// @Summary      Cash reconciliation
// @Tags         bendahara
// @Produce      json
// @Security     BearerAuth
// @Param        year   query     int  false  "Year"
// @Param        month  query     int  false  "Month (1-12)"
// @Success      200    {object}  domain.RekapKas
// @Router       /v1/bendahara/rekap-kas [get]
func (h *BendaharaHandler) RekapKas(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := h.bindRekap(c)
	if err != nil {
		return err
	}
	return fetch(c, query.RekapKas(s.Services.Bendahara, f))
}

// ExportRekapKas handles GET /v1/bendahara/rekap-kas/export.
func (h *BendaharaHandler) ExportRekapKas(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := h.bindRekap(c)
	if err != nil {
		return err
	}
	blob, err := s.Services.Bendahara.ExportRekapKas(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return sendBlob(c, blob, kas.ExportFilename("rekap_kas", h.now()))
}

// CreateTransaction handles POST /v1/bendahara/transactions (multipart,
// optional attachment).
func (h *BendaharaHandler) CreateTransaction(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var form transactionForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	attachment, err := readUpload(c, "attachment", false, h.uploadLimit)
	if err != nil {
		return err
	}

	tx, err := query.Mutate(c.Request().Context(), s.Queries, query.CreateTransaction, func(ctx context.Context) (*domain.Transaction, error) {
		return s.Services.Bendahara.CreateTransaction(ctx, toTransactionInput(form, attachment))
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, tx)
}

func bindReject(c echo.Context) (rejectRequest, error) {
	var req rejectRequest
	if err := c.Bind(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return req, echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return req, nil
}
