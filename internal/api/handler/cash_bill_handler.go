package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// Summary pages through the outstanding bills; summaryMaxPages bounds the
// walk against a backend that keeps reporting more pages.
const (
	summaryPageSize = 100
	summaryMaxPages = 20
)

// CashBillHandler serves a student's own bills.
type CashBillHandler struct {
	uploadLimit int64
}

func NewCashBillHandler(uploadLimit int64) *CashBillHandler {
	return &CashBillHandler{uploadLimit: uploadLimit}
}

func bindCashBillFilter(c echo.Context) (ports.CashBillFilter, error) {
	var f ports.CashBillFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}

// List handles GET /v1/cash-bills.
func (h *CashBillHandler) List(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindCashBillFilter(c)
	if err != nil {
		return err
	}
	return fetch(c, query.CashBillList(s.Services.CashBills, f))
}

// Summary handles GET /v1/cash-bills/summary: the outstanding total, the
// billing periods it spans and the next payment deadline.
//
// @Summary      Outstanding bills summary
// @Tags         cash-bills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  billSummaryResponse
// @Router       /v1/cash-bills/summary [get]
func (h *CashBillHandler) Summary(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f := ports.CashBillFilter{
		Paging: ports.Paging{Limit: summaryPageSize},
		Status: string(domain.BillUnpaid),
	}
	var outstanding []domain.CashBill
	for f.Page = 1; f.Page <= summaryMaxPages; f.Page++ {
		page, err := query.Fetch(c.Request().Context(), s.Queries, query.CashBillList(s.Services.CashBills, f))
		if err != nil {
			return err
		}
		outstanding = append(outstanding, page.Data...)
		if len(page.Data) == 0 || f.Page >= page.TotalPages {
			break
		}
	}
	return c.JSON(http.StatusOK, toBillSummary(outstanding))
}

// Get handles GET /v1/cash-bills/:id.
func (h *CashBillHandler) Get(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.CashBillDetail(s.Services.CashBills, c.Param("id")))
}

// Pay handles POST /v1/cash-bills/:id/pay (multipart: paymentMethod,
// paymentProof).
//
// @Summary      Submit a bill payment
// @Tags         cash-bills
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        paymentMethod  formData  string  true  "Payment method"
// @Param        paymentProof   formData  file    true  "Transfer receipt (image or PDF)"
// @Success      200            {object}  domain.CashBill
// @Failure      415            {object}  errorResponse
// @Failure      422            {object}  errorResponse
// @Router       /v1/cash-bills/{id}/pay [post]
func (h *CashBillHandler) Pay(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")

	var form payBillForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&form); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	if err := checkBillTransition(c, s, id, domain.BillAwaitingConfirmation); err != nil {
		return err
	}
	proof, err := readUpload(c, "paymentProof", true, h.uploadLimit)
	if err != nil {
		return err
	}

	bill, err := query.Mutate(c.Request().Context(), s.Queries, query.PayBill, func(ctx context.Context) (*domain.CashBill, error) {
		return s.Services.CashBills.Pay(ctx, ports.PayBillInput{BillID: id, PaymentMethod: form.PaymentMethod, Proof: proof})
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}

// CancelPayment handles POST /v1/cash-bills/:id/cancel.
func (h *CashBillHandler) CancelPayment(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	id := c.Param("id")
	if err := checkBillTransition(c, s, id, domain.BillUnpaid); err != nil {
		return err
	}

	bill, err := query.Mutate(c.Request().Context(), s.Queries, query.CancelPayment, func(ctx context.Context) (*domain.CashBill, error) {
		return s.Services.CashBills.CancelPayment(ctx, id)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bill)
}
