package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/kas"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// DashboardHandler serves the student landing view.
type DashboardHandler struct{}

func NewDashboardHandler() *DashboardHandler { return &DashboardHandler{} }

// Summary handles GET /v1/dashboard.
//
// @Summary      Student dashboard
// @Tags         dashboard
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.DashboardSummary
// @Router       /v1/dashboard [get]
func (h *DashboardHandler) Summary(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.DashboardSummary(s.Services.Dashboard))
}

// TransactionHandler serves the shared ledger.
type TransactionHandler struct {
	now func() time.Time
}

func NewTransactionHandler() *TransactionHandler {
	return &TransactionHandler{now: time.Now}
}

func bindTransactionFilter(c echo.Context) (ports.TransactionFilter, error) {
	var f ports.TransactionFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}

// List handles GET /v1/transactions.
//
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "Page"
// @Param        limit      query     int     false  "Page size"
// @Param        type       query     string  false  "income or expense"
// @Param        startDate  query     string  false  "YYYY-MM-DD"
// @Param        endDate    query     string  false  "YYYY-MM-DD"
// @Success      200        {object}  ports.Page[domain.Transaction]
// @Router       /v1/transactions [get]
func (h *TransactionHandler) List(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindTransactionFilter(c)
	if err != nil {
		return err
	}
	return fetch(c, query.TransactionList(s.Services.Transactions, f))
}

// Grouped handles GET /v1/transactions/grouped: the same page as List,
// bucketed by date, most recent first.
func (h *TransactionHandler) Grouped(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindTransactionFilter(c)
	if err != nil {
		return err
	}
	page, err := query.Fetch(c.Request().Context(), s.Queries, query.TransactionList(s.Services.Transactions, f))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toGrouped(page))
}

// Get handles GET /v1/transactions/:id.
func (h *TransactionHandler) Get(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.TransactionDetail(s.Services.Transactions, c.Param("id")))
}

// Export handles GET /v1/transactions/export. Exports bypass the cache.
//
// @Summary      Export transactions as a spreadsheet
// @Tags         transactions
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security     BearerAuth
// @Success      200  {file}  binary
// @Router       /v1/transactions/export [get]
func (h *TransactionHandler) Export(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindTransactionFilter(c)
	if err != nil {
		return err
	}
	blob, err := s.Services.Transactions.Export(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return sendBlob(c, blob, kas.ExportFilename("transaksi", h.now()))
}
