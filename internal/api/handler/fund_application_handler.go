package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/galacash/gateway/internal/core/domain"
	"github.com/galacash/gateway/internal/core/ports"
	"github.com/galacash/gateway/internal/query"
)

// FundApplicationHandler serves a student's own fund applications.
type FundApplicationHandler struct {
	uploadLimit int64
}

func NewFundApplicationHandler(uploadLimit int64) *FundApplicationHandler {
	return &FundApplicationHandler{uploadLimit: uploadLimit}
}

func bindFundApplicationFilter(c echo.Context) (ports.FundApplicationFilter, error) {
	var f ports.FundApplicationFilter
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &f); err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	return f, nil
}

// List handles GET /v1/fund-applications.
func (h *FundApplicationHandler) List(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	f, err := bindFundApplicationFilter(c)
	if err != nil {
		return err
	}
	return fetch(c, query.FundApplicationList(s.Services.FundApplications, f))
}

// Get handles GET /v1/fund-applications/:id.
func (h *FundApplicationHandler) Get(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return fetch(c, query.FundApplicationDetail(s.Services.FundApplications, c.Param("id")))
}

// Create handles POST /v1/fund-applications.
//
// @Summary      Submit a fund application
// @Tags         fund-applications
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        purpose      formData  string  true   "Purpose"
// @Param        category     formData  string  true   "Category"
// @Param        amount       formData  string  true   "Requested amount"
// @Param        description  formData  string  false  "Details"
// @Param        attachment   formData  file    false  "Supporting document"
// @Success      201          {object}  domain.FundApplication
// @Failure      422          {object}  errorResponse
// @Router       /v1/fund-applications [post]
func (h *FundApplicationHandler) Create(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	var form fundApplicationForm
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

	fa, err := query.Mutate(c.Request().Context(), s.Queries, query.CreateFundApplication, func(ctx context.Context) (*domain.FundApplication, error) {
		return s.Services.FundApplications.Create(ctx, toFundApplicationInput(form, attachment))
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, fa)
}
