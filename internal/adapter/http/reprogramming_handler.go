package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"credisol-backend/internal/usecase/reprogramming"
)

type ReprogrammingHandler struct{ uc *reprogramming.Usecase }

func NewReprogrammingHandler(uc *reprogramming.Usecase) *ReprogrammingHandler {
	return &ReprogrammingHandler{uc: uc}
}

type raiseReprogrammingReq struct {
	Principal  decimal.Decimal `json:"principal" validate:"dec2"`
	Rate       decimal.Decimal `json:"rate"`
	TermMonths int             `json:"term_months" validate:"gt=0"`
	Frequency  string          `json:"frequency" validate:"required,oneof=daily weekly biweekly monthly"`
}

func (h *ReprogrammingHandler) Raise(c echo.Context) error {
	var req raiseReprogrammingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Raise(c.Request().Context(), reprogramming.RaiseInput{
		LoanID:     c.Param("loan_id"),
		Principal:  req.Principal,
		Rate:       req.Rate,
		TermMonths: req.TermMonths,
		Frequency:  req.Frequency,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ReprogrammingHandler) Approve(c echo.Context) error {
	dto, err := h.uc.Approve(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReprogrammingHandler) Reject(c echo.Context) error {
	dto, err := h.uc.Reject(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ReprogrammingHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
