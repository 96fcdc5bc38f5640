package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"credisol-backend/internal/usecase/payment"
)

type PaymentHandler struct{ uc *payment.Usecase }

func NewPaymentHandler(uc *payment.Usecase) *PaymentHandler { return &PaymentHandler{uc: uc} }

type recordPaymentReq struct {
	Amount       decimal.Decimal `json:"amount" validate:"dec2"`
	Strategy     string          `json:"strategy" validate:"required,oneof=single_due contiguous_multiple partial_single greedy_sequential full_payoff"`
	Installments []int           `json:"installments,omitempty"`
	Discount     decimal.Decimal `json:"discount,omitempty" validate:"dec2"`
}

func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	var req recordPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	dto, err := h.uc.Record(c.Request().Context(), payment.RecordInput{
		LoanID:       c.Param("loan_id"),
		Amount:       req.Amount,
		Strategy:     req.Strategy,
		Installments: req.Installments,
		Discount:     req.Discount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *PaymentHandler) ListPayments(c echo.Context) error {
	dtos, err := h.uc.List(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"payments": dtos})
}

func (h *PaymentHandler) GetOutstanding(c echo.Context) error {
	dto, err := h.uc.Outstanding(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
