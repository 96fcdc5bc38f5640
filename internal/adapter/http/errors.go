package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domainLoan "credisol-backend/internal/domain/loan"
	domainReprog "credisol-backend/internal/domain/reprogramming"
	"credisol-backend/internal/engine"
	paymentUC "credisol-backend/internal/usecase/payment"
)

// kind strings are stable API vocabulary; the UI keys its messages off them.
func errorKind(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrInvalidAmount):
		return http.StatusUnprocessableEntity, "invalid_amount"
	case errors.Is(err, engine.ErrAmountExceedsBalance):
		return http.StatusUnprocessableEntity, "amount_exceeds_balance"
	case errors.Is(err, engine.ErrNoSelectableInstallments):
		return http.StatusUnprocessableEntity, "no_selectable_installments"
	case errors.Is(err, engine.ErrNonContiguousSelection):
		return http.StatusUnprocessableEntity, "non_contiguous_selection"
	case errors.Is(err, engine.ErrInvalidTerm):
		return http.StatusBadRequest, "invalid_term"
	case errors.Is(err, paymentUC.ErrUnknownStrategy):
		return http.StatusBadRequest, "unknown_strategy"
	case errors.Is(err, domainLoan.ErrNotFound), errors.Is(err, domainReprog.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domainLoan.ErrAlreadyDecided), errors.Is(err, domainReprog.ErrAlreadyDecided):
		return http.StatusConflict, "already_decided"
	case errors.Is(err, domainLoan.ErrInvalidTransition), errors.Is(err, domainLoan.ErrNotPayable), errors.Is(err, domainReprog.ErrLoanNotEligible):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, domainReprog.ErrPendingExists):
		return http.StatusConflict, "pending_request_exists"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func writeError(c echo.Context, err error) error {
	code, kind := errorKind(err)
	body := map[string]string{"error": kind}
	if code != http.StatusInternalServerError {
		body["message"] = err.Error()
	}
	return c.JSON(code, body)
}
