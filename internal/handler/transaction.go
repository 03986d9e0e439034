package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/service"
)

type transactionService interface {
	ListTransactions(ctx context.Context, ownerID uuid.UUID, limit, offset int) (*service.TransactionPage, error)
}

type TransactionHandler struct {
	transactions transactionService
}

func NewTransactionHandler(transactions transactionService) *TransactionHandler {
	return &TransactionHandler{transactions: transactions}
}

type transactionPageDTO struct {
	Transactions []transactionDTO `json:"transactions"`
	Total        int              `json:"total"`
	Limit        int              `json:"limit"`
	Offset       int              `json:"offset"`
}

func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	limit, fieldErr := queryInt(r, "limit")
	if fieldErr != nil {
		RespondValidationError(w, []FieldError{*fieldErr})
		return
	}
	offset, fieldErr := queryInt(r, "offset")
	if fieldErr != nil {
		RespondValidationError(w, []FieldError{*fieldErr})
		return
	}

	page, err := h.transactions.ListTransactions(r.Context(), ownerID, limit, offset)
	if err != nil {
		RespondDomainError(w, err)
		return
	}

	dtos := make([]transactionDTO, len(page.Transactions))
	for i := range page.Transactions {
		dtos[i] = toTransactionDTO(&page.Transactions[i])
	}

	RespondSuccess(w, http.StatusOK, transactionPageDTO{
		Transactions: dtos,
		Total:        page.Total,
		Limit:        page.Limit,
		Offset:       page.Offset,
	})
}

func queryInt(r *http.Request, name string) (int, *FieldError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, &FieldError{Field: name, Message: "must be a non-negative integer"}
	}
	return n, nil
}
