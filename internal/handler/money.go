package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/domain"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/service/balance"
)

type balanceService interface {
	Deposit(ctx context.Context, req balance.DepositRequest) (*domain.Account, error)
	Debit(ctx context.Context, req balance.DebitRequest) (*domain.Transaction, error)
	Transfer(ctx context.Context, req balance.TransferRequest) (*balance.TransferResult, error)
}

// MoneyHandler serves the routes that move money.
type MoneyHandler struct {
	balances balanceService
}

func NewMoneyHandler(balances balanceService) *MoneyHandler {
	return &MoneyHandler{balances: balances}
}

type depositRequest struct {
	Amount amount `json:"amount"`
}

type debitRequest struct {
	Description string `json:"description"`
	Amount      amount `json:"amount"`
}

type transferRequest struct {
	FromAccountID string `json:"from_account_id"`
	ToAccountID   string `json:"to_account_id"`
	Amount        amount `json:"amount"`
}

func (r transferRequest) Validate() []FieldError {
	var errs []FieldError
	if _, err := uuid.Parse(r.FromAccountID); err != nil {
		errs = append(errs, FieldError{Field: "from_account_id", Message: "must be a valid UUID"})
	}
	if _, err := uuid.Parse(r.ToAccountID); err != nil {
		errs = append(errs, FieldError{Field: "to_account_id", Message: "must be a valid UUID"})
	}
	return errs
}

type transactionDTO struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	Amount      string    `json:"amount"`
	Source      string    `json:"source"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Description: t.Description,
		Type:        string(t.Type),
		Status:      string(t.Status),
		Amount:      t.Amount.StringFixed(domain.AmountScale),
		Source:      string(t.Source),
		CreatedAt:   t.CreatedAt,
	}
}

type transferDTO struct {
	From   accountDTO     `json:"from"`
	To     accountDTO     `json:"to"`
	Debit  transactionDTO `json:"debit"`
	Credit transactionDTO `json:"credit"`
}

func (h *MoneyHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	ownerID, accountID, appErr := accountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req depositRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	account, err := h.balances.Deposit(r.Context(), balance.DepositRequest{
		OwnerID:   ownerID,
		AccountID: accountID,
		Amount:    req.Amount.Decimal,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("deposit rejected", "account_id", accountID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toAccountDTO(account))
}

func (h *MoneyHandler) Debit(w http.ResponseWriter, r *http.Request) {
	ownerID, accountID, appErr := accountFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req debitRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	txn, err := h.balances.Debit(r.Context(), balance.DebitRequest{
		OwnerID:     ownerID,
		AccountID:   accountID,
		Description: req.Description,
		Amount:      req.Amount.Decimal,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("expense rejected", "account_id", accountID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *MoneyHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	ownerID, appErr := ownerFromContext(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req transferRequest
	if appErr := decodeBody(r, &req); appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	res, err := h.balances.Transfer(r.Context(), balance.TransferRequest{
		OwnerID:       ownerID,
		FromAccountID: uuid.MustParse(req.FromAccountID),
		ToAccountID:   uuid.MustParse(req.ToAccountID),
		Amount:        req.Amount.Decimal,
	})
	if err != nil {
		logging.FromContext(r.Context()).Warn("transfer rejected", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, transferDTO{
		From:   toAccountDTO(res.From),
		To:     toAccountDTO(res.To),
		Debit:  toTransactionDTO(res.Debit),
		Credit: toTransactionDTO(res.Credit),
	})
}
