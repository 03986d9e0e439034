package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

var errMalformedAmount = errors.New("malformed amount")

// amount decodes a JSON number or numeric string. Anything else fails with
// errMalformedAmount so the response can say INVALID_AMOUNT instead of
// INVALID_REQUEST.
type amount struct {
	decimal.Decimal
}

func (a *amount) UnmarshalJSON(b []byte) error {
	if err := a.Decimal.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("%w: %w", errMalformedAmount, err)
	}
	return nil
}

func decodeBody(r *http.Request, dst any) *AppError {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, errMalformedAmount) {
			return ErrInvalidAmount
		}
		return ErrInvalidRequest
	}
	return nil
}
