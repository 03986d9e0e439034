package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/josh-kwaku/finance-tracker/internal/auth"
)

func ownerFromContext(r *http.Request) (uuid.UUID, *AppError) {
	ownerID, ok := auth.OwnerIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, ErrMissingToken
	}
	return ownerID, nil
}

// accountFromPath resolves the caller and the {id} path segment. A malformed
// id is reported as not found, the same as an account owned by someone else.
func accountFromPath(r *http.Request) (ownerID, accountID uuid.UUID, appErr *AppError) {
	ownerID, appErr = ownerFromContext(r)
	if appErr != nil {
		return uuid.Nil, uuid.Nil, appErr
	}

	accountID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrResourceNotFound
	}
	return ownerID, accountID, nil
}
