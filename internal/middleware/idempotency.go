package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/josh-kwaku/finance-tracker/internal/auth"
	"github.com/josh-kwaku/finance-tracker/internal/handler"
	"github.com/josh-kwaku/finance-tracker/internal/logging"
	"github.com/josh-kwaku/finance-tracker/internal/repository"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type idempotencyRepository interface {
	Get(ctx context.Context, key string, ownerID uuid.UUID) (*repository.IdempotencyCacheEntry, error)
	Set(ctx context.Context, entry *repository.IdempotencyCacheEntry) error
}

const idempotencyTTL = 24 * time.Hour

type capturedResponse struct {
	status      int
	header      http.Header
	body        []byte
	requestHash string
}

// Idempotency replays the stored response when a mutating request repeats
// an Idempotency-Key. Requests without the header pass straight through.
// Concurrent requests with the same key run the handler once and share its
// response. Server errors are not stored, so a retry after a 5xx runs again.
func Idempotency(repo idempotencyRepository) func(http.Handler) http.Handler {
	var inflight singleflight.Group

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(IdempotencyKeyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ownerID, ok := auth.OwnerIDFromContext(r.Context())
			if !ok {
				handler.RespondAppError(w, handler.ErrMissingToken, nil)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				handler.RespondAppError(w, handler.ErrInvalidRequest, nil)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			reqHash := computeHash(r.Method, r.URL.Path, body)
			log := logging.FromContext(r.Context()).With("idempotency_key", key)

			executed := false
			v, err, _ := inflight.Do(ownerID.String()+"/"+key, func() (any, error) {
				cached, err := repo.Get(r.Context(), key, ownerID)
				if err != nil {
					return nil, err
				}
				if cached != nil {
					return &capturedResponse{
						status:      cached.StatusCode,
						body:        cached.ResponseBody,
						requestHash: cached.RequestHash,
					}, nil
				}

				executed = true
				rec := newBufferedRecorder()
				next.ServeHTTP(rec, r)

				if rec.status < http.StatusInternalServerError {
					now := time.Now().UTC()
					entry := &repository.IdempotencyCacheEntry{
						Key:          key,
						OwnerID:      ownerID,
						RequestHash:  reqHash,
						StatusCode:   rec.status,
						ResponseBody: rec.body.Bytes(),
						CreatedAt:    now,
						ExpiresAt:    now.Add(idempotencyTTL),
					}
					if err := repo.Set(context.WithoutCancel(r.Context()), entry); err != nil {
						log.Error("idempotency cache store failed", "error", err)
					}
				}
				return &capturedResponse{
					status:      rec.status,
					header:      rec.header,
					body:        rec.body.Bytes(),
					requestHash: reqHash,
				}, nil
			})
			if err != nil {
				log.Error("idempotency cache lookup failed", "error", err)
				handler.RespondAppError(w, handler.ErrInternalError, nil)
				return
			}

			resp := v.(*capturedResponse)
			if resp.requestHash != reqHash {
				handler.RespondAppError(w, handler.ErrIdempotencyConflict, nil)
				return
			}

			for k, vals := range resp.header {
				w.Header()[k] = vals
			}
			if w.Header().Get("Content-Type") == "" {
				w.Header().Set("Content-Type", "application/json")
			}
			if !executed {
				w.Header().Set("X-Idempotent-Replayed", "true")
			}
			w.WriteHeader(resp.status)
			if _, err := w.Write(resp.body); err != nil {
				log.Error("failed to write idempotent response", "error", err)
			}
		})
	}
}

func computeHash(method, path string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte(path))
	h.Write(body)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// bufferedRecorder holds the whole response so it can be stored and handed
// to every request waiting on the same key.
type bufferedRecorder struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        *bytes.Buffer
}

func newBufferedRecorder() *bufferedRecorder {
	return &bufferedRecorder{header: make(http.Header), status: http.StatusOK, body: &bytes.Buffer{}}
}

func (r *bufferedRecorder) Header() http.Header { return r.header }

func (r *bufferedRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
}

func (r *bufferedRecorder) Write(b []byte) (int, error) {
	r.wroteHeader = true
	return r.body.Write(b)
}
