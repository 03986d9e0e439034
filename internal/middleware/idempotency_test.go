package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josh-kwaku/finance-tracker/internal/auth"
	"github.com/josh-kwaku/finance-tracker/internal/repository"
	"github.com/josh-kwaku/finance-tracker/internal/repository/memory"
)

type countingHandler struct {
	calls  atomic.Int32
	status int
	delay  time.Duration
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := h.calls.Add(1)
	time.Sleep(h.delay)
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(h.status)
	w.Write([]byte(`{"call":` + strconv.Itoa(int(n)) + `,"echo":` + string(body) + `}`))
}

func idempotentRequest(owner uuid.UUID, key, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transfers", strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	return req.WithContext(auth.ContextWithOwnerID(req.Context(), owner))
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	first := httptest.NewRecorder()
	h.ServeHTTP(first, idempotentRequest(owner, "k1", `{"amount":"1"}`))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, idempotentRequest(owner, "k1", `{"amount":"1"}`))

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Empty(t, first.Header().Get("X-Idempotent-Replayed"))
	assert.Equal(t, "true", second.Header().Get("X-Idempotent-Replayed"))
}

func TestIdempotency_KeysAreScopedPerOwner(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(memory.New().Idempotency())(next)

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(uuid.New(), "k1", `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(uuid.New(), "k1", `{}`))

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestIdempotency_DifferentBodyConflicts(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(owner, "k1", `{"amount":"1"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest(owner, "k1", `{"amount":"2"}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "IDEMPOTENCY_CONFLICT")
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(owner, "", `{}`))
	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(owner, "", `{}`))

	assert.Equal(t, int32(2), next.calls.Load())
}

func TestIdempotency_ServerErrorsAreNotStored(t *testing.T) {
	next := &countingHandler{status: http.StatusInternalServerError}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(owner, "k1", `{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest(owner, "k1", `{}`))

	assert.Equal(t, int32(2), next.calls.Load())
	assert.Empty(t, rec.Header().Get("X-Idempotent-Replayed"))
}

func TestIdempotency_ClientErrorsAreStored(t *testing.T) {
	next := &countingHandler{status: http.StatusUnprocessableEntity}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	h.ServeHTTP(httptest.NewRecorder(), idempotentRequest(owner, "k1", `{}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest(owner, "k1", `{}`))

	assert.Equal(t, int32(1), next.calls.Load())
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestIdempotency_ConcurrentDuplicatesRunOnce(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated, delay: 50 * time.Millisecond}
	h := Idempotency(memory.New().Idempotency())(next)
	owner := uuid.New()

	var wg sync.WaitGroup
	codes := make([]int, 5)
	for i := range codes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, idempotentRequest(owner, "same", `{"amount":"5"}`))
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), next.calls.Load())
	for _, c := range codes {
		assert.Equal(t, http.StatusCreated, c)
	}
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string, uuid.UUID) (*repository.IdempotencyCacheEntry, error) {
	return nil, errors.New("db down")
}

func (brokenCache) Set(context.Context, *repository.IdempotencyCacheEntry) error { return nil }

func TestIdempotency_LookupFailure(t *testing.T) {
	next := &countingHandler{status: http.StatusCreated}
	h := Idempotency(brokenCache{})(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, idempotentRequest(uuid.New(), "k1", `{}`))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Zero(t, next.calls.Load())
}

func TestIdempotency_GetBypasses(t *testing.T) {
	next := &countingHandler{status: http.StatusOK}
	h := Idempotency(brokenCache{})(next)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(IdempotencyKeyHeader, "k1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), next.calls.Load())
}
