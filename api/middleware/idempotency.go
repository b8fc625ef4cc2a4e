package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
	pkgredis "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/redis"
)

const (
	defaultIdempotencyTTL  = 24 * time.Hour
	criticalIdempotencyTTL = 7 * 24 * time.Hour

	// idempotencyClaimWindow bounds how long a crashed process can block
	// retries of its key. Checkout settles in seconds under normal load.
	idempotencyClaimWindow = 2 * time.Minute

	// inFlightMarker occupies the key while the first request executes.
	// It is not valid JSON, so it can never be confused with a record.
	inFlightMarker = "in-flight"
)

type routeMatcher func(string) bool

type idempotencyRule struct {
	method  string
	matcher routeMatcher
	ttl     time.Duration
}

var idempotencyRules = []idempotencyRule{
	// 24h TTL endpoints
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/orders/", "/receipt"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefix("/api/admin/v1/orders/"), ttl: defaultIdempotencyTTL},
	{method: http.MethodPost, matcher: matchExact("/api/admin/v1/promos"), ttl: defaultIdempotencyTTL},
	// 7d TTL endpoints
	{method: http.MethodPost, matcher: matchExact("/api/v1/checkout"), ttl: criticalIdempotencyTTL},
	{method: http.MethodPost, matcher: matchPrefixSuffix("/api/v1/orders/", "/cancel"), ttl: criticalIdempotencyTTL},
}

type idempotencyRecord struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency makes the mutation endpoints listed in idempotencyRules safe
// to retry. The first request claims its key before the handler runs, so a
// concurrent duplicate cannot execute a second checkout; it is rejected
// with 409 until the winner's response is recorded, then replayed from it.
func Idempotency(store pkgredis.IdempotencyStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ttl, ok := routeTTL(r.Method, routePattern(r))
			if !ok || store == nil {
				next.ServeHTTP(w, r)
				return
			}

			idempotencyKey := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
			if idempotencyKey == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key header required"))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			exec := idempotentExec{
				store: store,
				logg:  logg,
				key:   store.IdempotencyKey(requestScope(r), idempotencyKey),
				hash:  hashBody(body),
				ttl:   ttl,
			}
			exec.serve(w, r, next)
		})
	}
}

// idempotentExec carries one request through the claim protocol.
type idempotentExec struct {
	store pkgredis.IdempotencyStore
	logg  *logger.Logger
	key   string
	hash  string
	ttl   time.Duration
}

func (e *idempotentExec) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if e.tryReplay(w, r) {
		return
	}

	claimed, err := e.store.SetNX(r.Context(), e.key, inFlightMarker, idempotencyClaimWindow)
	if err != nil {
		responses.WriteError(r.Context(), e.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim idempotency key"))
		return
	}
	if !claimed {
		// Lost the race. The winner may have finished between the first
		// look and the claim attempt, so look once more before rejecting.
		if e.tryReplay(w, r) {
			return
		}
		e.rejectInFlight(w, r)
		return
	}

	e.execute(w, r, next)
}

// tryReplay serves the stored outcome when the key already holds one. It
// reports true when it wrote a response, including error responses.
func (e *idempotentExec) tryReplay(w http.ResponseWriter, r *http.Request) bool {
	stored, err := e.store.Get(r.Context(), e.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false
		}
		responses.WriteError(r.Context(), e.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check idempotency"))
		return true
	}
	if stored == inFlightMarker {
		e.rejectInFlight(w, r)
		return true
	}
	record, err := decodeRecord(stored)
	if err != nil {
		responses.WriteError(r.Context(), e.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record"))
		return true
	}
	if record.RequestHash != e.hash {
		responses.WriteError(r.Context(), e.logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body"))
		return true
	}
	writeStoredResponse(w, record)
	return true
}

// execute runs the handler while holding the claim, then settles the key:
// client-visible outcomes are recorded for replay, server errors release
// the claim so the customer's retry runs the handler again.
func (e *idempotentExec) execute(w http.ResponseWriter, r *http.Request, next http.Handler) {
	rec := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(rec, r)

	status := rec.statusOr(http.StatusOK)
	if status >= http.StatusInternalServerError {
		if err := e.store.Del(r.Context(), e.key); err != nil {
			logError(r.Context(), e.logg, "release idempotency claim", err)
		}
		return
	}

	record := idempotencyRecord{
		Status:      status,
		Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
		RequestHash: e.hash,
	}
	if ct := rec.Header().Get("Content-Type"); ct != "" {
		record.Headers = map[string]string{"Content-Type": ct}
	}

	payload, err := json.Marshal(record)
	if err != nil {
		// The claim stays put and lapses on its own window; rerunning a
		// handler that already answered is the worse failure mode.
		logError(r.Context(), e.logg, "marshal idempotency record", err)
		return
	}
	if err := e.store.Set(r.Context(), e.key, string(payload), e.ttl); err != nil {
		logError(r.Context(), e.logg, "persist idempotency record", err)
	}
}

func (e *idempotentExec) rejectInFlight(w http.ResponseWriter, r *http.Request) {
	responses.WriteError(r.Context(), e.logg, w,
		pkgerrors.New(pkgerrors.CodeConcurrentEdit, "request with this idempotency key is still executing"))
}

// requestScope namespaces keys per caller and route, so two customers (or
// two endpoints) reusing the same key value never collide.
func requestScope(r *http.Request) string {
	parts := []string{
		UserIDFromContext(r.Context()),
		GuestTokenFromContext(r.Context()),
		r.Method,
		r.URL.Path,
	}
	return strings.Join(parts, "|")
}

func decodeRecord(payload string) (*idempotencyRecord, error) {
	var record idempotencyRecord
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeStoredResponse(w http.ResponseWriter, record *idempotencyRecord) {
	if record == nil {
		return
	}
	if ct, ok := record.Headers["Content-Type"]; ok && ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.Header().Set("Idempotency-Replayed", "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

// routePattern returns the matched chi pattern when it is complete. Inside a
// mounted subrouter the pattern still ends in "/*" while middleware runs, so
// the raw path is used instead; the rule matchers handle both shapes.
func routePattern(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ctx := chi.RouteContext(r.Context()); ctx != nil {
		if pattern := ctx.RoutePattern(); pattern != "" && !strings.HasSuffix(pattern, "/*") {
			return pattern
		}
	}
	return strings.TrimSuffix(r.URL.Path, "/")
}

func routeTTL(method, pattern string) (time.Duration, bool) {
	if pattern == "" {
		return 0, false
	}
	for _, rule := range idempotencyRules {
		if rule.method != method {
			continue
		}
		if rule.matcher(pattern) {
			return rule.ttl, true
		}
	}
	return 0, false
}

func matchExact(path string) routeMatcher {
	return func(pattern string) bool {
		return pattern == path
	}
}

func matchPrefix(prefix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix)
	}
}

func matchPrefixSuffix(prefix, suffix string) routeMatcher {
	return func(pattern string) bool {
		return strings.HasPrefix(pattern, prefix) && strings.HasSuffix(pattern, suffix)
	}
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseCapture) statusOr(fallback int) int {
	if r.status == 0 {
		return fallback
	}
	return r.status
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
