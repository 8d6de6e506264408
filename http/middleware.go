package http

import (
	"context"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edgegate/edgegate"
	"github.com/edgegate/edgegate/metrics"
)

type decisionKey struct{}

type requestIDKey struct{}

// DecisionFrom returns the authorization decision stored by Authorize.
func DecisionFrom(ctx context.Context) edgegate.Decision {
	d, _ := ctx.Value(decisionKey{}).(edgegate.Decision)
	return d
}

// RequestIDFrom returns the request id stored by RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Authorize runs every request through the engine and maps denials to wire
// status codes. On allow the decision is stored in the request context for
// the file handlers.
//
// The request path is canonicalized before the engine sees it, and the
// canonical form replaces r.URL.Path for the handlers downstream. Policy
// lookup, token verification and file serving must all agree on one path:
// authorizing the raw path while serving the cleaned one would let a
// dot-dot segment resolve a file under a different policy than the one
// that was checked.
func Authorize(engine *edgegate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cleanPath := canonicalPath(r.URL.Path)

			decision := engine.Authorize(edgegate.Request{
				Path:        cleanPath,
				Query:       r.URL.Query(),
				RangeHeader: r.Header.Get("Range"),
			})

			if !decision.Allowed {
				metrics.DeniedTotal.WithLabelValues(string(decision.Reason)).Inc()
				writeDenial(w, decision.Reason)
				return
			}

			r.URL.Path = cleanPath

			ctx := context.WithValue(r.Context(), decisionKey{}, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// canonicalPath resolves dot segments and collapses slashes, yielding the
// single absolute form a request path is authorized and served under.
func canonicalPath(p string) string {
	clean := path.Clean(p)
	if !strings.HasPrefix(clean, "/") {
		clean = "/" + clean
	}
	return clean
}

// writeDenial owns the reason to status code mapping; the engine itself
// never decides wire codes.
func writeDenial(w http.ResponseWriter, reason edgegate.Reason) {
	switch reason {
	case edgegate.ReasonNotFound:
		WriteError(w, http.StatusNotFound, string(reason), "File not found")
	case edgegate.ReasonMissingSignature, edgegate.ReasonExpired, edgegate.ReasonBadSignature:
		WriteError(w, http.StatusPaymentRequired, string(reason), "Signature missing or invalid")
	default:
		WriteError(w, http.StatusBadRequest, string(reason), "Malformed request")
	}
}

// RequestID injects a unique X-Request-Id header into every
// request/response, keeping a caller-supplied id when present.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-Id", id)

		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging emits one slog line per request.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := newStatusWriter(w)

		next.ServeHTTP(sw, r)

		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.Status(),
			"duration", time.Since(start),
			"request_id", RequestIDFrom(r.Context()),
		)
	})
}

// Instrument records request metrics.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.InFlight.Inc()
		defer metrics.InFlight.Dec()

		sw := newStatusWriter(w)
		next.ServeHTTP(sw, r)

		metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(sw.Status())).Inc()
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
	}
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Status() int {
	return sw.status
}

// Flush implements http.Flusher so streamed downloads keep working.
func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying ResponseWriter so http.ResponseController
// can discover optional interfaces on the original writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}
