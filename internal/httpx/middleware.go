package httpx

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Segments splits a path on "/" and drops empty parts.
func Segments(path string) []string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, seg)
		}
	}
	return segs
}

// segmentPath rewrites the chi routing path to its joined segments. Paths
// under the static prefix are left untouched and reach the file server as
// requested.
func (s *Server) segmentPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, s.Config.StaticPrefix) {
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				rctx.RoutePath = "/" + strings.Join(Segments(r.URL.Path), "/")
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		reqID := middleware.GetReqID(r.Context())
		s.Log.Debug(r.Context(), "handling request", "method", r.Method, "path", r.URL.Path, "request_id", reqID)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Log.Info(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
			"request_id", reqID,
		)
	})
}

// recoverer turns a panic anywhere below it into a plain 500.
func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			s.Log.Error(r.Context(), fmt.Errorf("panic: %v", rec), "request panicked", "stack", string(debug.Stack()))
			writeText(w, http.StatusInternalServerError, serverErrorBody)
		}()
		next.ServeHTTP(w, r)
	})
}
