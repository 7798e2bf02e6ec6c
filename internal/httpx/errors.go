package httpx

import (
	"net/http"
)

const (
	notFoundBody    = "404 Not Found"
	badRequestBody  = "400 Bad Request"
	conflictBody    = "Conflict in creation"
	serverErrorBody = "Internal Server Error"
)

// handlerFunc is a handler that reports failure instead of writing it.
// Handlers only write once the whole response is assembled, so a returned
// error never follows a partial response.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.serverError(w, r, err)
		}
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.Log.Error(r.Context(), err, "error handling request", "method", r.Method, "path", r.URL.Path)
	writeText(w, http.StatusInternalServerError, serverErrorBody)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.Log.Info(r.Context(), "not found", "method", r.Method, "path", r.URL.Path)
	writeText(w, http.StatusNotFound, notFoundBody)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}
