// Package static serves files below the public prefix straight from disk.
package static

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"

	"github.com/spf13/afero"

	"forum/internal/logging"
)

const (
	notFoundBody    = "404 Not Found"
	serverErrorBody = "Internal Server Error"
)

// Server resolves request paths against Root without cleaning them.
type Server struct {
	FS   afero.Fs
	Root string
	Log  logging.Logger
}

func New(fsys afero.Fs, root string, log logging.Logger) *Server {
	if log == nil {
		log = logging.Discard()
	}
	return &Server{FS: fsys, Root: root, Log: log.WithComponent("static")}
}

// ContentType is derived from the extension only.
func ContentType(name string) string {
	switch filepath.Ext(name) {
	case ".html":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js":
		return "text/javascript"
	default:
		return "text/plain"
	}
}

// Serve reads the file behind requestPath.
func (s *Server) Serve(ctx context.Context, requestPath string) (status int, body []byte, contentType string) {
	name := s.Root + requestPath
	b, err := afero.ReadFile(s.FS, name)
	if err != nil {
		s.Log.Error(ctx, err, "static read failed", "path", requestPath)
		if errors.Is(err, fs.ErrNotExist) {
			return http.StatusNotFound, []byte(notFoundBody), "text/plain"
		}
		return http.StatusInternalServerError, []byte(serverErrorBody), "text/plain"
	}
	return http.StatusOK, b, ContentType(name)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status, body, ct := s.Serve(r.Context(), r.URL.Path)
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
