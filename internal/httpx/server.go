package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"forum/internal/logging"
	"forum/internal/render"
	"forum/internal/store"
)

// Template names, resolved by the Renderer to <dir>/<name><ext>.
const (
	tmplIndex     = "index"
	tmplWritePost = "writepost"
	tmplPost      = "post"
	tmplPreviews  = "postspreviews"
	tmplSource    = "source"
)

/*
Server holds the post store, the page renderer and the static file handler.
*/
type Server struct {
	Store  store.Store
	Pages  *render.Renderer
	Static http.Handler
	Config Config
	Log    logging.Logger
}

/*
Config: StaticPrefix is matched against the raw request path before any
segment parsing; it must start and end with "/".
*/
type Config struct {
	StaticPrefix string
}

func NewServer(cfg Config, st store.Store, pages *render.Renderer, static http.Handler, log logging.Logger) *Server {
	if cfg.StaticPrefix == "" {
		cfg.StaticPrefix = "/public/"
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		Store:  st,
		Pages:  pages,
		Static: static,
		Config: cfg,
		Log:    log.WithComponent("http"),
	}
}

// Handler returns a chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	MountRoutes(r, s)
	return r
}
