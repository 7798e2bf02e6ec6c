package httpx

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// MountRoutes registers middleware and routes on r. Paths are matched on
// their non-empty segments, so "/posts/" and "//posts" both reach /posts.
// A method that does not fit a route is a 404, not a 405.
func MountRoutes(r chi.Router, s *Server) {
	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(s.recoverer)
	r.Use(s.segmentPath)

	r.NotFound(s.handleNotFound)
	r.MethodNotAllowed(s.handleNotFound)

	r.Handle(s.Config.StaticPrefix+"*", s.Static)

	r.HandleFunc("/", s.handle(s.handleHome))
	r.Get("/writepost", s.handle(s.handleWriteForm))
	r.Post("/writepost", s.handle(s.handleWriteSubmit))
	r.Get("/post", s.handle(s.handlePost))
	r.Get("/post/source", s.handle(s.handlePostSource))
	r.Get("/posts", s.handle(s.handlePosts))
}
