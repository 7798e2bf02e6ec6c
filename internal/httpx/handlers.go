package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"forum/internal/model"
	"forum/internal/render"
	"forum/internal/store"
)

/* ======================
   Page fragments
   ====================== */

const (
	homeTitle      = "Forum"
	previewRunes   = 1000
	previewPattern = `
                <div class="box">
                    <h2>
                        <a href="/post?postid=%s">%s</a>
                    </h2>
                    <p>
                        %s ...
                    </p>
                </div>`
)

type navLink struct {
	Text string
	Href string
}

var navLinks = []navLink{
	{Text: "Write a Post", Href: "/writepost"},
	{Text: "All Posts", Href: "/posts"},
}

func dynamicLinks(links []navLink) string {
	var b strings.Builder
	for _, l := range links {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, l.Href, l.Text)
	}
	return b.String()
}

// previews builds one box per post with the first 1000 characters of its text.
func previews(posts []model.Post) string {
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, previewPattern, p.ID, p.Title, truncate(p.Text, previewRunes))
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

/* ==========
   Handlers
   ========== */

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) error {
	page, err := s.Pages.Render(tmplIndex, map[string]string{
		"title":        homeTitle,
		"DynamicLinks": dynamicLinks(navLinks),
	})
	if err != nil {
		return fmt.Errorf("render home: %w", err)
	}
	writeHTML(w, page)
	return nil
}

func (s *Server) handleWriteForm(w http.ResponseWriter, r *http.Request) error {
	form, err := s.Pages.Load(tmplWritePost)
	if err != nil {
		return err
	}
	writeHTML(w, form)
	s.Log.Debug(r.Context(), "write post form sent")
	return nil
}

// handleWriteSubmit decodes the body as URL-encoded form data whatever the
// Content-Type says.
func (s *Server) handleWriteSubmit(w http.ResponseWriter, r *http.Request) error {
	defer r.Body.Close()
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	form, err := url.ParseQuery(string(body))
	if err != nil {
		// ParseQuery keeps every pair it could decode
		s.Log.Warn(r.Context(), err, "malformed form body")
	}

	id, err := s.Store.Insert(r.Context(), form.Get("title"), form.Get("text"))
	if err != nil {
		s.Log.Error(r.Context(), err, "post creation failed")
		writeText(w, http.StatusConflict, conflictBody)
		return nil
	}

	w.Header().Set("Location", "/post?postid="+url.QueryEscape(id))
	w.WriteHeader(http.StatusFound)
	s.Log.Info(r.Context(), "post created", "postid", id)
	return nil
}

// lookupPost answers 404 and 400 itself; ok is false when it did.
func (s *Server) lookupPost(w http.ResponseWriter, r *http.Request) (post model.Post, ok bool, err error) {
	id := r.URL.Query().Get("postid")
	post, err = s.Store.FindByID(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		s.Log.Info(r.Context(), "post not found", "postid", id)
		writeText(w, http.StatusNotFound, notFoundBody)
		return post, false, nil
	case errors.Is(err, store.ErrInvalidID):
		s.Log.Info(r.Context(), "malformed post id", "postid", id)
		writeText(w, http.StatusBadRequest, badRequestBody)
		return post, false, nil
	case err != nil:
		return post, false, fmt.Errorf("find post: %w", err)
	}
	return post, true, nil
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) error {
	post, ok, err := s.lookupPost(w, r)
	if !ok {
		return err
	}
	page, err := s.Pages.Render(tmplPost, map[string]string{
		"title": post.Title,
		"text":  post.Text,
	})
	if err != nil {
		return fmt.Errorf("render post: %w", err)
	}
	writeHTML(w, page)
	return nil
}

// handlePostSource shows a post's text highlighted. Query: lang, t
// (dark|light), hl (lines such as "1,3-5").
func (s *Server) handlePostSource(w http.ResponseWriter, r *http.Request) error {
	post, ok, err := s.lookupPost(w, r)
	if !ok {
		return err
	}
	q := r.URL.Query()
	lang := render.NormalizeLang(q.Get("lang"))
	code, err := render.CodeHTML(post.Text, lang, render.NormalizeTheme(q.Get("t")), render.ParseLines(q.Get("hl")))
	if err != nil {
		return fmt.Errorf("highlight post: %w", err)
	}
	if lang == "" {
		lang = "auto"
	}
	page, err := s.Pages.Render(tmplSource, map[string]string{
		"title": post.Title,
		"lang":  lang,
		"code":  code,
	})
	if err != nil {
		return fmt.Errorf("render post source: %w", err)
	}
	writeHTML(w, page)
	return nil
}

func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) error {
	posts, err := s.Store.List(r.Context())
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}
	page, err := s.Pages.Render(tmplPreviews, map[string]string{"previews": previews(posts)})
	if err != nil {
		return fmt.Errorf("render previews: %w", err)
	}
	writeHTML(w, page)
	s.Log.Debug(r.Context(), "post previews rendered", "count", len(posts))
	return nil
}
