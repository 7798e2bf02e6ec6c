package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum/internal/model"
	"forum/internal/render"
	"forum/internal/static"
	"forum/internal/store"
)

var testTemplates = map[string]string{
	"templates/index.maru":         "<title>%title%</title><ul>%DynamicLinks%</ul>",
	"templates/writepost.maru":     "<form>%untouched%</form>",
	"templates/post.maru":          "<h1>%title%</h1><p>%text%</p>",
	"templates/postspreviews.maru": "<main>%previews%</main>",
	"templates/source.maru":        "<h1>%title%</h1><em>%lang%</em>%code%",
	"public/style.css":             "body{}",
}

// failingStore fails every operation.
type failingStore struct{ err error }

func (f failingStore) Insert(context.Context, string, string) (string, error) { return "", f.err }
func (f failingStore) FindByID(context.Context, string) (model.Post, error) {
	return model.Post{}, f.err
}
func (f failingStore) List(context.Context) ([]model.Post, error) { return nil, f.err }
func (f failingStore) Close(context.Context) error                { return nil }

// panicStore panics on List.
type panicStore struct{ failingStore }

func (panicStore) List(context.Context) ([]model.Post, error) { panic("kaboom") }

type testEnv struct {
	fs      afero.Fs
	store   store.Store
	handler http.Handler
}

func newTestEnv(t *testing.T, st store.Store) *testEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, body := range testTemplates {
		require.NoError(t, afero.WriteFile(fs, name, []byte(body), 0o644))
	}
	if st == nil {
		st = store.NewLazy("memory", func(context.Context) (store.Store, error) {
			return store.NewMemory(), nil
		}, nil)
	}
	srv := NewServer(
		Config{StaticPrefix: "/public/"},
		st,
		render.NewRenderer(fs, "templates", ".maru"),
		static.New(fs, ".", nil),
		nil,
	)
	return &testEnv{fs: fs, store: st, handler: srv.Handler()}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
		rec := env.do(method, "/", "")
		assert.Equal(t, http.StatusOK, rec.Code, method)
		assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
		assert.Equal(t,
			`<title>Forum</title><ul><li><a href="/writepost">Write a Post</a></li><li><a href="/posts">All Posts</a></li></ul>`,
			rec.Body.String())
	}

	rec := env.do(http.MethodGet, "//", "")
	assert.Equal(t, http.StatusOK, rec.Code, "empty segments are dropped")
}

func TestWritePostForm(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/writepost", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	assert.Equal(t, "<form>%untouched%</form>", rec.Body.String(), "form is served verbatim")
}

var locationRe = regexp.MustCompile(`^/post\?postid=([A-Za-z0-9_-]+)$`)

func TestWritePostSubmitRedirects(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodPost, "/writepost", "title=Hello&text=World")
	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	m := locationRe.FindStringSubmatch(loc)
	require.NotNil(t, m, "unexpected Location %q", loc)

	post, err := env.store.FindByID(context.Background(), m[1])
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)
	assert.Equal(t, "World", post.Text)

	rec = env.do(http.MethodGet, loc, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Hello</h1><p>World</p>", rec.Body.String())
}

func TestWritePostIgnoresContentType(t *testing.T) {
	env := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/writepost", strings.NewReader("title=A+B&text=x%26y"))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusFound, rec.Code)

	m := locationRe.FindStringSubmatch(rec.Header().Get("Location"))
	require.NotNil(t, m)
	post, err := env.store.FindByID(context.Background(), m[1])
	require.NoError(t, err)
	assert.Equal(t, "A B", post.Title)
	assert.Equal(t, "x&y", post.Text)
}

func TestWritePostInsertFailure(t *testing.T) {
	env := newTestEnv(t, failingStore{err: errors.New("duplicate key")})
	rec := env.do(http.MethodPost, "/writepost", "title=Hello&text=World")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Conflict in creation", rec.Body.String())
	assert.Empty(t, rec.Header().Get("Location"))
}

func TestPostNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(http.MethodGet, "/post?postid=AAAAAAAAAAA", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestPostMalformedID(t *testing.T) {
	env := newTestEnv(t, nil)
	for _, target := range []string{"/post?postid=zz", "/post", "/post/source?postid=%21"} {
		rec := env.do(http.MethodGet, target, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "400 Bad Request", rec.Body.String(), target)
	}
}

func TestPostStoreFailure(t *testing.T) {
	env := newTestEnv(t, failingStore{err: errors.New("connection refused")})
	rec := env.do(http.MethodGet, "/post?postid=AAAAAAAAAAA", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestPostsListing(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/posts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<main></main>", rec.Body.String())

	long := strings.Repeat("é", 1200)
	ctx := context.Background()
	id1, err := env.store.Insert(ctx, "First", "short text")
	require.NoError(t, err)
	id2, err := env.store.Insert(ctx, "Second", long)
	require.NoError(t, err)

	rec = env.do(http.MethodGet, "/posts/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html", rec.Header().Get("Content-Type"))
	body := rec.Body.String()

	assert.Contains(t, body, `<a href="/post?postid=`+id1+`">First</a>`)
	assert.Contains(t, body, `<a href="/post?postid=`+id2+`">Second</a>`)
	assert.Contains(t, body, "short text ...")
	assert.Contains(t, body, strings.Repeat("é", 1000)+" ...")
	assert.NotContains(t, body, strings.Repeat("é", 1001))
	assert.Less(t, strings.Index(body, "First"), strings.Index(body, "Second"))
	assert.Equal(t, 2, strings.Count(body, `<div class="box">`))
}

func TestPostsStoreFailure(t *testing.T) {
	env := newTestEnv(t, failingStore{err: errors.New("connection refused")})
	rec := env.do(http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
	assert.Equal(t, "text/plain", rec.Header().Get("Content-Type"))
}

func TestPostSource(t *testing.T) {
	env := newTestEnv(t, nil)
	id, err := env.store.Insert(context.Background(), "Snippet", "package main\n\nfunc main() {}\n")
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/post/source?postid="+id+"&lang=go&hl=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1>Snippet</h1><em>go</em>")
	assert.Contains(t, body, `<div id="L3" class="line hl">`)

	rec = env.do(http.MethodGet, "/post/source?postid="+id+"&lang=cobol", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<em>auto</em>")

	rec = env.do(http.MethodGet, "/post/source?postid="+id+"&hl=9223372036854775806-9223372036854775807", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "line hl")
}

func TestStaticFiles(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(http.MethodGet, "/public/style.css", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/css", rec.Header().Get("Content-Type"))
	assert.Equal(t, "body{}", rec.Body.String())

	rec = env.do(http.MethodPost, "/public/style.css", "")
	assert.Equal(t, http.StatusOK, rec.Code, "static files answer any method")

	rec = env.do(http.MethodGet, "/public/missing.css", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "404 Not Found", rec.Body.String())
}

func TestUnknownRoutes(t *testing.T) {
	env := newTestEnv(t, nil)
	cases := []struct{ method, target string }{
		{http.MethodGet, "/nonexistent"},
		{http.MethodPost, "/nonexistent"},
		{http.MethodPut, "/nonexistent"},
		{http.MethodPut, "/writepost"},
		{http.MethodPost, "/post"},
		{http.MethodDelete, "/posts"},
		{http.MethodGet, "/writepost/extra"},
		{http.MethodGet, "/public"},
	}
	for _, c := range cases {
		rec := env.do(c.method, c.target, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", c.method, c.target)
		assert.Equal(t, "404 Not Found", rec.Body.String(), "%s %s", c.method, c.target)
	}
}

func TestMissingTemplateIs500(t *testing.T) {
	env := newTestEnv(t, nil)
	require.NoError(t, env.fs.Remove("templates/index.maru"))

	rec := env.do(http.MethodGet, "/", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestPanicIs500(t *testing.T) {
	env := newTestEnv(t, panicStore{})
	rec := env.do(http.MethodGet, "/posts", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", rec.Body.String())
}

func TestSegments(t *testing.T) {
	assert.Empty(t, Segments("/"))
	assert.Empty(t, Segments("///"))
	assert.Equal(t, []string{"posts"}, Segments("/posts/"))
	assert.Equal(t, []string{"a", "b"}, Segments("//a//b/"))
}

func TestDynamicLinksAndTruncate(t *testing.T) {
	assert.Equal(t, `<li><a href="/x">X</a></li>`, dynamicLinks([]navLink{{Text: "X", Href: "/x"}}))
	assert.Equal(t, "", dynamicLinks(nil))
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "日本", truncate("日本語", 2))
}
