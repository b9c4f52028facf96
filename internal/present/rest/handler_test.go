package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagefive/notebook/internal/domain"
	"github.com/stagefive/notebook/internal/present/rest/middleware"
	"github.com/stagefive/notebook/internal/service"
	"github.com/stagefive/notebook/internal/usecase"
)

// --- mocks ---

type mockNoteRepo struct {
	notes   map[string][]domain.Note
	created []domain.Note
	next    int
}

func newMockNoteRepo() *mockNoteRepo {
	return &mockNoteRepo{notes: map[string][]domain.Note{}}
}

func (m *mockNoteRepo) Create(ctx context.Context, note domain.Note) (domain.Note, error) {
	m.next++
	note.ID = "note-" + string(rune('0'+m.next))
	note.Date = time.Now().UTC()
	m.created = append(m.created, note)
	m.notes[note.Notebook] = append(m.notes[note.Notebook], note)
	return note, nil
}

func (m *mockNoteRepo) Get(ctx context.Context, notebook, id string) (domain.Note, error) {
	for _, n := range m.notes[notebook] {
		if n.ID == id {
			return n, nil
		}
	}
	return domain.Note{}, domain.NotFoundError{Resource: "note"}
}

func (m *mockNoteRepo) ListByNotebook(ctx context.Context, notebook string, limit int) ([]domain.Note, error) {
	notes := m.notes[notebook]
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (m *mockNoteRepo) AppendComment(ctx context.Context, notebook, noteID string, comment domain.Comment) (domain.Comment, error) {
	for i, n := range m.notes[notebook] {
		if n.ID == noteID {
			comment.ID = "comment-1"
			comment.Date = time.Now().UTC()
			m.notes[notebook][i].Comments = append(n.Comments, comment)
			return comment, nil
		}
	}
	return domain.Comment{}, domain.NotFoundError{Resource: "note"}
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, notebook string) ([]domain.Note, bool) { return nil, false }
func (noopCache) Set(ctx context.Context, notebook string, notes []domain.Note)  {}
func (noopCache) Invalidate(ctx context.Context, notebook string)                {}

type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, notebook string, event domain.Event) error {
	return nil
}

// --- fixture ---

func writeTemplates(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"index.html":    `{{.NotebookName}}|{{.URLLinktext}}|{{range .Notes}}[{{.Title}}:{{.Content}}{{range .Comments}}({{.Content}}){{end}}]{{end}}|{{.CommentError}}`,
		"add_note.html": `add_note|{{.NotebookName}}|{{.NoteError}}`,
		"login.html":    `login|{{.Continue}}`,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write template %s: %v", name, err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, repo *mockNoteRepo) *echo.Echo {
	t.Helper()

	identity := service.NewIdentityService("test-secret", "notebook.test", time.Hour)
	noteUC := usecase.NewNoteUsecase(repo, noopCache{}, noopPublisher{})
	commentUC := usecase.NewCommentUsecase(repo, noopCache{}, noopPublisher{})

	renderer, err := NewRenderer(writeTemplates(t))
	if err != nil {
		t.Fatalf("failed to build renderer: %v", err)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Use(middleware.NewAuthMiddleware(identity).IdentifyIdentity)

	h := NewHandler(noteUC, commentUC, identity, nil)
	h.RegisterRoutes(e)
	return e
}

func submitNote(t *testing.T, e *echo.Echo, notebook, title, content string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	form.Set("notebook_name", notebook)
	form.Set("title", title)
	form.Set("content", content)

	req := httptest.NewRequest(http.MethodPost, "/submit_note", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	return res
}

// --- tests ---

func TestSubmitNoteRedirectsToListing(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	res := submitNote(t, e, "Stage 5", "  Hello  ", "World")

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	location := res.Header().Get(echo.HeaderLocation)
	if location != "/?notebook_name=Stage+5" {
		t.Fatalf("unexpected redirect %q", location)
	}
	if len(repo.created) != 1 || repo.created[0].Title != "Hello" {
		t.Fatalf("expected one trimmed note, got %+v", repo.created)
	}
}

func TestSubmitNoteEmptyTitleRedirectsWithError(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	res := submitNote(t, e, "Stage 5", "   ", "World")

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	location := res.Header().Get(echo.HeaderLocation)
	if !strings.HasPrefix(location, "/add_note?") || !strings.Contains(location, "note_error=1") {
		t.Fatalf("expected add_note redirect with error flag, got %q", location)
	}
	if len(repo.created) != 0 {
		t.Fatalf("nothing must be persisted on validation failure")
	}
}

func TestListingRendersNotesAndComments(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	submitNote(t, e, "", "Hello", "World")

	note := repo.notes[domain.DefaultNotebookName][0]
	form := url.Values{}
	form.Set("key", note.Key().Encode())
	form.Set("comment_content", "Nice!")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)
	if res.Code != http.StatusSeeOther {
		t.Fatalf("comment submit failed with %d", res.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	body := res.Body.String()
	if !strings.Contains(body, "Stage 5") {
		t.Fatalf("listing must show the default notebook name: %q", body)
	}
	if !strings.Contains(body, "[Hello:World(Nice!)]") {
		t.Fatalf("listing must show the note with its comment: %q", body)
	}
	if !strings.Contains(body, "Login") {
		t.Fatalf("anonymous listing must offer a login link: %q", body)
	}
}

func TestSubmitCommentEmptyContentRedirectsWithError(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	submitNote(t, e, "Stage 5", "Hello", "World")
	key := repo.notes["Stage 5"][0].Key().Encode()

	form := url.Values{}
	form.Set("key", key)
	form.Set("comment_content", "   ")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 got %d", res.Code)
	}
	location := res.Header().Get(echo.HeaderLocation)
	if !strings.Contains(location, "comment_error=") || !strings.Contains(location, "#"+key) {
		t.Fatalf("expected error redirect anchored at the note, got %q", location)
	}
	if len(repo.notes["Stage 5"][0].Comments) != 0 {
		t.Fatalf("nothing must be persisted on validation failure")
	}
}

func TestSubmitCommentMalformedKey(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	form := url.Values{}
	form.Set("key", "garbage!!")
	form.Set("comment_content", "Nice!")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", res.Code)
	}
}

func TestSubmitCommentMissingNote(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	form := url.Values{}
	form.Set("key", domain.NoteKey("Stage 5", "no-such-note").Encode())
	form.Set("comment_content", "Nice!")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", res.Code)
	}
}

func TestAddNotePageEchoesError(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	req := httptest.NewRequest(http.MethodGet, "/add_note?notebook_name=Stage+5&note_error=1", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}
	if !strings.Contains(res.Body.String(), "add_note|Stage 5|1") {
		t.Fatalf("unexpected body %q", res.Body.String())
	}
}

func TestListingJSON(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	submitNote(t, e, "Stage 5", "Hello", "World")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notes?notebook_name=Stage+5", nil)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", res.Code)
	}

	var views []map[string]any
	if err := json.Unmarshal(res.Body.Bytes(), &views); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(views) != 1 || views[0]["title"] != "Hello" {
		t.Fatalf("unexpected payload %v", views)
	}
	if views[0]["key"] == "" {
		t.Fatalf("payload must carry the urlsafe note key")
	}
}

func TestLoginAttachesAuthorToSubmits(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	form := url.Values{}
	form.Set("email", "a@example.com")
	form.Set("continue", "/")
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("login failed with %d", res.Code)
	}

	cookies := res.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == service.SessionCookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" {
		t.Fatalf("expected a session cookie")
	}

	form = url.Values{}
	form.Set("title", "Hello")
	form.Set("content", "World")
	req = httptest.NewRequest(http.MethodPost, "/submit_note", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	req.AddCookie(session)
	res = httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("submit failed with %d", res.Code)
	}
	if len(repo.created) != 1 || repo.created[0].Author == nil {
		t.Fatalf("expected the note to carry the signed-in author")
	}
	if repo.created[0].Author.Email != "a@example.com" {
		t.Fatalf("unexpected author %+v", repo.created[0].Author)
	}
}

func TestLoginRejectsOpenRedirect(t *testing.T) {
	repo := newMockNoteRepo()
	e := newTestServer(t, repo)

	form := url.Values{}
	form.Set("email", "a@example.com")
	form.Set("continue", "https://evil.example.com/")
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	res := httptest.NewRecorder()
	e.ServeHTTP(res, req)

	if res.Code != http.StatusSeeOther {
		t.Fatalf("login failed with %d", res.Code)
	}
	if res.Header().Get(echo.HeaderLocation) != "/" {
		t.Fatalf("continue must be forced to a local path, got %q", res.Header().Get(echo.HeaderLocation))
	}
}
