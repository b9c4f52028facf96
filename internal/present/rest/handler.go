package rest

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stagefive/notebook/internal/domain"
	"github.com/stagefive/notebook/internal/present/rest/presenter"
	"github.com/stagefive/notebook/internal/service"
	"github.com/stagefive/notebook/internal/usecase"
)

type Handler struct {
	note     *usecase.NoteUsecase
	comment  *usecase.CommentUsecase
	identity *service.IdentityService
	signal   *service.SignalService
}

func NewHandler(
	note *usecase.NoteUsecase,
	comment *usecase.CommentUsecase,
	identity *service.IdentityService,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		note:     note,
		comment:  comment,
		identity: identity,
		signal:   signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleListing)
	e.POST("/", h.handleSubmitComment)
	e.GET("/add_note", h.handleAddNotePage)
	e.POST("/submit_note", h.handleSubmitNote)
	e.GET("/api/v1/notes", h.handleListingJSON)
	e.GET("/auth/login", h.handleLoginPage)
	e.POST("/auth/login", h.handleLogin)
	e.GET("/auth/logout", h.handleLogout)
	e.GET("/realtime", h.handleRealtime)
}

// noteView is a note plus its urlsafe key, which the templates need
// for comment forms and anchors.
type noteView struct {
	Key      string           `json:"key"`
	Notebook string           `json:"notebook"`
	Author   *domain.Author   `json:"author,omitempty"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Comments []domain.Comment `json:"comments"`
	Date     time.Time        `json:"date"`
}

func buildNoteViews(notes []domain.Note) []noteView {
	views := make([]noteView, 0, len(notes))
	for _, n := range notes {
		views = append(views, noteView{
			Key:      n.Key().Encode(),
			Notebook: n.Notebook,
			Author:   n.Author,
			Title:    n.Title,
			Content:  n.Content,
			Comments: n.Comments,
			Date:     n.Date,
		})
	}
	return views
}

// resolveIdentity returns the identity triple for the current page:
// the signed-in identity if any, and the matching login or logout URL
// with its link text.
func (h *Handler) resolveIdentity(c echo.Context) (*domain.Identity, string, string) {
	uri := c.Request().RequestURI

	if identity, ok := domain.IdentityFromContext(c.Request().Context()); ok {
		return &identity, h.identity.LogoutURL(uri), "Logout"
	}
	return nil, h.identity.LoginURL(uri), "Login"
}

func requesterAuthor(ctx context.Context) *domain.Author {
	identity, ok := domain.IdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return identity.Author()
}

func (h *Handler) handleListing(c echo.Context) error {
	ctx := c.Request().Context()

	notebook := c.QueryParam("notebook_name")
	if notebook == "" {
		notebook = domain.DefaultNotebookName
	}

	notes, err := h.note.List(ctx, notebook)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	identity, actionURL, actionLabel := h.resolveIdentity(c)

	return c.Render(http.StatusOK, "index.html", echo.Map{
		"User":            identity,
		"Notes":           buildNoteViews(notes),
		"NotebookName":    notebook,
		"URLNotebookName": url.QueryEscape(notebook),
		"URL":             actionURL,
		"URLLinktext":     actionLabel,
		"CommentError":    c.QueryParam("comment_error"),
	})
}

func (h *Handler) handleListingJSON(c echo.Context) error {
	ctx := c.Request().Context()

	notes, err := h.note.List(ctx, c.QueryParam("notebook_name"))
	if err != nil {
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, buildNoteViews(notes))
}

func (h *Handler) handleAddNotePage(c echo.Context) error {
	notebook := c.QueryParam("notebook_name")
	if notebook == "" {
		notebook = domain.DefaultNotebookName
	}

	identity, actionURL, actionLabel := h.resolveIdentity(c)

	return c.Render(http.StatusOK, "add_note.html", echo.Map{
		"User":            identity,
		"NotebookName":    notebook,
		"URLNotebookName": url.QueryEscape(notebook),
		"URL":             actionURL,
		"URLLinktext":     actionLabel,
		"NoteError":       c.QueryParam("note_error"),
	})
}

func (h *Handler) handleSubmitNote(c echo.Context) error {
	ctx := c.Request().Context()

	notebook := c.FormValue("notebook_name")

	note, err := h.note.Submit(ctx, usecase.SubmitNoteInput{
		Notebook: notebook,
		Title:    c.FormValue("title"),
		Content:  c.FormValue("content"),
		Author:   requesterAuthor(ctx),
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			if notebook == "" {
				notebook = domain.DefaultNotebookName
			}
			q := url.Values{}
			q.Set("note_error", "1")
			q.Set("notebook_name", notebook)
			return presenter.SeeOther(c, "/add_note?"+q.Encode())
		}
		return presenter.InternalError(c, err)
	}

	q := url.Values{}
	q.Set("notebook_name", note.Notebook)
	return presenter.SeeOther(c, "/?"+q.Encode())
}

func (h *Handler) handleSubmitComment(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.FormValue("key")

	result, err := h.comment.Append(ctx, usecase.AppendCommentInput{
		Key:     key,
		Content: c.FormValue("comment_content"),
		Author:  requesterAuthor(ctx),
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidKey):
			return presenter.BadRequestMessage(c, "invalid note key")
		case errors.Is(err, domain.ErrNotFound):
			return presenter.NotFound(c, "note not found")
		case errors.Is(err, domain.ErrValidation):
			q := url.Values{}
			q.Set("comment_error", key)
			return presenter.SeeOther(c, "/?"+q.Encode()+"#"+key)
		default:
			return presenter.InternalError(c, err)
		}
	}

	q := url.Values{}
	q.Set("notebook_name", result.Notebook)
	return presenter.SeeOther(c, "/?"+q.Encode()+"#"+key)
}

func (h *Handler) handleLoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", echo.Map{
		"Continue": safeContinue(c.QueryParam("continue")),
	})
}

func (h *Handler) handleLogin(c echo.Context) error {
	email := strings.TrimSpace(c.FormValue("email"))
	if email == "" {
		return presenter.BadRequestMessage(c, "email is required")
	}

	identity := h.identity.IdentityFor(email)
	token, err := h.identity.IssueToken(identity)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.identity.TTL() / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return presenter.SeeOther(c, safeContinue(c.FormValue("continue")))
}

func (h *Handler) handleLogout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     service.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return presenter.SeeOther(c, safeContinue(c.QueryParam("continue")))
}

// safeContinue only accepts local paths, so the login flow cannot be
// used as an open redirect.
func safeContinue(uri string) string {
	if !strings.HasPrefix(uri, "/") || strings.HasPrefix(uri, "//") {
		return "/"
	}
	return uri
}
