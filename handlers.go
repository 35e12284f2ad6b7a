package quotemill

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

type submitRequest struct {
	Type       string         `json:"type"`
	Attributes map[string]any `json:"attributes"`
	Tags       []string       `json:"tags"`
}

type patchRequest struct {
	Attributes map[string]any `json:"attributes"`
	Tags       []string       `json:"tags"`
}

type itemResponse struct {
	ID           int64          `json:"id"`
	Type         string         `json:"type"`
	Title        string         `json:"title"`
	SourceURL    string         `json:"source_url,omitempty"`
	Attributes   map[string]any `json:"attributes"`
	Tags         []string       `json:"tags"`
	SubmittedBy  string         `json:"submitted_by,omitempty"`
	RenderStatus RenderStatus   `json:"render_status"`
	ImageURL     string         `json:"image_url,omitempty"`
	EmbedURL     string         `json:"embed_url,omitempty"`
	MarkdownURL  string         `json:"markdown_url,omitempty"`
	RenderedAt   string         `json:"rendered_at,omitempty"`
	CreatedAt    string         `json:"created_at"`
	UpdatedAt    string         `json:"updated_at"`
}

type listResponse struct {
	Items      []itemResponse `json:"items"`
	NextCursor int64          `json:"next_cursor,omitempty"`
}

type validationResponse struct {
	Error  string       `json:"error"`
	Fields []FieldError `json:"fields"`
}

func (a *App) itemResponse(item *Item) itemResponse {
	resp := itemResponse{
		ID:           item.ID,
		Type:         item.Type,
		Title:        item.Title,
		SourceURL:    item.SourceURL,
		Attributes:   item.Attributes,
		Tags:         item.Tags,
		SubmittedBy:  item.SubmittedBy,
		RenderStatus: item.RenderStatus,
		CreatedAt:    item.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:    item.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if item.Tags == nil {
		resp.Tags = []string{}
	}
	if item.RenderStatus == StatusRendered {
		urls := PublicArtifactURLs(a.Config.URL, item)
		resp.ImageURL = urls.Image
		resp.EmbedURL = urls.Embed
		resp.MarkdownURL = urls.Markdown
	}
	if item.RenderedAt != nil {
		resp.RenderedAt = item.RenderedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

// handleSubmitItem accepts a new content item. Validation failures return
// 422 with the full list of field errors; nothing is persisted on failure.
func (a *App) handleSubmitItem(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	item, err := a.Items.Submit(c.Request().Context(), req.Type, req.Attributes, req.Tags, TokenSubject(c))
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.JSON(http.StatusUnprocessableEntity, validationResponse{
				Error:  "validation failed",
				Fields: verrs,
			})
		case errors.Is(err, ErrUnknownType):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "unknown content type")
		default:
			return err
		}
	}
	return c.JSON(http.StatusCreated, a.itemResponse(item))
}

func (a *App) handleGetItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	item, err := a.Items.Fetch(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, a.itemResponse(item))
}

func (a *App) handleListItems(c echo.Context) error {
	opts := ListOptions{
		Type: c.QueryParam("type"),
		Tag:  c.QueryParam("tag"),
	}
	if raw := c.QueryParam("cursor"); raw != "" {
		cursor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid cursor")
		}
		opts.Cursor = cursor
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		opts.Limit = limit
	}
	items, err := a.Items.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	resp := listResponse{Items: make([]itemResponse, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, a.itemResponse(&items[i]))
	}
	if len(items) > 0 {
		resp.NextCursor = items[len(items)-1].ID
	}
	return c.JSON(http.StatusOK, resp)
}

// handlePatchItem merges partial attributes into an existing item and
// requeues it for rendering.
func (a *App) handlePatchItem(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	var req patchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	item, err := a.Items.Patch(c.Request().Context(), id, req.Attributes, req.Tags)
	if err != nil {
		var verrs ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.JSON(http.StatusUnprocessableEntity, validationResponse{
				Error:  "validation failed",
				Fields: verrs,
			})
		case errors.Is(err, ErrItemNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		default:
			return err
		}
	}
	return c.JSON(http.StatusOK, a.itemResponse(item))
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, "User-agent: *\nAllow: /\nSitemap: "+BuildURL(a.Config.URL, "sitemap.xml")+"\n")
}

// httpErrorHandler keeps API responses JSON and everything else HTML. 5xx
// details never reach the client.
func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
	}
	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		msg := "internal error"
		if ok && code < 500 {
			if s, isStr := he.Message.(string); isStr {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else if code < 500 {
			msg = http.StatusText(code)
		}
		_ = c.JSON(code, map[string]string{"error": msg})
		return
	}
	if code == http.StatusNotFound {
		_ = RenderWithStatus(c, http.StatusNotFound, NotFoundPage())
		return
	}
	if code >= 500 {
		_ = RenderWithStatus(c, code, ServerErrorPage())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
