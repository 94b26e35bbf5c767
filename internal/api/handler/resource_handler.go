package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/domain"
	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

const maxBodyBytes = 1 << 20

// ResourceHandler proxies one CRUD page (roles, doctors, countries, ...) to
// the upstream endpoint of the same path. Each request goes straight through;
// the last response wins.
type ResourceHandler struct {
	page string
	api  ports.ResourceGateway
	tr   ports.Translator
	log  zerolog.Logger
}

func NewResourceHandler(page string, api ports.ResourceGateway, tr ports.Translator, log zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{
		page: page,
		api:  api,
		tr:   tr,
		log:  log.With().Str("page", page).Logger(),
	}
}

// itemResponse is returned by the mutating endpoints.
type itemResponse struct {
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// List renders the page with one page of items. Query parameters (page,
// search, filters) are forwarded.
//
// @Summary      List a resource page
// @Tags         resources
// @Produce      json
// @Success      200  {object}  pageResponse
// @Failure      502  {object}  ErrorResponse
// @Router       /{page} [get]
func (h *ResourceHandler) List(c echo.Context) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}
	env, err := h.api.List(c.Request().Context(), h.page, c.QueryParams())
	if err != nil {
		return err
	}
	return b.render(c, h.log, pageResponse{Page: h.page, Data: env.Data, Meta: env.Meta, Message: env.Message})
}

// Show renders one item.
//
// @Summary      Show an item
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  pageResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /{page}/{id} [get]
func (h *ResourceHandler) Show(c echo.Context) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}
	env, err := h.api.Show(c.Request().Context(), h.page, c.Param("id"))
	if err != nil {
		return err
	}
	return b.render(c, h.log, pageResponse{Page: h.page, Data: env.Data, Meta: env.Meta, Message: env.Message})
}

// Create adds an item.
//
// @Summary      Create an item
// @Tags         resources
// @Accept       json
// @Produce      json
// @Success      201  {object}  itemResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /{page} [post]
func (h *ResourceHandler) Create(c echo.Context) error {
	return h.mutate(c, http.StatusCreated, i18n.MsgSaved, func(body json.RawMessage) (*ports.Envelope, error) {
		return h.api.Create(c.Request().Context(), h.page, body)
	})
}

// Update replaces an item.
//
// @Summary      Update an item
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  itemResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /{page}/{id} [put]
func (h *ResourceHandler) Update(c echo.Context) error {
	return h.mutate(c, http.StatusOK, i18n.MsgSaved, func(body json.RawMessage) (*ports.Envelope, error) {
		return h.api.Update(c.Request().Context(), h.page, c.Param("id"), body)
	})
}

// Delete removes an item.
//
// @Summary      Delete an item
// @Tags         resources
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  itemResponse
// @Router       /{page}/{id} [delete]
func (h *ResourceHandler) Delete(c echo.Context) error {
	return h.mutate(c, http.StatusOK, i18n.MsgDeleted, func(json.RawMessage) (*ports.Envelope, error) {
		return h.api.Delete(c.Request().Context(), h.page, c.Param("id"))
	})
}

// ToggleStatus flips an item's active flag.
//
// @Summary      Toggle an item's status
// @Tags         resources
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  itemResponse
// @Router       /{page}/{id}/toggle-status [patch]
func (h *ResourceHandler) ToggleStatus(c echo.Context) error {
	return h.mutate(c, http.StatusOK, i18n.MsgSaved, func(body json.RawMessage) (*ports.Envelope, error) {
		return h.api.ToggleStatus(c.Request().Context(), h.page, c.Param("id"), body)
	})
}

// Action forwards a named call on an item (":id" routes) or on the whole page,
// such as PUT /doctors/7/verify or POST /permissions/update.
func (h *ResourceHandler) Action(method, name, fallback string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return h.mutate(c, http.StatusOK, fallback, func(body json.RawMessage) (*ports.Envelope, error) {
			return h.api.Perform(c.Request().Context(), ports.Action{
				Method: method,
				Path:   h.page,
				ID:     c.Param("id"),
				Name:   name,
				Body:   body,
			})
		})
	}
}

func (h *ResourceHandler) mutate(
	c echo.Context,
	status int,
	fallback string,
	call func(body json.RawMessage) (*ports.Envelope, error),
) error {
	return forward(c, h.log, h.tr, status, fallback, call)
}

// forward sends the raw body upstream, queues a toast for either result and
// returns upstream failures to the error handler. A rejected session gets no
// toast here; the error handler announces the expiry.
func forward(
	c echo.Context,
	log zerolog.Logger,
	tr ports.Translator,
	status int,
	fallback string,
	call func(body json.RawMessage) (*ports.Envelope, error),
) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	body, err := readJSONBody(c)
	if err != nil {
		return err
	}

	env, err := call(body)
	if err != nil {
		if !errors.Is(err, domain.ErrUnauthenticated) {
			b.notify(c, log, tr, domain.NotifyError, domain.MessageOf(err, b.t(tr, i18n.MsgRequestFailed)))
		}
		return err
	}

	msg := env.Message
	if msg == "" {
		msg = b.t(tr, fallback)
	}
	b.notify(c, log, tr, domain.NotifySuccess, msg)
	return c.JSON(status, itemResponse{Data: env.Data, Message: msg})
}

// readJSONBody returns the request body when it is valid JSON; an empty body
// is allowed.
func readJSONBody(c echo.Context) (json.RawMessage, error) {
	req := c.Request()
	raw, err := io.ReadAll(http.MaxBytesReader(c.Response(), req.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "body too large")
		}
		return nil, echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "body must be JSON")
	}
	return raw, nil
}
