package handler

import (
	"net/http"
	"net/url"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sanadcare/admin-console/internal/core/ports"
	"github.com/sanadcare/admin-console/internal/pkg/i18n"
)

// PageHandler serves the pages every logged-in admin may open: the dashboard,
// the admin's own account and the upstream notification feed.
type PageHandler struct {
	api ports.ResourceGateway
	tr  ports.Translator
	log zerolog.Logger
}

func NewPageHandler(api ports.ResourceGateway, tr ports.Translator, log zerolog.Logger) *PageHandler {
	return &PageHandler{api: api, tr: tr, log: log}
}

// Upstream sources of the always-accessible pages.
const (
	upstreamStats         = "/api/stats"
	upstreamProfile       = "/profile"
	upstreamNotifications = "/api/notifications"
)

// Home renders the dashboard with the upstream statistics.
//
// @Summary      Dashboard
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Router       / [get]
func (h *PageHandler) Home(c echo.Context) error {
	return h.show(c, upstreamStats)
}

// MyAccount renders the admin's own profile.
//
// @Summary      My account
// @Tags         pages
// @Produce      json
// @Success      200  {object}  pageResponse
// @Router       /my-account [get]
func (h *PageHandler) MyAccount(c echo.Context) error {
	return h.show(c, upstreamProfile)
}

// Notifications renders the admin's upstream notification feed.
//
// @Summary      Notifications
// @Tags         pages
// @Produce      json
// @Param        page  query     int  false  "Page number"
// @Success      200   {object}  pageResponse
// @Router       /notifications [get]
func (h *PageHandler) Notifications(c echo.Context) error {
	return h.show(c, upstreamNotifications)
}

func (h *PageHandler) show(c echo.Context, source string) error {
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	env, err := h.api.List(c.Request().Context(), source, c.QueryParams())
	if err != nil {
		return err
	}
	return b.render(c, h.log, pageResponse{
		Page:    c.Request().URL.Path,
		Data:    env.Data,
		Meta:    env.Meta,
		Message: env.Message,
	})
}

// UpdateProfile saves the admin's own name, contact details or password.
//
// @Summary      Update my account
// @Tags         pages
// @Accept       json
// @Produce      json
// @Success      200  {object}  itemResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /my-account [put]
func (h *PageHandler) UpdateProfile(c echo.Context) error {
	return h.perform(c, i18n.MsgProfileUpdated, ports.Action{
		Method: http.MethodPost,
		Path:   upstreamProfile,
		Query:  url.Values{"_method": {http.MethodPut}},
	})
}

// MarkNotificationRead marks one feed entry as read.
//
// @Summary      Mark a notification as read
// @Tags         pages
// @Produce      json
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  itemResponse
// @Router       /notifications/{id}/read [patch]
func (h *PageHandler) MarkNotificationRead(c echo.Context) error {
	return h.perform(c, i18n.MsgNotificationRead, ports.Action{
		Method: http.MethodPatch,
		Path:   upstreamNotifications,
		ID:     c.Param("id"),
		Name:   "read",
	})
}

// MarkAllNotificationsRead marks the whole feed as read.
//
// @Summary      Mark all notifications as read
// @Tags         pages
// @Produce      json
// @Success      200  {object}  itemResponse
// @Router       /notifications/mark-all-read [patch]
func (h *PageHandler) MarkAllNotificationsRead(c echo.Context) error {
	return h.perform(c, i18n.MsgAllRead, ports.Action{
		Method: http.MethodPatch,
		Path:   upstreamNotifications,
		Name:   "mark-all-read",
	})
}

// DeleteNotification removes one feed entry.
//
// @Summary      Delete a notification
// @Tags         pages
// @Produce      json
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  itemResponse
// @Router       /notifications/{id} [delete]
func (h *PageHandler) DeleteNotification(c echo.Context) error {
	return h.perform(c, i18n.MsgNotificationGone, ports.Action{
		Method: http.MethodDelete,
		Path:   upstreamNotifications,
		ID:     c.Param("id"),
	})
}

func (h *PageHandler) perform(c echo.Context, fallback string, a ports.Action) error {
	return forward(c, h.log, h.tr, http.StatusOK, fallback, func(body json.RawMessage) (*ports.Envelope, error) {
		a.Body = body
		return h.api.Perform(c.Request().Context(), a)
	})
}
