package handler

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const headerAcceptLanguage = "Accept-Language"

// LocaleNegotiator is the part of the message catalog the locale switch needs.
type LocaleNegotiator interface {
	Supported(locale string) bool
	Negotiate(acceptLanguage string) string
}

// LocaleHandler switches the browser's language.
type LocaleHandler struct {
	locales LocaleNegotiator
	log     zerolog.Logger
}

func NewLocaleHandler(locales LocaleNegotiator, log zerolog.Logger) *LocaleHandler {
	return &LocaleHandler{locales: locales, log: log}
}

type localeRequest struct {
	Locale string `json:"locale" form:"locale" validate:"omitempty,oneof=en ar"`
}

// Switch stores the chosen locale. Without one, the browser's Accept-Language
// decides. The browser is sent back to the page it came from.
//
// @Summary      Switch language
// @Tags         session
// @Accept       json,x-www-form-urlencoded
// @Param        body  body  localeRequest  false  "en or ar"
// @Success      303   "back to the referring page"
// @Failure      422   {object}  ErrorResponse
// @Router       /locale [post]
func (h *LocaleHandler) Switch(c echo.Context) error {
	var req localeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	b, err := ctxBrowser(c)
	if err != nil {
		return err
	}

	locale := req.Locale
	if locale == "" || !h.locales.Supported(locale) {
		locale = h.locales.Negotiate(c.Request().Header.Get(headerAcceptLanguage))
	}
	if err := b.session.SetLocale(c.Request().Context(), locale); err != nil {
		return err
	}

	h.log.Debug().Str("locale", locale).Msg("locale switched")
	return c.Redirect(http.StatusSeeOther, sameOriginReferer(c))
}

// sameOriginReferer returns the path of the referring page when it belongs to
// this host, "/" otherwise.
func sameOriginReferer(c echo.Context) string {
	ref, err := url.Parse(c.Request().Referer())
	if err != nil || ref.Path == "" {
		return "/"
	}
	if ref.Host != "" && ref.Host != c.Request().Host {
		return "/"
	}
	if ref.RawQuery != "" {
		return ref.Path + "?" + ref.RawQuery
	}
	return ref.Path
}
