// Package i18n holds the console's own message catalog and locale
// negotiation. Page content comes localized from the upstream API; only the
// messages the console emits itself live here.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys.
const (
	MsgWelcomeBack       = "welcome_back"
	MsgLoginFailed       = "login_failed"
	MsgLoginTitle        = "login_title"
	MsgLoggedOut         = "logged_out"
	MsgLogoutFailed      = "logout_failed"
	MsgResetCodeSent     = "reset_code_sent"
	MsgResetCodeVerified = "reset_code_verified"
	MsgPasswordChanged   = "password_changed"
	MsgRequestFailed     = "request_failed"
	MsgAccessDenied      = "access_denied"
	MsgAccessDeniedTitle = "access_denied_title"
	MsgSessionExpired    = "session_expired"
	MsgSuccessTitle      = "success_title"
	MsgErrorTitle        = "error_title"
	MsgSaved             = "saved"
	MsgDeleted           = "deleted"
	MsgNotificationRead  = "notification_read"
	MsgAllRead           = "all_notifications_read"
	MsgNotificationGone  = "notification_deleted"
	MsgProfileUpdated    = "profile_updated"
	MsgDoctorVerified    = "doctor_verified"
	MsgDoctorRejected    = "doctor_rejected"
	MsgPermissionsSynced = "permissions_synced"
)

// DefaultLocale is used when nothing better is known.
const DefaultLocale = "en"

var supported = []language.Tag{language.English, language.Arabic}

var entries = map[string][2]string{
	MsgWelcomeBack:       {"Welcome back, %s!", "مرحباً بعودتك، %s!"},
	MsgLoginFailed:       {"Login failed", "فشل تسجيل الدخول"},
	MsgLoginTitle:        {"Login", "تسجيل الدخول"},
	MsgLoggedOut:         {"You have been logged out", "تم تسجيل الخروج"},
	MsgLogoutFailed:      {"Logged out locally; the server could not be reached", "تم تسجيل الخروج محلياً؛ تعذر الوصول إلى الخادم"},
	MsgResetCodeSent:     {"Password reset code sent to your email", "تم إرسال رمز إعادة التعيين إلى بريدك الإلكتروني"},
	MsgResetCodeVerified: {"Code verified successfully", "تم التحقق من الرمز بنجاح"},
	MsgPasswordChanged:   {"Password changed successfully", "تم تغيير كلمة المرور بنجاح"},
	MsgRequestFailed:     {"Something went wrong, please try again", "حدث خطأ ما، يرجى المحاولة مرة أخرى"},
	MsgAccessDenied:      {"You do not have permission to access this page", "ليس لديك صلاحية للوصول إلى هذه الصفحة"},
	MsgAccessDeniedTitle: {"Access denied", "تم رفض الوصول"},
	MsgSessionExpired:    {"Your session has expired, please log in again", "انتهت جلستك، يرجى تسجيل الدخول مرة أخرى"},
	MsgSuccessTitle:      {"Success", "نجاح"},
	MsgErrorTitle:        {"Error", "خطأ"},
	MsgSaved:             {"Saved successfully", "تم الحفظ بنجاح"},
	MsgDeleted:           {"Deleted successfully", "تم الحذف بنجاح"},
	MsgNotificationRead:  {"Notification marked as read", "تم تعليم الإشعار كمقروء"},
	MsgAllRead:           {"All notifications marked as read", "تم تعليم جميع الإشعارات كمقروءة"},
	MsgNotificationGone:  {"Notification deleted", "تم حذف الإشعار"},
	MsgProfileUpdated:    {"Profile updated successfully", "تم تحديث الملف الشخصي بنجاح"},
	MsgDoctorVerified:    {"Doctor verified successfully", "تم توثيق الطبيب بنجاح"},
	MsgDoctorRejected:    {"Doctor rejected successfully", "تم رفض الطبيب بنجاح"},
	MsgPermissionsSynced: {"Permissions refreshed successfully", "تم تحديث الصلاحيات بنجاح"},
}

// Catalog translates console messages and negotiates locales.
type Catalog struct {
	cat      catalog.Catalog
	matcher  language.Matcher
	fallback string
}

// New builds the catalog. fallback must be one of the supported locales;
// anything else falls back to English.
func New(fallback string) *Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, texts := range entries {
		_ = b.SetString(language.English, key, texts[0])
		_ = b.SetString(language.Arabic, key, texts[1])
	}

	c := &Catalog{cat: b, matcher: language.NewMatcher(supported), fallback: DefaultLocale}
	if c.Supported(fallback) {
		c.fallback = fallback
	}
	return c
}

// T renders key in locale, formatting args into the message.
func (c *Catalog) T(locale, key string, args ...any) string {
	tag, err := language.Parse(locale)
	if err != nil || !c.Supported(locale) {
		tag = language.Make(c.fallback)
	}
	p := message.NewPrinter(tag, message.Catalog(c.cat))
	return p.Sprintf(key, args...)
}

// Supported reports whether locale is one of the console's locales.
func (c *Catalog) Supported(locale string) bool {
	for _, t := range supported {
		if t.String() == locale {
			return true
		}
	}
	return false
}

// Negotiate picks the best supported locale for an Accept-Language header.
func (c *Catalog) Negotiate(acceptLanguage string) string {
	if acceptLanguage == "" {
		return c.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return c.fallback
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No {
		return c.fallback
	}
	return supported[idx].String()
}

// Fallback is the locale used when none is stored or negotiable.
func (c *Catalog) Fallback() string { return c.fallback }
