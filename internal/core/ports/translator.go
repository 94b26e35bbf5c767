package ports

// Translator renders a catalog message in the given locale.
type Translator interface {
	T(locale, key string, args ...any) string
}
