package i18n

import "net/http"

// Middleware picks a translator from the request's Accept-Language header,
// falling back to lang, and stores it in the request context.
func Middleware(lang string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t := NewTranslator(r.Header.Get("Accept-Language"), lang)
			next.ServeHTTP(w, r.WithContext(WithTranslator(r.Context(), t)))
		})
	}
}
