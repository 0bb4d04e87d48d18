package middleware

import (
	"context"
	"net/http"

	"github.com/soaringjerry/Align/internal/utils"
)

type ctxKey int

const localeKey ctxKey = 1

var SupportedLocales = []string{"en", "zh"}

// LocaleMiddleware stores the negotiated locale (?lang= or Accept-Language)
// in the request context.
func LocaleMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := utils.DetermineLocale(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"), SupportedLocales, "en")
		ctx := context.WithValue(r.Context(), localeKey, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LocaleFromContext retrieves the locale stored by LocaleMiddleware.
func LocaleFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(localeKey).(string); ok {
		return s
	}
	return "en"
}
