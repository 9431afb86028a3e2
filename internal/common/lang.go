package common

import (
	"net/http"
	"strings"

	"github.com/fedya1922n/food-shop/internal/i18n"
)

// LanguageHeader carries the active storefront language on API requests.
const LanguageHeader = "X-Shop-Language"

// Language resolves the request language from the lang query parameter or
// the language header, normalized to a supported code.
func Language(r *http.Request) string {
	if lang := strings.TrimSpace(r.URL.Query().Get("lang")); lang != "" {
		return i18n.Normalize(lang)
	}
	return i18n.Normalize(r.Header.Get(LanguageHeader))
}
