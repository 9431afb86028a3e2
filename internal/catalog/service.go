package catalog

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fedya1922n/food-shop/internal/i18n"
)

//go:embed products.json
var productsFS embed.FS

// ErrNotFound indicates the requested product does not exist.
var ErrNotFound = errors.New("product not found")

const maxQueryLen = 100

var routePattern = regexp.MustCompile(`[^a-zA-Z0-9-_]`)

// Service serves the immutable product catalog.
type Service struct {
	products []Product
	byID     map[string]Product
	bundle   *i18n.Bundle
}

// NewService loads the embedded catalog, filtering out records that fail the
// validity predicate. A partially invalid catalog is not fatal.
func NewService(bundle *i18n.Bundle, log zerolog.Logger) (*Service, error) {
	raw, err := productsFS.ReadFile("products.json")
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var all []Product
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	s := &Service{bundle: bundle, byID: make(map[string]Product, len(all))}
	for _, p := range all {
		if !Valid(p) {
			log.Warn().Str("product_id", p.ID).Msg("skipping invalid catalog product")
			continue
		}
		s.products = append(s.products, p)
		s.byID[p.ID] = p
	}
	return s, nil
}

// List returns the catalog in its declared order.
func (s *Service) List() []Product {
	out := make([]Product, len(s.products))
	copy(out, s.products)
	return out
}

// Get returns the product with the given id.
func (s *Service) Get(id string) (Product, error) {
	p, ok := s.byID[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

// ByType returns products matching the route-sanitized type value.
func (s *Service) ByType(t string) []Product {
	t = SanitizeRoute(t)
	var out []Product
	for _, p := range s.products {
		if p.Type == t {
			out = append(out, p)
		}
	}
	return out
}

// SanitizeRoute strips every character outside [a-zA-Z0-9-_].
func SanitizeRoute(v string) string {
	return routePattern.ReplaceAllString(v, "")
}

// Match is a search hit: the product plus the language its localized name
// matched in, so callers can offer a language switch.
type Match struct {
	Product Product `json:"product"`
	Lang    string  `json:"lang"`
	Name    string  `json:"name"`
}

var (
	cyrillicPattern = regexp.MustCompile(`[а-яА-ЯЁё]`)
	latinPattern    = regexp.MustCompile(`[a-zA-Z]`)
	uzbekPattern    = regexp.MustCompile(`(?i)[og]ʻ`)
)

// DetectLanguage guesses the language of a search query: Cyrillic means ru,
// Latin with Uzbek modifier letters means uz, plain Latin means en. Empty
// result means undetermined.
func DetectLanguage(query string) string {
	if cyrillicPattern.MatchString(query) {
		return "ru"
	}
	if latinPattern.MatchString(query) {
		if uzbekPattern.MatchString(query) {
			return "uz"
		}
		return "en"
	}
	return ""
}

// Search matches the query against localized product names across all
// bundled languages. When the query language can be detected, only that
// language's names are considered.
func (s *Service) Search(query string) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	runes := []rune(query)
	if len(runes) > maxQueryLen {
		query = string(runes[:maxQueryLen])
	}
	queryLang := DetectLanguage(query)
	needle := strings.ToLower(query)

	var out []Match
	for _, lang := range i18n.Supported() {
		if queryLang != "" && lang != queryLang {
			continue
		}
		names := s.bundle.Prefixed(lang, "products")
		for _, p := range s.products {
			name, ok := names[p.Name]
			if !ok {
				name = p.Name
			}
			if strings.Contains(strings.ToLower(name), needle) {
				out = append(out, Match{Product: p, Lang: lang, Name: name})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Product.ID != out[j].Product.ID {
			return out[i].Product.ID < out[j].Product.ID
		}
		return out[i].Lang < out[j].Lang
	})
	return out
}

// SuggestLanguage decides whether search results warrant a language-switch
// suggestion. Any match in the active language suppresses it; otherwise the
// first foreign-language match decides. All matches are considered, not just
// the first.
func SuggestLanguage(matches []Match, lang string) string {
	suggest := ""
	for _, m := range matches {
		if m.Lang == lang {
			return ""
		}
		if suggest == "" {
			suggest = m.Lang
		}
	}
	return suggest
}

// LocalizedName resolves a product's display name for the given language.
func (s *Service) LocalizedName(p Product, lang string) string {
	key := "products." + p.Name
	if s.bundle.Has(lang, key) || s.bundle.Has(i18n.DefaultLanguage, key) {
		return s.bundle.T(lang, key)
	}
	return p.Name
}
