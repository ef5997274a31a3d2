package httputil

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gorilla/mux"
)

// MaxQueryLength bounds the search query read from a request, in runes
const MaxQueryLength = 256

// ErrMissingModuleName is returned when a route has no {name} variable
var ErrMissingModuleName = errors.New("missing module name")

// SearchQuery returns the q parameter, cut to MaxQueryLength runes.
// Surrounding whitespace is kept; the filter ignores it.
func SearchQuery(r *http.Request) string {
	q := r.URL.Query().Get("q")
	if utf8.RuneCountInString(q) <= MaxQueryLength {
		return q
	}
	runes := []rune(q)
	return string(runes[:MaxQueryLength])
}

// ModuleName returns the {name} route variable
func ModuleName(r *http.Request) (string, error) {
	name := mux.Vars(r)["name"]
	if name == "" {
		return "", ErrMissingModuleName
	}
	return name, nil
}
