// Package normalize turns free-text town names into the slugs used in
// ville-ideale.fr page URLs.
package normalize

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// TownName returns the URL slug for a town name: transliterated to ASCII,
// lowercase, with every run of characters outside [a-z0-9] collapsed to a
// single underscore and no leading or trailing underscore. It never fails;
// "" maps to "".
func TownName(raw string) string {
	s := strings.ToLower(unidecode.Unidecode(raw))
	s = nonSlug.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
