package receipt

import "strings"

// NormalizeVendor canonicalizes a raw merchant string before classification.
// It lower-cases and trims, then drops branch/address suffixes: everything
// after the first hyphen ("Highlands Coffee - 123 Nguyen Hue"), and
// everything after the literal "cn" ("chi nhánh", the Vietnamese branch
// abbreviation). Always returns a string, possibly empty.
func NormalizeVendor(raw string) string {
	clean := strings.ToLower(strings.TrimSpace(raw))

	if i := strings.Index(clean, "-"); i >= 0 {
		clean = strings.TrimSpace(clean[:i])
	}
	if i := strings.Index(clean, "cn"); i >= 0 {
		clean = strings.TrimSpace(clean[:i])
	}

	return clean
}
