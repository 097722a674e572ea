package validation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"wager-backend/internal/domain"
)

const maxDescriptionLen = 500

// Principals: letters, digits and . _ - @ : only, at most 128 characters.
var principalRe = regexp.MustCompile(`^[A-Za-z0-9._\-@:]{1,128}$`)

func IsValidPrincipal(p string) bool {
	return principalRe.MatchString(p) && !domain.Principal(p).IsReserved()
}

// IsValidDescription requires non-blank text of at most 500 characters.
func IsValidDescription(d string) bool {
	return strings.TrimSpace(d) != "" && utf8.RuneCountInString(d) <= maxDescriptionLen
}

// ParseID parses a decimal path id. Game ids start at 1; bet ids at 0.
func ParseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}
