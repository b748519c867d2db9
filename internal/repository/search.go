package repository

import (
	"strconv"
	"strings"
)

const likeEscape = ` ESCAPE '\'`

// containsPattern builds a case-insensitive LIKE pattern matching term
// anywhere. Compare it against LOWER(column).
func containsPattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}

// searchID parses an identifier search term. ok is false for anything that is
// not a whole number, which callers turn into an empty result.
func searchID(term string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(term), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
