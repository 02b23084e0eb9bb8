package ranking

import (
	"regexp"
	"strings"

	"github.com/devansh3112/product-harmony-sphere/internal/models"
)

// filterPattern matches key:value, key:"quoted value" and key:'quoted value'
// followed by whitespace or end of input. The separator is consumed with the token.
var filterPattern = regexp.MustCompile(`(\w+):(?:"([^"]*)"|'([^']*)'|(\S+))(?:\s|$)`)

// ParseQuery splits raw into free text and filter tokens.
// Keys are lower-cased and the last occurrence of a key wins. Tokens with an
// empty value stay in MainQuery. Anything shaped like key:value is a filter,
// including URLs such as "http://host".
func ParseQuery(raw string) models.ParsedQuery {
	filters := make(models.QueryFilters)
	matches := filterPattern.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return models.ParsedQuery{MainQuery: strings.TrimSpace(raw), Filters: filters}
	}

	var rest strings.Builder
	last := 0
	for _, m := range matches {
		value, ok := submatchValue(raw, m)
		if !ok {
			continue
		}
		rest.WriteString(raw[last:m[0]])
		last = m[1]
		filters[strings.ToLower(raw[m[2]:m[3]])] = value
	}
	rest.WriteString(raw[last:])

	return models.ParsedQuery{MainQuery: strings.TrimSpace(rest.String()), Filters: filters}
}

// submatchValue returns the first non-empty value group of a match.
func submatchValue(raw string, m []int) (string, bool) {
	for g := 2; g <= 4; g++ {
		start, end := m[2*g], m[2*g+1]
		if start < 0 {
			continue
		}
		if end == start {
			return "", false
		}
		return raw[start:end], true
	}
	return "", false
}
