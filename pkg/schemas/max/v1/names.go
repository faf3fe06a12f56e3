package maxapi

import (
	"strings"
	"unicode"
)

// renames lists the fields whose wire key is not the camelCase form of the
// field name. Keyed by Go field name; the same rename holds in every type.
var renames = map[string]string{
	"ProtocolVersion": "ver",
	"CommandKind":     "cmd",
	"Sequence":        "seq",
	"MessageID":       "id",
	"Timestamp":       "time",
	"LinkType":        "type",
	"ButtonType":      "type",
	"ElementType":     "type",
	"StartFrom":       "from",
}

// naming is the key convention of one wire type.
type naming int

const (
	camelCase naming = iota
	// screamingSnake is used by flag sets such as chat options.
	screamingSnake
)

// wireKey returns the wire key for a Go field name under the convention.
func (n naming) wireKey(field string) string {
	if key, ok := renames[field]; ok && n == camelCase {
		return key
	}
	words := splitWords(field)
	switch n {
	case screamingSnake:
		for i, w := range words {
			words[i] = strings.ToUpper(w)
		}
		return strings.Join(words, "_")
	default:
		for i, w := range words {
			if i == 0 {
				words[i] = strings.ToLower(w)
				continue
			}
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
		return strings.Join(words, "")
	}
}

// splitWords breaks a Go identifier into words, keeping initialisms
// together: "PrevMessageID" -> [Prev Message ID], "BaseURL" -> [Base URL],
// "MessageIDs" -> [Message Ids].
func splitWords(s string) []string {
	s = strings.ReplaceAll(s, "IDs", "Ids")
	runes := []rune(s)
	var words []string
	start := 0
	for i := 1; i < len(runes); i++ {
		prev, cur := runes[i-1], runes[i]
		lowerToUpper := unicode.IsLower(prev) && unicode.IsUpper(cur)
		acronymEnd := unicode.IsUpper(prev) && unicode.IsUpper(cur) &&
			i+1 < len(runes) && unicode.IsLower(runes[i+1])
		if lowerToUpper || acronymEnd {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	return append(words, string(runes[start:]))
}
