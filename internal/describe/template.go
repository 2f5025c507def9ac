package describe

import "strings"

// templateToken is either a literal run or a {placeholder} reference.
type templateToken struct {
	literal string
	key     string // non-empty means placeholder
}

// compileTemplate splits a template into a token list once, at load
// time. Rendering then walks the tokens instead of re-scanning the
// whole string per field, and every occurrence of a repeated
// placeholder is substituted.
func compileTemplate(format string) []templateToken {
	var tokens []templateToken
	for len(format) > 0 {
		open := strings.IndexByte(format, '{')
		if open < 0 {
			tokens = append(tokens, templateToken{literal: format})
			break
		}
		close := strings.IndexByte(format[open:], '}')
		if close < 0 {
			tokens = append(tokens, templateToken{literal: format})
			break
		}
		close += open

		if open > 0 {
			tokens = append(tokens, templateToken{literal: format[:open]})
		}
		tokens = append(tokens, templateToken{key: format[open+1 : close]})
		format = format[close+1:]
	}
	return tokens
}

// render substitutes placeholder tokens from values. A placeholder with
// no decoded value is emitted verbatim, braces included, so missing
// fields stay visible in the output.
func render(tokens []templateToken, values map[string]string) string {
	var sb strings.Builder
	for _, tok := range tokens {
		if tok.key == "" {
			sb.WriteString(tok.literal)
			continue
		}
		if v, ok := values[tok.key]; ok {
			sb.WriteString(v)
		} else {
			sb.WriteString("{" + tok.key + "}")
		}
	}
	return sb.String()
}
