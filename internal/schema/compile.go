package schema

import (
	"strings"
)

// Compile parses a line-oriented layout description into an ordered
// descriptor list. Grammar per line: `<type> <name> [extra tokens
// ignored]`. Blank lines and lines starting with '#' are skipped, as
// are lines with fewer than two tokens. There is no error case: a
// malformed schema simply yields fewer fields.
func Compile(text string) []FieldDescriptor {
	var fields []FieldDescriptor
	var offset uint32

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}

		ft, ok := typeNames[strings.ToLower(tokens[0])]
		if !ok {
			ft = TypeUnknown
		}
		width := ft.Width()

		fields = append(fields, FieldDescriptor{
			Name:   tokens[1],
			Type:   ft,
			Offset: offset,
			Size:   width,
		})
		offset += width
	}
	return fields
}
