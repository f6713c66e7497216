package mailtmpl

import (
	"fmt"
	"strings"
)

// Substitute replaces {name} tokens with values[name]. "{{" and "}}" produce
// literal braces. Unknown names and unbalanced braces are errors.
func Substitute(tmpl string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexAny(tmpl[i+1:], "{}")
			if end < 0 || tmpl[i+1+end] != '}' {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", ErrTemplate, i)
			}
			name := tmpl[i+1 : i+1+end]
			v, ok := values[name]
			if !ok {
				return "", fmt.Errorf("%w: unknown placeholder {%s}", ErrTemplate, name)
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrTemplate, i)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
