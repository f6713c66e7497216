// Package changelog extracts the most recent release section of a changelog
// and formats it for an HTML email.
package changelog

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// SectionMarker separates releases; the newest release comes first.
const SectionMarker = "##"

// ErrChangelogRead is wrapped when the changelog file cannot be read.
var ErrChangelogRead = errors.New("changelog read failed")

var (
	headingLine = regexp.MustCompile(`(?m)^#.*\n?`)
	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Latest returns the most recent section of the changelog at path.
func Latest(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrChangelogRead, err)
	}
	return LatestFrom(string(b)), nil
}

// LatestFrom keeps the text before the first "##", drops its final character
// (the newline that precedes the marker) and removes lines starting with "#".
// CRLF and lone CR line endings are read as LF.
func LatestFrom(text string) string {
	text = lineEndings.Replace(text)
	first, _, _ := strings.Cut(text, SectionMarker)
	if first != "" {
		_, size := utf8.DecodeLastRuneInString(first)
		first = first[:len(first)-size]
	}
	return headingLine.ReplaceAllString(first, "")
}

// ToHTML wraps each blank-line separated paragraph in <p> tags. Single
// newlines inside a paragraph start a new <p>.
func ToHTML(changes string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimSpace(changes), "\n\n") {
		b.WriteString("<p>")
		b.WriteString(strings.ReplaceAll(part, "\n", "</p>\n<p>"))
		b.WriteString("</p>\n")
	}
	return b.String()
}
