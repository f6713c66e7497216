package mailtmpl

import (
	"strings"
	"unicode"
)

const (
	markerPrefix  = "#"
	subjectMarker = "#subject"
	bodyMarker    = "#body"
)

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

type region int

const (
	regionNone region = iota
	regionSubject
	regionBody
)

// Sections holds the routed template regions.
type Sections struct {
	Subject    string
	Body       string
	HasSubject bool
	HasBody    bool
}

// router accumulates lines into the region selected by the last marker.
type router struct {
	state   region
	subject strings.Builder
	body    strings.Builder
	seen    map[region]bool
}

func (r *router) feed(line string) {
	if strings.HasPrefix(line, markerPrefix) {
		switch {
		case strings.HasPrefix(line, subjectMarker):
			r.state = regionSubject
			r.seen[regionSubject] = true
		case strings.HasPrefix(line, bodyMarker):
			r.state = regionBody
			r.seen[regionBody] = true
		}
		// any other '#' line is a comment
		return
	}
	switch r.state {
	case regionSubject:
		r.subject.WriteString(line)
		r.subject.WriteByte('\n')
	case regionBody:
		r.body.WriteString(line)
		r.body.WriteByte('\n')
	}
}

// Split routes each line of text into the subject or body region.
func Split(text string) Sections {
	r := &router{seen: map[region]bool{}}
	text = lineEndings.Replace(text)
	text = strings.TrimSuffix(text, "\n")
	for _, line := range strings.Split(text, "\n") {
		r.feed(line)
	}
	return Sections{
		Subject:    strings.TrimRightFunc(r.subject.String(), unicode.IsSpace),
		Body:       strings.TrimRightFunc(r.body.String(), unicode.IsSpace),
		HasSubject: r.seen[regionSubject],
		HasBody:    r.seen[regionBody],
	}
}
