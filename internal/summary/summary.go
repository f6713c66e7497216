// Package summary renders the record printed after a release run.
package summary

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Summary describes one finished run.
type Summary struct {
	RunID      string
	AppName    string
	Version    string
	Artifact   string
	Link       string
	QRCode     string
	Subject    string
	Recipients []string
	Commit     string
	Branch     string
	Sent       bool
}

// Map returns the summary as a nested map. Empty optional values are omitted.
func (s Summary) Map() map[string]any {
	release := map[string]any{
		"app":      s.AppName,
		"version":  s.Version,
		"artifact": s.Artifact,
	}
	if s.Commit != "" {
		release["commit"] = s.Commit
	}
	if s.Branch != "" {
		release["branch"] = s.Branch
	}
	recipients := make([]any, 0, len(s.Recipients))
	for _, r := range s.Recipients {
		recipients = append(recipients, r)
	}
	return map[string]any{
		"runId":   s.RunID,
		"release": release,
		"download": map[string]any{
			"link":   s.Link,
			"qrcode": s.QRCode,
		},
		"email": map[string]any{
			"subject":    s.Subject,
			"recipients": recipients,
			"sent":       s.Sent,
		},
	}
}

// MarshalYAML returns canonical YAML bytes with sorted keys.
func MarshalYAML(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(canonicalNode(s.Map())); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	out := bytes.TrimRight(buf.Bytes(), "\n")
	out = append(out, '\n')
	return out, nil
}

// MarshalJSON returns a single JSON line with HTML escaping disabled.
func MarshalJSON(s Summary) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s.Map()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write renders s to w in format ("yaml", "json" or "none").
func Write(w io.Writer, format string, s Summary) error {
	var (
		b   []byte
		err error
	)
	switch format {
	case "none":
		return nil
	case "json":
		b, err = MarshalJSON(s)
	case "yaml", "":
		b, err = MarshalYAML(s)
	default:
		return fmt.Errorf("unsupported summary format: %s", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func scalarNode(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func scalarFrom(v any) *yaml.Node {
	n := &yaml.Node{}
	_ = n.Encode(v)
	return n
}

func canonicalNode(v any) *yaml.Node {
	switch x := v.(type) {
	case nil:
		return &yaml.Node{Kind: yaml.MappingNode}
	case map[string]any:
		return canonicalMapNode(x)
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, it := range x {
			n.Content = append(n.Content, canonicalNode(it))
		}
		return n
	default:
		return scalarFrom(x)
	}
}

func canonicalMapNode(m map[string]any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		n.Content = append(n.Content, scalarNode(k), canonicalNode(m[k]))
	}
	return n
}
