// Package frontmatter splits a content file into its YAML metadata block and
// its body, and writes metadata back in the same form.
//
// A content file looks like:
//
//	---
//	title: Async Rust in Practice
//	date: 2025-02-25 10:00:00 +0800
//	categories: [Blogging, Rust]
//	tags: [async, tokio]
//	---
//
//	Body markup...
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	adrg "github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

var (
	// ErrMalformedFrontMatter is returned when a file does not open with a
	// delimited metadata block, or the block is not a key/value mapping.
	ErrMalformedFrontMatter = errors.New("malformed front matter")

	// ErrInvalidDate is returned when a date value cannot be parsed as a
	// timestamp with an explicit UTC offset.
	ErrInvalidDate = errors.New("invalid date")
)

// Delimiter opens and closes the metadata block.
const Delimiter = "---"

// DateLayout is the canonical front matter date layout.
const DateLayout = "2006-01-02 15:04:05 -0700"

// serializeLayout is DateLayout with fractional seconds kept when present.
// Every layout in dateLayouts accepts them on parse.
const serializeLayout = "2006-01-02 15:04:05.999999999 -0700"

var bom = []byte("\ufeff")

// dateLayouts are tried in order. Every layout requires a UTC offset.
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04 -0700",
	"2006-01-02 15:04:05 Z07:00",
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
}

// Reserved keys are decoded into typed Metadata fields; everything else lands
// in Metadata.Options.
const (
	keyTitle      = "title"
	keyDate       = "date"
	keyCategories = "categories"
	keyTags       = "tags"
)

var yamlFormat = adrg.NewFormat(Delimiter, Delimiter, yaml.Unmarshal)

// Metadata is the decoded metadata block of one content file.
type Metadata struct {
	Title      string
	Date       time.Time // zero when the block has no date
	Categories []string
	Tags       []string

	// Options holds layout options (icon, order) and any key this package
	// does not know about. Nil when there are none.
	Options map[string]any
}

// HasDate reports whether the block carried a date.
func (m Metadata) HasDate() bool {
	return !m.Date.IsZero()
}

// Parse splits content into metadata and body. The body is returned as the
// bytes following the closing delimiter, unmodified.
func Parse(content []byte) (Metadata, []byte, error) {
	content = bytes.TrimPrefix(content, bom)
	if !bytes.HasPrefix(content, []byte(Delimiter)) {
		return Metadata{}, nil, fmt.Errorf("%w: file does not begin with %q", ErrMalformedFrontMatter, Delimiter)
	}
	var doc yaml.Node
	body, err := adrg.MustParse(bytes.NewReader(content), &doc, yamlFormat)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("%w: %v", ErrMalformedFrontMatter, err)
	}
	meta, err := decode(&doc)
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, body, nil
}

// ParseDate parses a front matter timestamp. The value must carry an
// explicit UTC offset.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q (want e.g. %q)", ErrInvalidDate, s, DateLayout)
}

func decode(doc *yaml.Node) (Metadata, error) {
	var meta Metadata
	root := doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return meta, nil
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return meta, nil
	}
	if root.Kind != yaml.MappingNode {
		return Metadata{}, fmt.Errorf("%w: metadata block is not a mapping", ErrMalformedFrontMatter)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		val := root.Content[i+1]
		if isNull(val) {
			continue
		}
		switch key {
		case keyTitle:
			s, err := scalar(key, val)
			if err != nil {
				return Metadata{}, err
			}
			meta.Title = s
		case keyDate:
			if val.Kind != yaml.ScalarNode {
				return Metadata{}, fmt.Errorf("%w: date must be a scalar", ErrInvalidDate)
			}
			t, err := ParseDate(val.Value)
			if err != nil {
				return Metadata{}, err
			}
			meta.Date = t
		case keyCategories:
			list, err := stringList(key, val)
			if err != nil {
				return Metadata{}, err
			}
			meta.Categories = list
		case keyTags:
			list, err := stringList(key, val)
			if err != nil {
				return Metadata{}, err
			}
			meta.Tags = list
		default:
			var v any
			if err := val.Decode(&v); err != nil {
				return Metadata{}, fmt.Errorf("%w: key %q: %v", ErrMalformedFrontMatter, key, err)
			}
			if meta.Options == nil {
				meta.Options = make(map[string]any)
			}
			meta.Options[key] = v
		}
	}
	return meta, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func scalar(key string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fmt.Errorf("%w: %s must be a string", ErrMalformedFrontMatter, key)
	}
	return n.Value, nil
}

// stringList accepts a sequence of scalars or a single scalar.
func stringList(key string, n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Value == "" {
			return nil, nil
		}
		return []string{n.Value}, nil
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: %s must be a list of strings", ErrMalformedFrontMatter, key)
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a list of strings", ErrMalformedFrontMatter, key)
	}
}

// Serialize renders meta as a delimited metadata block followed by body.
// Keys are written in a fixed order (title, date, categories, tags, then
// options sorted by key) so the output is stable.
func Serialize(meta Metadata, body []byte) ([]byte, error) {
	m := &yaml.Node{Kind: yaml.MappingNode}
	add := func(key string, val *yaml.Node) {
		m.Content = append(m.Content, strNode(key), val)
	}
	if meta.Title != "" {
		add(keyTitle, strNode(meta.Title))
	}
	if meta.HasDate() {
		add(keyDate, strNode(meta.Date.Format(serializeLayout)))
	}
	if len(meta.Categories) > 0 {
		add(keyCategories, listNode(meta.Categories))
	}
	if len(meta.Tags) > 0 {
		add(keyTags, listNode(meta.Tags))
	}

	keys := make([]string, 0, len(meta.Options))
	for k := range meta.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case keyTitle, keyDate, keyCategories, keyTags:
			return nil, fmt.Errorf("frontmatter: option %q shadows a reserved key", k)
		}
		val, err := valueNode(meta.Options[k])
		if err != nil {
			return nil, fmt.Errorf("frontmatter: encode option %q: %w", k, err)
		}
		add(k, val)
	}

	out, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: marshal: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(Delimiter + "\n")
	buf.Write(out)
	buf.WriteString(Delimiter + "\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

// valueNode encodes an option value. Floats are written so that they decode
// back as floats: yaml would otherwise emit 1.0 as 1, which reads as an int.
func valueNode(v any) (*yaml.Node, error) {
	switch v := v.(type) {
	case float64:
		return floatNode(v), nil
	case float32:
		return floatNode(float64(v)), nil
	case []any:
		n := &yaml.Node{Kind: yaml.SequenceNode}
		for _, item := range v {
			child, err := valueNode(item)
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, child)
		}
		return n, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := &yaml.Node{Kind: yaml.MappingNode}
		for _, k := range keys {
			child, err := valueNode(v[k])
			if err != nil {
				return nil, err
			}
			n.Content = append(n.Content, strNode(k), child)
		}
		return n, nil
	}
	var n yaml.Node
	if err := n.Encode(v); err != nil {
		return nil, err
	}
	return &n, nil
}

func floatNode(f float64) *yaml.Node {
	var s string
	switch {
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	case math.IsNaN(f):
		s = ".nan"
	default:
		s = strconv.FormatFloat(f, 'g', -1, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func listNode(items []string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, it := range items {
		n.Content = append(n.Content, strNode(it))
	}
	return n
}
