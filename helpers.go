package pubsite

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"strings"
	"unicode"
)

// Slugify converts a title or term to a URL-safe slug. Letters and digits
// of any script are kept and lowercased; runs of anything else become a
// single hyphen.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") && path.Ext(u.Path) == "" {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims each value and drops the empty ones.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinTags joins tags with ", ".
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

func normalizeTerm(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

// termSlug is the URL segment of a term page. Terms with no letters or
// digits get a stable hashed slug.
func termSlug(name string) string {
	if s := Slugify(name); s != "" {
		return s
	}
	return "term-" + termHash(name)
}

func termHash(name string) string {
	h := fnv.New32a()
	h.Write([]byte(normalizeTerm(name)))
	return fmt.Sprintf("%08x", h.Sum32())
}
