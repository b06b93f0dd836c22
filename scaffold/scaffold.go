// Package scaffold generates the skeleton of a new site from embedded
// templates.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"
	"time"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

const root = "templates"

// datePlaceholder in a file name is replaced with the post date, so the
// sample post follows the YYYY-MM-DD-slug convention.
const datePlaceholder = "DATE"

// Data holds the template variables passed to every scaffold template.
type Data struct {
	SiteName string
	Author   string
	URL      string
	Now      time.Time
}

// Date is Now in the front matter date layout.
func (d Data) Date() string { return d.Now.Format("2006-01-02 15:04:05 -0700") }

// Generate writes a new site into dir, which must not exist yet. Each
// created file is reported to out.
func Generate(dir string, data Data, out io.Writer) error {
	if _, err := os.Stat(dir); err == nil {
		return fmt.Errorf("directory %q already exists", dir)
	}
	if data.Now.IsZero() {
		data.Now = time.Now()
	}
	if data.URL == "" {
		data.URL = "http://localhost:4000"
	}

	return fs.WalkDir(Templates, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		outPath := filepath.Join(dir, filepath.FromSlash(outputName(rel, data)))
		if d.IsDir() {
			return os.MkdirAll(outPath, 0o755)
		}

		content, err := Templates.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		tmpl, err := template.New(path.Base(p)).Option("missingkey=error").Parse(string(content))
		if err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return fmt.Errorf("execute template %s: %w", p, err)
		}
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("create %s: %w", outPath, err)
		}
		fmt.Fprintf(out, "  created %s\n", outPath)
		return nil
	})
}

// outputName maps a template path to the file it produces.
func outputName(rel string, data Data) string {
	rel = strings.TrimSuffix(rel, ".tmpl")
	dir, base := path.Split(rel)
	switch {
	case base == "dotenv":
		base = ".env.example"
	case base == "gitignore":
		base = ".gitignore"
	case strings.HasPrefix(base, datePlaceholder+"-"):
		base = data.Now.Format("2006-01-02") + strings.TrimPrefix(base, datePlaceholder)
	}
	return dir + base
}
