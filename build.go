package pubsite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/pubsite/frontmatter"
	"github.com/eringen/pubsite/logger"
)

// Builder loads a content directory and writes the generated site.
type Builder struct {
	cfg      SiteConfig
	log      logger.Logger
	renderer *Renderer
}

// NewBuilder creates a Builder for cfg.
func NewBuilder(cfg SiteConfig, opts ...Option) *Builder {
	cfg.setDefaults()
	b := &Builder{
		cfg: cfg,
		log: logger.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = NewRenderer(cfg)
	}
	return b
}

// Config returns the effective configuration, defaults applied.
func (b *Builder) Config() SiteConfig { return b.cfg }

// Report summarizes a build. Errors holds one entry per source file that
// could not be loaded or rendered; every other file was still written.
type Report struct {
	Pages    int
	Posts    int
	Written  int
	Assets   AssetStats
	Errors   []*FileError
	Duration time.Duration
}

// Err combines the per-file errors, or returns nil when there are none.
func (r *Report) Err() error {
	errs := make([]error, len(r.Errors))
	for i, e := range r.Errors {
		errs[i] = e
	}
	return multierr.Combine(errs...)
}

func (b *Builder) fail(r *Report, path string, err error) {
	fe := &FileError{Path: path, Err: err}
	r.Errors = append(r.Errors, fe)
	b.log.Warn("skipping file", logger.String("path", path), logger.Error(err))
}

type loadResult struct {
	page *Page
	err  error
}

// Load reads, parses and validates every Markdown file under the source
// directory. Files that fail are recorded in the report and left out of the
// returned pages. The returned error is reserved for failures that stop the
// whole load: an unreadable source directory or a cancelled context.
func (b *Builder) Load(ctx context.Context) ([]*Page, *Report, error) {
	report := &Report{}
	files, err := b.sourceFiles()
	if err != nil {
		return nil, report, err
	}

	results := make([]loadResult, len(files))
	g := new(errgroup.Group)
	g.SetLimit(b.cfg.Workers)
	for i, rel := range files {
		if ctx.Err() != nil {
			break
		}
		i, rel := i, rel
		g.Go(func() error {
			p, err := b.loadFile(rel)
			results[i] = loadResult{page: p, err: err}
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, report, err
	}

	// files is sorted, so the lexically first source keeps a contested
	// output path.
	owners := make(map[string]string)
	var pages []*Page
	for i, res := range results {
		if res.err != nil {
			b.fail(report, files[i], res.err)
			continue
		}
		if kind, ok := reservedPath(res.page); ok {
			b.fail(report, files[i], fmt.Errorf("%w: %s is reserved for %s pages", ErrDuplicatePermalink, res.page.Permalink(), kind))
			continue
		}
		out := res.page.OutputPath()
		if owner, ok := owners[out]; ok {
			b.fail(report, files[i], fmt.Errorf("%w: %s is also written by %s", ErrDuplicatePermalink, res.page.Permalink(), owner))
			continue
		}
		owners[out] = files[i]
		pages = append(pages, res.page)
		if res.page.IsPost() {
			report.Posts++
		} else {
			report.Pages++
		}
	}
	return pages, report, nil
}

// reservedPath reports whether a static page would land under a term page
// directory, where the build writes one page per category and tag.
func reservedPath(p *Page) (TermKind, bool) {
	if p.IsPost() {
		return "", false
	}
	for _, kind := range []TermKind{Categories, Tags} {
		prefix := "/" + string(kind) + "/"
		if strings.HasPrefix(p.Permalink(), prefix) && p.Permalink() != prefix {
			return kind, true
		}
	}
	return "", false
}

// sourceFiles lists Markdown sources relative to the source directory, in
// slash form and sorted. Hidden files and directories are skipped.
func (b *Builder) sourceFiles() ([]string, error) {
	root := b.cfg.SourceDir
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isMarkdown(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(files)
	return files, nil
}

func isMarkdown(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func (b *Builder) loadFile(rel string) (*Page, error) {
	data, err := os.ReadFile(filepath.Join(b.cfg.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	meta, body, err := frontmatter.Parse(data)
	if err != nil {
		return nil, err
	}
	return NewPage(rel, KindFor(rel, b.cfg.PostsDirs), meta, body)
}

// Build runs a full build: load, index, render and write every page, the
// home page, term pages, 404.html, feed.xml and sitemap.xml, then export
// the index to the site database and copy assets. The output directory is
// emptied first.
//
// A non-nil error means the build stopped. Per-file failures do not stop it;
// they are in the report, and Report.Err is non-nil.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	out := b.cfg.OutputDir
	if err := checkOutputDir(out, b.cfg.SourceDir); err != nil {
		return nil, err
	}

	pages, report, err := b.Load(ctx)
	if err != nil {
		return report, err
	}
	index := BuildIndex(pages)

	if err := os.RemoveAll(out); err != nil {
		return report, fmt.Errorf("clean output: %w", err)
	}
	if err := os.MkdirAll(out, 0o755); err != nil {
		return report, fmt.Errorf("create output: %w", err)
	}

	if err := b.writePages(ctx, report, pages, index); err != nil {
		return report, err
	}
	if err := b.writeSitePages(report, index); err != nil {
		return report, err
	}

	if !b.cfg.SkipDatabase {
		if err := b.exportIndex(ctx, index); err != nil {
			return report, fmt.Errorf("export %s: %w", b.cfg.DatabasePath, err)
		}
	}

	assets, err := CopyAssets(b.cfg.AssetsDir, filepath.Join(out, filepath.Base(b.cfg.AssetsDir)), b.cfg.MaxImageWidth)
	report.Assets = assets
	for _, e := range multierr.Errors(err) {
		var fe *FileError
		if errors.As(e, &fe) {
			b.fail(report, fe.Path, fe.Err)
			continue
		}
		return report, fmt.Errorf("copy assets: %w", e)
	}

	report.Duration = time.Since(start)
	b.log.Info("build finished",
		logger.Int("posts", report.Posts),
		logger.Int("pages", report.Pages),
		logger.Int("written", report.Written),
		logger.Int("assets", report.Assets.Copied),
		logger.Int("errors", len(report.Errors)),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

// writePages renders posts and static pages on the worker pool. Each worker
// fills only its own slot; failures are reported in source order.
func (b *Builder) writePages(ctx context.Context, report *Report, pages []*Page, index *SiteIndex) error {
	errs := make([]error, len(pages))
	g := new(errgroup.Group)
	g.SetLimit(b.cfg.Workers)
	for i, p := range pages {
		if ctx.Err() != nil {
			break
		}
		i, p := i, p
		g.Go(func() error {
			data, err := b.renderer.Render(p, index)
			if err == nil {
				err = b.writeOutput(p.OutputPath(), data)
			}
			errs[i] = err
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}
	for i, err := range errs {
		if err != nil {
			b.fail(report, pages[i].Path(), err)
			continue
		}
		report.Written++
	}
	return nil
}

// writeSitePages writes the documents that are derived from the index as a
// whole rather than from one source file.
func (b *Builder) writeSitePages(report *Report, index *SiteIndex) error {
	home, err := b.renderer.RenderIndex(index)
	if err != nil {
		return fmt.Errorf("render index: %w", err)
	}
	if err := b.writeOutput("index.html", home); err != nil {
		return err
	}
	report.Written++

	for _, kind := range []TermKind{Categories, Tags} {
		for _, t := range index.Terms(kind) {
			data, err := b.renderer.RenderTerm(kind, t, index)
			if err != nil {
				return fmt.Errorf("render %s %q: %w", kind, t.Name, err)
			}
			if err := b.writeOutput(strings.TrimPrefix(termPath(kind, t), "/")+"index.html", data); err != nil {
				return err
			}
			report.Written++
		}
	}

	notFound, err := b.renderer.RenderNotFound(index)
	if err != nil {
		return fmt.Errorf("render 404: %w", err)
	}
	if err := b.writeOutput("404.html", notFound); err != nil {
		return err
	}
	report.Written++

	if err := b.writeWith("feed.xml", func(f *os.File) error { return WriteFeed(f, b.cfg, index) }); err != nil {
		return err
	}
	if err := b.writeWith("sitemap.xml", func(f *os.File) error { return WriteSitemap(f, b.cfg, index) }); err != nil {
		return err
	}
	report.Written += 2
	return nil
}

func (b *Builder) exportIndex(ctx context.Context, index *SiteIndex) error {
	store, err := NewStore(b.cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.ReplaceIndex(ctx, index)
}

// writeOutput writes data to rel, a slash-separated path inside the output
// directory.
func (b *Builder) writeOutput(rel string, data []byte) error {
	dst := filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0o644)
}

func (b *Builder) writeWith(rel string, write func(*os.File) error) (err error) {
	f, err := os.Create(filepath.Join(b.cfg.OutputDir, filepath.FromSlash(rel)))
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// checkOutputDir refuses output directories that emptying would be
// destructive for: the filesystem root, the working directory, or a
// directory containing the sources.
func checkOutputDir(out, src string) error {
	absOut, err := filepath.Abs(out)
	if err != nil {
		return err
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	if filepath.Dir(absOut) == absOut {
		return fmt.Errorf("refusing to use %s as the output directory", out)
	}
	if wd, err := os.Getwd(); err == nil && wd == absOut {
		return fmt.Errorf("refusing to use the working directory %s as the output directory", out)
	}
	rel, err := filepath.Rel(absOut, absSrc)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output directory %s contains the source directory %s", out, src)
	}
	return nil
}
