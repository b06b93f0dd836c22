package pubsite

import (
	"runtime"

	"github.com/eringen/pubsite/logger"
)

// SiteConfig holds all configuration for a build.
type SiteConfig struct {
	Name        string `mapstructure:"name"`        // Site name (default "Blog")
	URL         string `mapstructure:"url"`         // Canonical URL (default "http://localhost:4000")
	Description string `mapstructure:"description"` // Site description for the feed and meta tags
	Author      string `mapstructure:"author"`      // Author name for JSON-LD

	SourceDir string   `mapstructure:"source_dir"` // Content root (default "content")
	OutputDir string   `mapstructure:"output_dir"` // Generated site (default "public")
	PostsDirs []string `mapstructure:"posts_dirs"` // Top-level content dirs holding posts (default ["_posts"])
	AssetsDir string   `mapstructure:"assets_dir"` // Copied into the output under its base name (default "assets")

	DatabasePath string `mapstructure:"database_path"` // SQLite export of the index (default "site.db")
	SkipDatabase bool   `mapstructure:"skip_database"`

	Workers       int    `mapstructure:"workers"`         // Concurrent loads and renders (default NumCPU)
	DateFormat    string `mapstructure:"date_format"`     // Display layout (default "Jan 2, 2006")
	RelatedPosts  int    `mapstructure:"related_posts"`   // Related posts shown under a post (default 3)
	FeedItems     int    `mapstructure:"feed_items"`      // Posts in feed.xml (default 20)
	MaxImageWidth int    `mapstructure:"max_image_width"` // Wider JPEG/PNG assets are downscaled (default 1600)

	Addr string `mapstructure:"addr"` // Preview server listen address (default ":4000")
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:4000"
	}
	if c.SourceDir == "" {
		c.SourceDir = "content"
	}
	if c.OutputDir == "" {
		c.OutputDir = "public"
	}
	if len(c.PostsDirs) == 0 {
		c.PostsDirs = []string{"_posts"}
	}
	if c.AssetsDir == "" {
		c.AssetsDir = "assets"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "site.db"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.DateFormat == "" {
		c.DateFormat = "Jan 2, 2006"
	}
	if c.RelatedPosts == 0 {
		c.RelatedPosts = 3
	}
	if c.FeedItems == 0 {
		c.FeedItems = 20
	}
	if c.MaxImageWidth == 0 {
		c.MaxImageWidth = 1600
	}
	if c.Addr == "" {
		c.Addr = ":4000"
	}
}

// WithDefaults returns a copy of c with unset fields filled in.
func (c SiteConfig) WithDefaults() SiteConfig {
	c.setDefaults()
	return c
}

// Option configures additional Builder behavior.
type Option func(*Builder)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l logger.Logger) Option {
	return func(b *Builder) {
		b.log = l
	}
}

// WithRenderer replaces the default renderer.
func WithRenderer(r *Renderer) Option {
	return func(b *Builder) {
		b.renderer = r
	}
}
