package main

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/pubsite"
	"github.com/eringen/pubsite/logger"
)

// app is the state shared by all subcommands once configuration is loaded.
type app struct {
	cfgFile string
	cfg     pubsite.SiteConfig
	log     logger.Logger
}

// fileConfig is the shape of config.yaml.
type fileConfig struct {
	pubsite.SiteConfig `mapstructure:",squash"`
	Log                logger.Config `mapstructure:"log"`
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"source":     "source_dir",
	"output":     "output_dir",
	"workers":    "workers",
	"skip-db":    "skip_database",
	"addr":       "addr",
	"log-level":  "log.level",
	"log-format": "log.format",
}

func newRootCmd() *cobra.Command {
	a := &app{log: logger.NewNop()}
	root := &cobra.Command{
		Use:   "pubsite",
		Short: "Build a static site from Markdown posts and pages",
		Long: `pubsite reads Markdown files with YAML front matter, validates them,
and writes a static HTML site with term pages, a feed and a sitemap.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initialize(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.log.Sync()
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().String("log-format", "", "log format: console or json")

	root.AddCommand(a.buildCmd(), a.serveCmd(), a.newCmd(), a.listCmd(), versionCmd())
	return root
}

// initialize loads .env, config.yaml, PUBSITE_ environment variables and
// flags, in increasing order of precedence.
func (a *app) initialize(cmd *cobra.Command) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if a.cfgFile != "" {
		v.SetConfigFile(a.cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("PUBSITE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var fc fileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if used := v.ConfigFileUsed(); used != "" {
		resolvePaths(&fc.SiteConfig, filepath.Dir(used))
	}
	a.cfg = fc.SiteConfig.WithDefaults()

	log, err := logger.New(fc.Log)
	if err != nil {
		return err
	}
	a.log = log
	if used := v.ConfigFileUsed(); used != "" {
		a.log.Debug("using config file", logger.String("path", used))
	}
	return nil
}

// setDefaults registers every key so that environment variables are seen
// by Unmarshal even when config.yaml does not mention them.
func setDefaults(v *viper.Viper) {
	d := pubsite.SiteConfig{}.WithDefaults()
	v.SetDefault("name", d.Name)
	v.SetDefault("url", d.URL)
	v.SetDefault("description", d.Description)
	v.SetDefault("author", d.Author)
	v.SetDefault("source_dir", d.SourceDir)
	v.SetDefault("output_dir", d.OutputDir)
	v.SetDefault("posts_dirs", d.PostsDirs)
	v.SetDefault("assets_dir", d.AssetsDir)
	v.SetDefault("database_path", d.DatabasePath)
	v.SetDefault("skip_database", d.SkipDatabase)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("date_format", d.DateFormat)
	v.SetDefault("related_posts", d.RelatedPosts)
	v.SetDefault("feed_items", d.FeedItems)
	v.SetDefault("max_image_width", d.MaxImageWidth)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// resolvePaths makes relative paths in cfg relative to the directory of
// the config file rather than the working directory.
func resolvePaths(cfg *pubsite.SiteConfig, base string) {
	for _, p := range []*string{&cfg.SourceDir, &cfg.OutputDir, &cfg.AssetsDir, &cfg.DatabasePath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the pubsite version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pubsite %s\n", version)
		},
	}
}
