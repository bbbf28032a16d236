package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/internal/config"
	"github.com/matzehuels/molview/pkg/buildinfo"
	"github.com/matzehuels/molview/pkg/cache"
	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "molview"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
	levelSet   bool // an explicit level overrides log.level from config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. The configured log.level is
// ignored afterwards.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.levelSet = true
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "molview renders molecules as shaded 2-D drawings",
		Long:         `molview reads structure files, rotates molecules in 3-D and draws them as depth-sorted SVG images of shaded atoms and bonds.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./molview.toml or ~/.config/molview/molview.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.dbCommand())
	root.AddCommand(c.elementsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// config loads the configuration once per process.
func (c *CLI) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	if !c.levelSet {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	ca, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	tbl, err := loadElements(cfg)
	if err != nil {
		ca.Close()
		return nil, err
	}
	var keyer cache.Keyer
	if cfg.Cache.Scope != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Scope+":")
	}
	return pipeline.NewRunner(ca, keyer, tbl, c.Logger), nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB,
			cache.WithKeyPrefix(cfg.Cache.KeyPrefix))
	default:
		return cache.NewFileCache(cfg.Cache.Dir)
	}
}

// loadElements returns the built-in table with the configured user table
// merged over it.
func loadElements(cfg *config.Config) (*elements.Table, error) {
	tbl := elements.Default()
	if cfg.Elements.Path == "" {
		return tbl, nil
	}
	user, err := elements.Load(cfg.Elements.Path)
	if err != nil {
		return nil, err
	}
	tbl.Merge(user)
	return tbl, nil
}

// openStore opens the configured molecule store and seeds its element table
// with the built-in elements it is missing.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.Store.StoreConfig())
	if err != nil {
		return nil, err
	}
	tbl, err := loadElements(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	n, err := store.Seed(ctx, st, tbl)
	if err != nil {
		st.Close()
		return nil, err
	}
	if n > 0 {
		c.Logger.Debug("seeded element table", "added", n)
	}
	return st, nil
}

// =============================================================================
// Input Helpers
// =============================================================================

// readInput reads a structure file, or stdin when path is "-".
func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// nameFromPath derives a molecule name from a file name.
// Stdin yields "" so the title line is used.
func nameFromPath(path string) string {
	if path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
