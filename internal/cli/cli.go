// Package cli implements the prodnet command-line interface.
//
// The commands load national input-output tables, build the production
// network and inspect or draw it:
//   - build: Sanitize a table and write the network as JSON
//   - sweep: Report network size across relevance thresholds
//   - focus: Show one industry's suppliers and customers
//   - render: Draw a network as DOT or SVG
//   - schema: Show or check the industry schema
//   - cache: Manage the network cache
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/prodnet/pkg/buildinfo"
	"github.com/matzehuels/prodnet/pkg/cache"
	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/iotable"
	"github.com/matzehuels/prodnet/pkg/observability"
	"github.com/matzehuels/prodnet/pkg/pipeline"
	"github.com/matzehuels/prodnet/pkg/schema"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "prodnet"

	// defaultOutput is the network file written by build.
	defaultOutput = "network.json"
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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// EnableDebug switches to debug logging and reports pipeline stages and
// cache traffic through the logger.
func (c *CLI) EnableDebug() {
	c.SetLogLevel(LogDebug)
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "prodnet builds production networks from input-output tables",
		Long:         `prodnet turns a national input-output use table into a production network: each industry's upstreamness plus its most important suppliers and customers.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	env, envErr := loadEnv()
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return envErr
	}

	root.AddCommand(c.buildCommand(env))
	root.AddCommand(c.sweepCommand(env))
	root.AddCommand(c.focusCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.schemaCommand(env))
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Flags
// =============================================================================

// tableFlags are the flags shared by commands that read a table.
type tableFlags struct {
	schema    string
	sheet     string
	threshold float64
	topK      int
	noCache   bool
	refresh   bool
	redis     string
}

func (f *tableFlags) register(cmd *cobra.Command, env Env) {
	cmd.Flags().StringVar(&f.schema, "schema", env.Schema, "schema TOML file (default: embedded BEA 2015 summary)")
	cmd.Flags().StringVar(&f.sheet, "sheet", "", "worksheet name for XLSX input (overrides schema)")
	cmd.Flags().Float64Var(&f.threshold, "threshold", env.Threshold, "minimum input share for a flow to count (0-1)")
	cmd.Flags().IntVar(&f.topK, "top-k", 0, "suppliers and customers kept per industry (default 5)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "rebuild even if a cached network exists")
	cmd.Flags().StringVar(&f.redis, "redis", env.RedisAddr, "Redis address for a shared cache (host:port or redis:// URL)")
}

func (f *tableFlags) options(logger *log.Logger) pipeline.Options {
	return pipeline.Options{
		Threshold: f.threshold,
		TopK:      f.topK,
		Refresh:   f.refresh,
		Logger:    logger,
	}
}

// loadInputs reads the schema and the table at path.
func (c *CLI) loadInputs(path string, f tableFlags) (*iotable.RawTable, *schema.Schema, error) {
	s, err := loadSchema(f.schema)
	if err != nil {
		return nil, nil, err
	}
	if err := errors.ValidateTableFilename(path); err != nil {
		return nil, nil, err
	}

	layout := s.Layout
	if f.sheet != "" {
		layout.Sheet = f.sheet
	}

	prog := newProgress(c.Logger)
	raw, err := iotable.Load(path, layout)
	if err != nil {
		return nil, nil, err
	}
	prog.done("Loaded " + filepath.Base(path))
	return raw, s, nil
}

func loadSchema(path string) (*schema.Schema, error) {
	if path == "" {
		return schema.Default(), nil
	}
	return schema.Load(path)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, f tableFlags) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, f.noCache, f.redis)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.Logger), nil
}

// newCache picks Redis when an address is given, else the file cache. A
// cache that cannot be opened degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if redisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr, Prefix: appName + ":"})
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", redisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "dir", dir, "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: PRODNET_CACHE_DIR if set, else the
// XDG standard (~/.cache/prodnet/).
func cacheDir() (string, error) {
	if dir := os.Getenv(envPrefix + "_CACHE_DIR"); dir != "" {
		return dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
