package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lapas/keepengine/internal/cleanup"
	"github.com/lapas/keepengine/internal/config"
	"github.com/lapas/keepengine/internal/fsops"
	"github.com/lapas/keepengine/internal/rules"
	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Clean command flags
	dryRun  bool
	verbose bool
	workers int

	// Graph command flags
	graphOutput string

	// logOutput receives all log records. Command output goes to stdout.
	logOutput io.Writer = os.Stderr
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "keepengine",
	Short: "Clean diskless client home directories according to a rule file",
	Long: `keepengine prunes the shared base home template and per-user overlay homes of
diskless LAPAS clients.

Every line of the rule file assigns a keep or delete action for both passes to a
path pattern. The base pass cleans the template every client starts from, the
user pass cleans a user's overlay after their session ended.`,
	SilenceUsage: true,
}

var cleanCmd = &cobra.Command{
	Use:   "clean [MODE RULES_FILE FOLDER]",
	Short: "Delete everything the rules do not keep below FOLDER",
	Long: `Clean walks FOLDER depth first and applies the action the rule file assigns to
every entry for the given MODE (base or user). Directories whose contents were
entirely removed are removed as well when their own action is delete.

MODE, RULES_FILE and FOLDER may instead be set in the configuration file;
arguments given on the command line take precedence.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 3 {
			return fmt.Errorf("accepts 0 or 3 arg(s), received %d", len(args))
		}
		return nil
	},
	RunE: runClean,
}

var queryCmd = &cobra.Command{
	Use:   "query RULES_FILE PATH...",
	Short: "Show the actions the rules resolve for paths",
	Long: `Query resolves every PATH (relative to the cleaned folder) against the rule file
and prints the base and user action together with the descend flag.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runQuery,
}

var graphCmd = &cobra.Command{
	Use:   "graph RULES_FILE",
	Short: "Export the decision graph in Graphviz DOT format",
	Args:  cobra.ExactArgs(1),
	RunE:  runGraph,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "keepengine %s\n", version)
		_, _ = fmt.Fprintf(out, "  commit: %s\n", commit)
		_, _ = fmt.Fprintf(out, "  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/keepengine/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Clean command flags
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without deleting anything")
	cleanCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every decision (same as --log-level debug)")
	cleanCmd.Flags().IntVar(&workers, "workers", 1, "number of top-level entries cleaned concurrently")

	// Graph command flags
	graphCmd.Flags().StringVarP(&graphOutput, "output", "o", "", "write the graph to this file instead of stdout")

	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(versionCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := applyCleanArgs(cmd, cfg, args); err != nil {
		return err
	}
	if err := cfg.ValidateClean(); err != nil {
		return fmt.Errorf("invalid clean options: %w", err)
	}

	graph, err := rules.LoadFile(cfg.RulesFile)
	if err != nil {
		return err
	}
	logger.Debug("rules loaded", "path", cfg.RulesFile, "rules", graph.Len())

	engine := cleanup.NewEngine(graph, fsops.NewRealFS(), logger, cleanup.Options{
		Mode:    cfg.Clean.Mode,
		DryRun:  cfg.Clean.DryRun,
		Workers: cfg.Clean.Workers,
	})

	report, err := engine.Run(cfg.Clean.Root)
	if err != nil {
		logger.Error("cleanup failed", "error", err)
		return err
	}

	if err := report.Err(); err != nil {
		logger.Error("cleanup finished with errors", "error", err)
		return fmt.Errorf("cleanup finished with %d failures", len(report.Failures))
	}
	return nil
}

// applyCleanArgs overrides the configuration with positional arguments and
// explicitly set flags.
func applyCleanArgs(cmd *cobra.Command, cfg *config.Config, args []string) error {
	if len(args) == 3 {
		mode, err := rules.ParseMode(args[0])
		if err != nil {
			return err
		}
		root, err := filepath.Abs(args[2])
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", args[2], err)
		}

		cfg.Clean.Mode = mode
		cfg.RulesFile = args[1]
		cfg.Clean.Root = root
	}

	if cmd.Flags().Changed("dry-run") {
		cfg.Clean.DryRun = dryRun
	}
	if cmd.Flags().Changed("workers") {
		cfg.Clean.Workers = workers
	}
	return nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	graph, err := rules.LoadFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, p := range args[1:] {
		printDecision(out, p, graph.GetAction(p))
	}
	return nil
}

func runGraph(cmd *cobra.Command, args []string) error {
	graph, err := rules.LoadFile(args[0])
	if err != nil {
		return err
	}

	if graphOutput == "" {
		return graph.WriteDot(cmd.OutOrStdout())
	}

	f, err := os.Create(graphOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", graphOutput, err)
	}
	if err := graph.WriteDot(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write graph: %w", err)
	}
	return f.Close()
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	// Create handler based on format
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(logOutput, opts)
	} else {
		handler = slog.NewTextHandler(logOutput, opts)
	}

	return slog.New(handler)
}

func loadConfig(logger *slog.Logger) (*config.Config, error) {
	// An explicitly named config file must exist, the default one is optional.
	if cfgFile != "" {
		logger.Info("loading configuration", "path", cfgFile)
		return config.Load(cfgFile)
	}

	configPath := config.DefaultPath()
	if configPath == "" {
		return config.LoadOptional("")
	}

	logger.Debug("loading configuration", "path", configPath)
	cfg, err := config.LoadOptional(configPath)
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"rules_file", cfg.RulesFile,
		"mode", cfg.Clean.Mode,
		"root", cfg.Clean.Root,
		"workers", cfg.Clean.Workers)

	return cfg, nil
}
