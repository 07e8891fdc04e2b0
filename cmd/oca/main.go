// Command oca is the Offline Code Assistant: a dispatch front end over a
// locally running Ollama daemon. The bare command is the dispatch surface
// (-r/-f/-l/-e/-m/-a); subcommands cover the interactive chat, model
// listing, and conversation history.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"oca/internal/analyzer"
	"oca/internal/config"
	"oca/internal/dispatch"
	"oca/internal/engine"
	"oca/internal/llm"
	"oca/internal/render"
)

var (
	// Global flags (subcommands only; the root surface owns its own tokens)
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger

	// exitCode carries the dispatch result out of cobra
	exitCode int
)

var rootCmd = &cobra.Command{
	Use:   "oca",
	Short: "oca - Offline Code Assistant",
	Long: `oca is an offline coding assistant backed by a local Ollama daemon.

Invoked directly it dispatches a single analysis:

  oca -r myproject -a                   analyze the whole project
  oca -r myproject -e "segfault at 0"   explain an error
  oca -r myproject -f src/main.c -l 42  inspect a file around a line

Run 'oca chat' for the interactive assistant.`,
	// The dispatch surface defines its own flag grammar; cobra must not
	// consume the tokens.
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		exitCode = runDispatch(args)
		return nil
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose || os.Getenv("OCA_DEBUG") != "" {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runDispatch executes one dispatch over the raw token list.
func runDispatch(tokens []string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oca: %v\n", err)
		return 1
	}

	baseDir, err := cfg.ResolveBaseDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "oca: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d := &dispatch.Dispatcher{
		BaseDir:      baseDir,
		Collaborator: newCollaborator(cfg),
		Out:          os.Stdout,
		Err:          os.Stderr,
		Logger:       logger,
	}
	return d.Run(ctx, tokens)
}

// newCollaborator picks the analysis backend: an external command when one
// is configured, the built-in engine otherwise.
func newCollaborator(cfg *config.Config) dispatch.Collaborator {
	if cfg.Backend.Command != "" {
		return &dispatch.ExecCollaborator{Command: cfg.Backend.Command, Args: cfg.Backend.Args}
	}
	manager := llm.NewManager(cfg, logger)
	an := analyzer.New(cfg, logger)
	r := render.New(os.Stdout)
	return engine.New(an, manager, r, logger)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Config file path")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "oca: %v\n", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}
