package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oca/internal/analyzer"
	"oca/internal/config"
	"oca/internal/dispatch"
	"oca/internal/engine"
	"oca/internal/generator"
	"oca/internal/history"
	"oca/internal/llm"
	"oca/internal/render"
)

var (
	chatProject     string
	chatModel       string
	chatSaveHistory bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive assistant",
	Long: `Starts an interactive session against the local Ollama daemon.

Commands inside the session:
  analyze <file>       analyze a file in the current project
  repo <folder>        analyze a folder from the parent directory
  error <text>         explain an error message
  generate <desc>      generate code from a description
  model <name>         switch the active model
  models               list configured models
  save_history [name]  enable history saving or rename the transcript
  help                 show this help
  exit, quit           leave the session

Anything else is sent to the model as a direct query.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatProject, "project", "p", ".", "Project path")
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "Model to use")
	chatCmd.Flags().BoolVarP(&chatSaveHistory, "save-history", "s", false, "Save the conversation transcript")
}

// chatSession holds the state of one interactive run.
type chatSession struct {
	cfg       *config.Config
	llm       *llm.Manager
	analyzer  *analyzer.Analyzer
	generator *generator.Generator
	engine    *engine.Engine
	render    *render.Renderer
	log       *zap.Logger

	projectPath string
	parentDir   string

	saving     bool
	turns      []history.Turn
	transcript *history.Transcript
	store      *history.Store
	convID     string
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if chatModel != "" {
		cfg.Models.Default = chatModel
	}

	projectPath, err := filepath.Abs(chatProject)
	if err != nil {
		return fmt.Errorf("resolving project path: %w", err)
	}

	r := render.New(os.Stdout)
	manager := llm.NewManager(cfg, logger)
	an := analyzer.New(cfg, logger)

	s := &chatSession{
		cfg:         cfg,
		llm:         manager,
		analyzer:    an,
		generator:   generator.New(manager, logger),
		engine:      engine.New(an, manager, r, logger),
		render:      r,
		log:         logger,
		projectPath: projectPath,
		parentDir:   filepath.Dir(projectPath),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r.Panel("Offline Code Assistant", "Your offline coding assistant")
	r.Printf("Using model: %s\n", manager.CurrentModel())

	if missing, err := manager.VerifyModels(ctx); err != nil {
		r.Printf("Warning: could not reach ollama: %v\nMake sure Ollama is installed and running.\n", err)
	} else if len(missing) > 0 {
		sort.Strings(missing)
		r.Printf("Warning: models not installed in ollama: %s\nPull them with 'ollama pull <model>'.\n", strings.Join(missing, ", "))
	}

	info, err := an.AnalyzeProject(projectPath)
	if err != nil {
		return err
	}
	r.Printf("Found %d files in project %s\n", info.FileCount, filepath.Base(projectPath))

	if chatSaveHistory || cfg.History.SaveByDefault {
		if err := s.enableSaving(""); err != nil {
			r.Printf("Warning: history saving unavailable: %v\n", err)
		}
	}
	defer s.close()

	return s.loop(ctx)
}

func (s *chatSession) loop(ctx context.Context) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		s.render.Printf("\n[oca] > ")
		if !scanner.Scan() {
			s.render.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			s.render.Println("Exiting Offline Code Assistant. Goodbye!")
			return nil
		}

		s.recordTurn("user", input)
		if err := s.handle(ctx, input); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.render.Printf("Error: %v\n", err)
		}
	}
}

func (s *chatSession) handle(ctx context.Context, input string) error {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		s.showHelp()
		return nil
	case "analyze":
		if rest == "" {
			return fmt.Errorf("usage: analyze <file>")
		}
		return s.invokeEngine(ctx, []string{"--project-path", s.projectPath, "--file", rest})
	case "repo":
		if rest == "" {
			return fmt.Errorf("usage: repo <folder>")
		}
		resolved, err := dispatch.Resolve(s.parentDir, rest)
		if err != nil {
			return err
		}
		return s.invokeEngine(ctx, []string{"--project-path", resolved.AbsolutePath, "--analyze"})
	case "error":
		if rest == "" {
			return fmt.Errorf("usage: error <text>")
		}
		return s.invokeEngine(ctx, []string{"--project-path", s.projectPath, "--error", rest})
	case "generate":
		if rest == "" {
			return fmt.Errorf("usage: generate <description>")
		}
		code, err := s.generator.Generate(ctx, rest, "")
		if err != nil {
			return err
		}
		s.render.ResultPanel("Generated Code", "```\n"+code+"\n```")
		s.recordTurn("assistant", code)
		return nil
	case "model":
		if rest == "" {
			return fmt.Errorf("usage: model <name>")
		}
		if !s.llm.SetModel(rest) {
			return fmt.Errorf("model %q is not configured (see 'models')", rest)
		}
		s.render.Printf("Using model: %s\n", rest)
		return nil
	case "models":
		names := s.llm.AvailableModels()
		sort.Strings(names)
		s.render.Panel("Configured Models", strings.Join(names, "\n"))
		return nil
	case "save_history":
		return s.handleSaveHistory(rest)
	}

	// Anything else goes straight to the model.
	response, err := s.llm.Query(ctx, input, nil)
	if err != nil {
		return err
	}
	s.render.ResultPanel("", response)
	s.recordTurn("assistant", response)
	return nil
}

// invokeEngine routes a session command through the same backend the
// dispatch surface uses, and records its outcome as an assistant turn.
func (s *chatSession) invokeEngine(ctx context.Context, argv []string) error {
	if _, err := s.engine.Invoke(ctx, argv); err != nil {
		return err
	}
	s.recordTurn("assistant", fmt.Sprintf("(ran %s)", strings.Join(argv, " ")))
	return nil
}

func (s *chatSession) handleSaveHistory(name string) error {
	if !s.saving {
		s.render.Println("Enabling conversation history saving...")
		return s.enableSaving(name)
	}
	if name == "" {
		s.render.Printf("Already saving to: %s\n", s.transcript.Path)
		return nil
	}
	// Rename: point the transcript at a new file and rewrite what we have.
	s.transcript.Path = filepath.Join(s.cfg.Paths.HistoryDir, name+".md")
	s.render.Printf("Now saving conversation to: %s\n", s.transcript.Path)
	return s.transcript.Save(s.turns)
}

func (s *chatSession) enableSaving(name string) error {
	store, err := history.Open(s.cfg.Paths.DatabasePath)
	if err != nil {
		return err
	}

	t := history.NewTranscript(s.cfg.Paths.HistoryDir, s.llm.CurrentModel(), filepath.Base(s.projectPath))
	if name != "" {
		t.Path = filepath.Join(s.cfg.Paths.HistoryDir, name+".md")
	}

	convID, err := store.CreateConversation(s.llm.CurrentModel(), filepath.Base(s.projectPath), t.Path)
	if err != nil {
		store.Close()
		return err
	}

	s.store = store
	s.transcript = t
	s.convID = convID
	s.saving = true
	s.render.Printf("Saving conversation to: %s\n", t.Path)

	// Catch up on turns taken before saving was enabled.
	for _, turn := range s.turns {
		_ = s.store.AddTurn(s.convID, turn.Number, turn.Role, turn.Content)
	}
	if len(s.turns) > 0 {
		return t.Save(s.turns)
	}
	return nil
}

func (s *chatSession) recordTurn(role, content string) {
	turn := history.Turn{Number: len(s.turns) + 1, Role: role, Content: content}
	s.turns = append(s.turns, turn)
	if !s.saving {
		return
	}
	if err := s.store.AddTurn(s.convID, turn.Number, turn.Role, turn.Content); err != nil {
		s.log.Warn("failed to index turn", zap.Error(err))
	}
	if err := s.transcript.Save(s.turns); err != nil {
		s.log.Warn("failed to save transcript", zap.Error(err))
	}
}

func (s *chatSession) close() {
	if s.store != nil {
		_ = s.store.Close()
	}
}

func (s *chatSession) showHelp() {
	s.render.Panel("Help", `Commands:

analyze <file>       analyze a file in the current project
repo <folder>        analyze a folder from the parent directory
error <text>         explain an error message
generate <desc>      generate code from a description
model <name>         switch the active model
models               list configured models
save_history [name]  enable history saving or rename the transcript
help                 show this help
exit, quit           leave the session

Any other input is sent to the model as a direct query.`)
}
