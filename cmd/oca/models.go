package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oca/internal/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List configured models and their Ollama availability",
	RunE:  runModels,
}

func runModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := llm.NewClient(cfg.Ollama.Host, cfg.OllamaTimeout())
	installed := make(map[string]bool)
	tags, err := client.ListModels(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not reach ollama at %s: %v\n", cfg.Ollama.Host, err)
	}
	for _, m := range tags {
		installed[m.Name] = true
		if base, _, found := strings.Cut(m.Name, ":"); found {
			installed[base] = true
		}
	}

	names := make([]string, 0, len(cfg.Models.Available))
	for _, m := range cfg.Models.Available {
		names = append(names, m.Name)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tDEFAULT\tINSTALLED")
	for _, name := range names {
		def := ""
		if name == cfg.Models.Default {
			def = "*"
		}
		status := "no"
		if installed[name] {
			status = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, def, status)
	}
	return w.Flush()
}
