package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"oca/internal/history"
	"oca/internal/render"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved conversations",
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a saved conversation",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of conversations to list")
	historyCmd.AddCommand(historyShowCmd)
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	convs, err := store.ListConversations(historyLimit)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Println("No saved conversations.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tMODEL\tPROJECT")
	for _, c := range convs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.StartedAt.Format("2006-01-02 15:04"), c.Model, c.Project)
	}
	return w.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.Paths.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	conv, err := store.GetConversation(args[0])
	if err != nil {
		return err
	}
	turns, err := store.GetTurns(conv.ID)
	if err != nil {
		return err
	}

	r := render.New(os.Stdout)
	r.Printf("Conversation %s (%s, project %s)\n\n", conv.ID, conv.Model, conv.Project)
	for _, t := range turns {
		if t.Role == "user" {
			r.Panel("User", t.Content)
		} else {
			r.ResultPanel("Assistant", t.Content)
		}
	}
	return nil
}
