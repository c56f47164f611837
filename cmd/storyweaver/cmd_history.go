package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/storyweaver/internal/state"
	"github.com/user/storyweaver/internal/types"
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyRmCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past generations",
}

func historyStore() *state.HistoryStore {
	cfg := loadConfig()
	return state.NewHistoryStore(filepath.Join(cfg.DataDir, "history.json"))
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored generations, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := historyStore().List()
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("No stored generations.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(os.Stdout, "%s  %s  %s\n",
				e.ID,
				e.Timestamp.Format("2006-01-02 15:04"),
				truncate(e.Story, 60))
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a stored story with its sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := historyStore().List()
		if err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		for _, e := range entries {
			if e.ID != types.EntryID(args[0]) {
				continue
			}
			fmt.Println(e.Story)
			if e.Prompt != "" {
				fmt.Printf("\nPrompt: %s\n", e.Prompt)
			}
			if e.ImageRef != "" {
				fmt.Printf("Image: %s\n", e.ImageRef)
			}
			if len(e.Sources) > 0 {
				fmt.Println("\nSources:")
				for _, s := range e.Sources {
					title := s.Title
					if title == "" {
						title = s.URI
					}
					fmt.Printf("  - %s (%s)\n", title, s.URI)
				}
			}
			return nil
		}
		return fmt.Errorf("no entry with id %s", args[0])
	},
}

var historyRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a stored generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := historyStore().Remove(types.EntryID(args[0])); err != nil {
			return fmt.Errorf("remove entry: %w", err)
		}
		return nil
	},
}

// truncate shortens s for single-line display.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
