package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.Duologue/internal/config"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/persona"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/session"
	"github.com/LISSConsulting/LISSTech.Duologue/internal/store"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the conversation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			pack, _ := cmd.Flags().GetString("pack")
			maxTopics, _ := cmd.Flags().GetInt("max-topics")
			noTUI, _ := cmd.Flags().GetBool("no-tui")
			return executeRun(cfgPath, pack, maxTopics, noTUI)
		},
	}
	cmd.Flags().String("config", "", "path to duologue.toml (default: walk up from cwd)")
	cmd.Flags().String("pack", "", "override the personality pack")
	cmd.Flags().Int("max-topics", 0, "stop after N completed topics (0 = run forever)")
	cmd.Flags().Bool("no-tui", false, "plain stdout output instead of the dashboard")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current in-progress session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus()
		},
	}
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List persisted topic sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistory()
		},
	}
}

func packsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "packs",
		Short: "List the built-in personality packs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showPacks()
		},
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create duologue.toml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path, err := config.InitFile(dir)
			if err != nil {
				return err
			}
			fmt.Printf("Created %s\n", path)
			return nil
		},
	}
}

// showStatus prints the current in-progress session, if any.
func showStatus() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	st, err := store.NewFileStore(cfg.Store.Dir, zerolog.Nop())
	if err != nil {
		return err
	}

	doc, err := st.LoadCurrent()
	if err != nil {
		return err
	}
	if doc == nil {
		fmt.Println("No conversation in progress. Run 'duologue run' to start one.")
		return nil
	}

	fmt.Println("Duologue Status")
	fmt.Println("───────────────")
	fmt.Printf("  %-18s %s\n", "Topic:", doc.Topic)
	fmt.Printf("  %-18s %d\n", "Messages:", len(doc.Messages))
	fmt.Printf("  %-18s %d\n", "Evolution stage:", doc.EvolutionStage)
	fmt.Printf("  %-18s %s\n", "Status:", doc.Status)
	if last := len(doc.Messages); last > 0 {
		msg := doc.Messages[last-1]
		fmt.Printf("  %-18s [%s] %s: %s\n", "Last message:", msg.Timestamp, msg.Role, truncate(msg.Content, 60))
	}
	return nil
}

// showHistory prints a summary line per persisted session, newest first.
func showHistory() error {
	cfg, err := config.Load("")
	if err != nil {
		return err
	}

	st, err := store.NewFileStore(cfg.Store.Dir, zerolog.Nop())
	if err != nil {
		return err
	}

	sessions, err := st.List()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found. Run 'duologue run' to start chatting.")
		return nil
	}

	fmt.Println("Sessions")
	fmt.Println("────────")
	for _, s := range sessions {
		marker := "✅"
		if s.Status == session.StatusInProgress {
			marker = "…"
		}
		fmt.Printf("  %s  %s  %-40s  %d messages\n", marker, s.Date, truncate(s.Topic, 40), s.MessageCount)
	}
	return nil
}

// showPacks prints each built-in pack with its two personas.
func showPacks() error {
	fmt.Println("Personality packs")
	fmt.Println("─────────────────")
	for _, name := range persona.BuiltinNames() {
		pack, err := persona.Builtin(name)
		if err != nil {
			return err
		}
		fmt.Printf("  %-12s %s vs %s\n", name, pack.First.ID, pack.Second.ID)
	}
	return nil
}

// truncate shortens s to max runes with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
