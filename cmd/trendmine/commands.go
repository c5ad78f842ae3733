package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"trendmine/internal/ideas"
	"trendmine/internal/orchestrator"
	"trendmine/internal/signals"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch trend signals and list them",
	RunE:  runRefresh,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Fetch signals and generate business ideas from them",
	Long: `Fetch signals with the given parameters, then generate ideas.

The result is cached and can be shown again with 'trendmine show'.`,
	RunE: runGenerate,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached ideas from the last generation",
	RunE:  runShow,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the cached ideas",
	RunE:  runClear,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	e, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.release()

	e.applyFlags()
	if err := e.orch.Refresh(cmd.Context()); err != nil {
		return silent(err)
	}

	printSignals(cmd.OutOrStdout(), e.orch.Snapshot().Signals)
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := validateFlags(); err != nil {
		return err
	}
	e, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.release()

	e.applyFlags()
	if err := e.orch.Generate(cmd.Context()); err != nil {
		return silent(err)
	}

	printIdeas(cmd.OutOrStdout(), e.orch.Snapshot())
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.release()

	snap := e.orch.Snapshot()
	if snap.State != orchestrator.StateDone {
		fmt.Fprintln(cmd.OutOrStdout(), "No cached ideas. Run 'trendmine generate' first.")
		return nil
	}
	printIdeas(cmd.OutOrStdout(), snap)
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.release()

	if err := e.orch.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Cached ideas cleared.")
	return nil
}

// errReported marks a failure the notifier has already shown.
var errReported = errors.New("operation failed")

func silent(err error) error {
	return fmt.Errorf("%w: %v", errReported, err)
}

func printSignals(w io.Writer, in []signals.TrendSignal) {
	if len(in) == 0 {
		fmt.Fprintln(w, "No signals.")
		return
	}
	for _, s := range in {
		fmt.Fprintf(w, "[%s] %s\n", s.Platform, firstLine(s.Text))
	}
}

func printIdeas(w io.Writer, snap orchestrator.Snapshot) {
	fmt.Fprintf(w, "%d ideas, generated %s\n", len(snap.Ideas), snap.GeneratedAt.Local().Format("2006-01-02 15:04"))
	for _, warn := range snap.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
	for i, idea := range snap.Ideas {
		fmt.Fprintln(w)
		printIdea(w, i+1, idea)
	}
}

func printIdea(w io.Writer, n int, idea ideas.BusinessIdea) {
	fmt.Fprintf(w, "%d. %s  (%d%%, %s)\n", n, idea.Title, idea.ConfidenceScore, idea.Theme)
	fmt.Fprintf(w, "   Problem:      %s\n", idea.Problem)
	fmt.Fprintf(w, "   Who it helps: %s\n", idea.WhoItHelps)
	fmt.Fprintf(w, "   Why now:      %s\n", idea.WhyNow)
	if len(idea.MVPPlan) > 0 {
		fmt.Fprintln(w, "   MVP plan:")
		for _, step := range idea.MVPPlan {
			fmt.Fprintf(w, "     - %s\n", step)
		}
	}
	if len(idea.Platforms) > 0 {
		names := make([]string, len(idea.Platforms))
		for i, p := range idea.Platforms {
			names[i] = string(p)
		}
		fmt.Fprintf(w, "   Platforms:    %s\n", strings.Join(names, ", "))
	}
	if len(idea.TopKeywords) > 0 {
		fmt.Fprintf(w, "   Keywords:     %s\n", strings.Join(idea.TopKeywords, ", "))
	}
	for _, ev := range idea.Evidence {
		fmt.Fprintf(w, "   > %s\n", ev)
	}
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
