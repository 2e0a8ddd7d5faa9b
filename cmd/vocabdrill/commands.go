package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/vocabdrill/internal/compare"
	"github.com/conorfennell/vocabdrill/internal/config"
	"github.com/conorfennell/vocabdrill/internal/interval"
	"github.com/conorfennell/vocabdrill/internal/practice"
	"github.com/conorfennell/vocabdrill/internal/session"
	"github.com/conorfennell/vocabdrill/internal/speech"
	"github.com/conorfennell/vocabdrill/internal/terminal"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a profile with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path, created, err := config.WriteDefault(opts.dataDir, opts.profile)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(out, "Created settings: %s\n", path)
			} else {
				fmt.Fprintf(out, "Settings already exist: %s\n", path)
			}

			p, err := openProfile(cmd, opts)
			if err != nil {
				return err
			}
			return p.db.Close()
		},
	}
}

func newPracticeCmd(opts *globalOptions) *cobra.Command {
	var (
		noNew   bool
		mute    bool
		noClear bool
	)

	cmd := &cobra.Command{
		Use:     "practice",
		Aliases: []string{"today"},
		Short:   "Draw today's batch and drill every due batch",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProfile(cmd, opts)
			if err != nil {
				return err
			}
			defer p.db.Close()

			sched, err := p.scheduler(opts.dataDir)
			if err != nil {
				return err
			}
			strategy, err := compare.ParseStrategy(p.settings.ComparisonStrategy)
			if err != nil {
				return err
			}

			rl, err := terminal.NewReadline()
			if err != nil {
				return err
			}
			defer rl.Close()
			rl.OnInterrupt = func() {
				rl.Close()
				p.db.Close()
				fmt.Fprintln(os.Stderr, "Interrupted. Finished batches are saved.")
				os.Exit(130)
			}
			console := terminal.NewConsole(rl.Stdout(), rl, !noClear)

			var speaker session.Speaker = speech.Say{}
			if mute || p.settings.Voice == "" {
				speaker = speech.Mute{}
			}

			runner := session.NewRunner(console, speaker, p.db, session.Options{
				Strategy:   strategy,
				ShowHint:   p.settings.ShowHint,
				Voice:      p.settings.Voice,
				VoiceSpeed: p.settings.VoiceSpeed,
				MaxPasses:  p.settings.MaxPasses,
				SessionID:  practice.NewSessionID(),
			})

			summary, err := practice.Run(sched, runner, console, practice.Options{NoNewBatch: noNew})
			if err != nil {
				return err
			}
			fmt.Fprintf(rl.Stdout(), "Practised %d batch(es), %d retired.\n", summary.Batches, summary.Retired)
			return nil
		},
	}

	defaults := config.Default("")
	cmd.Flags().BoolVar(&noNew, "no-new", false, "Do not draw a new batch from the word book")
	cmd.Flags().BoolVar(&mute, "mute", false, "Do not read example sentences aloud")
	cmd.Flags().BoolVar(&noClear, "no-clear", false, "Do not clear the screen between prompts")
	cmd.Flags().Int("batch-size", defaults.BatchSize, "Number of words per new batch")
	cmd.Flags().Int("max-passes", 0, "Abort a batch after this many passes (0 = until mastered)")
	cmd.Flags().Bool("show-target-word-hint", false, "Show the first letter of the expected answer")
	cmd.Flags().String("voice", "", "Voice used to read example sentences")
	cmd.Flags().Int("voice-speed", defaults.VoiceSpeed, "Speaking rate in words per minute")
	cmd.Flags().String("word-book", "", "Word book CSV, relative to the data directory or repository")
	cmd.Flags().String("word-book-repo", "", "Git repository holding the word book")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show batches, their schedule and review totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProfile(cmd, opts)
			if err != nil {
				return err
			}
			defer p.db.Close()

			cursor, err := p.db.Cursor()
			if err != nil {
				return err
			}
			batches, err := p.db.AllBatches()
			if err != nil {
				return err
			}
			stats, err := p.db.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			today := interval.Day(time.Now())
			fmt.Fprintf(out, "Profile: %s\n", p.settings.Profile)
			fmt.Fprintf(out, "Words drawn: %d\n", cursor)
			fmt.Fprintf(out, "Answers: %d (%d correct) over %d session(s)\n\n", stats.Attempts, stats.Correct, stats.Sessions)

			if len(batches) == 0 {
				fmt.Fprintln(out, "No batches scheduled.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "BATCH\tWORDS\tROUND\tLAST PRACTISED\tDUE\t")
			for _, b := range batches {
				last := "-"
				if !b.LastPracticed.IsZero() {
					last = b.LastPracticed.Format("2006-01-02")
				}
				due := b.DueDate.Format("2006-01-02")
				if b.IsDue(today) {
					due += " (due)"
				}
				fmt.Fprintf(tw, "%d\t%d\t%d/%d\t%s\t%s\t\n", b.ID, len(b.ItemIDs), b.Round, len(p.settings.Intervals), last, due)
			}
			return tw.Flush()
		},
	}
}
