package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect and export past test results",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List past tests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)
		limit, _ := cmd.Flags().GetInt("limit")
		subjectFlag, _ := cmd.Flags().GetString("subject")

		var subject quiz.Subject
		if subjectFlag != "" {
			s, err := quiz.ParseSubject(subjectFlag)
			if err != nil {
				return err
			}
			subject = s
		}

		st, log, err := openHistory(v)
		if err != nil {
			return err
		}
		defer st.Close()

		records := history.NewestFirst(log.LoadAll(cmd.Context()))
		if len(records) == 0 {
			fmt.Println("No tests in history.")
			return nil
		}

		fmt.Printf("%-8s  %-16s  %-10s  %5s  %-11s  %7s  %6s\n",
			"ID", "Date", "Subject", "Grade", "Mode", "Score", "Time")
		fmt.Println(strings.Repeat(rule, 76))
		shown := 0
		for _, r := range records {
			if subject != "" && r.Config.Subject != subject {
				continue
			}
			if limit > 0 && shown == limit {
				break
			}
			shown++
			fmt.Printf("%-8s  %-16s  %-10s  %5d  %-11s  %6d%%  %6s\n",
				truncate(r.ID, 8),
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Config.Subject,
				r.Config.Grade.Number(),
				r.Config.Mode,
				r.ScorePercent,
				history.FormatElapsed(r.ElapsedSeconds),
			)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one test with every question and answer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)

		st, log, err := openHistory(v)
		if err != nil {
			return err
		}
		defer st.Close()

		rec, err := findRecord(log.LoadAll(cmd.Context()), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s · %s · %s\n", rec.Config.Subject, rec.Config.Grade, rec.Config.Mode)
		fmt.Printf("%s  ·  %d/%d correct  ·  %d%%  ·  %s\n\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.CorrectCount, rec.TotalQuestions, rec.ScorePercent,
			history.FormatElapsed(rec.ElapsedSeconds))

		outcomes := rec.Outcomes()
		for i, q := range rec.Questions {
			a := quiz.UnansweredFor(q)
			if i < len(rec.Answers) {
				a = rec.Answers[i]
			}
			fmt.Printf("%s ", outcomeMark(outcomes[i]))
			writeQuestion(os.Stdout, i+1, len(rec.Questions), q, &a, true)
			fmt.Println()
		}
		return nil
	},
}

// findRecord matches id exactly, then as a unique prefix.
func findRecord(records []history.Record, id string) (history.Record, error) {
	var matches []history.Record
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
		if strings.HasPrefix(r.ID, id) {
			matches = append(matches, r)
		}
	}
	switch len(matches) {
	case 0:
		return history.Record{}, fmt.Errorf("no test with id %q", id)
	case 1:
		return matches[0], nil
	default:
		return history.Record{}, fmt.Errorf("id prefix %q matches %d tests", id, len(matches))
	}
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the history as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)
		output, _ := cmd.Flags().GetString("output")

		st, log, err := openHistory(v)
		if err != nil {
			return err
		}
		defer st.Close()

		data, err := json.MarshalIndent(log.LoadAll(cmd.Context()), "", "  ")
		if err != nil {
			return fmt.Errorf("encode history: %w", err)
		}
		data = append(data, '\n')

		if output == "" || output == "-" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		fmt.Fprintf(os.Stderr, "History written to %s\n", output)
		return nil
	},
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show average and best score per subject",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)

		st, log, err := openHistory(v)
		if err != nil {
			return err
		}
		defer st.Close()

		records := log.LoadAll(cmd.Context())
		if len(records) == 0 {
			fmt.Println("No tests in history.")
			return nil
		}

		fmt.Printf("%-12s  %6s  %8s  %6s  %-16s\n", "Subject", "Tests", "Average", "Best", "Last taken")
		fmt.Println(strings.Repeat(rule, 56))
		total := 0
		for _, s := range history.Summarize(records) {
			fmt.Printf("%-12s  %6d  %7d%%  %5d%%  %-16s\n",
				s.Subject, s.Tests, s.Average, s.Best, s.LastTaken.Local().Format("2006-01-02 15:04"))
		}
		for _, r := range records {
			total += r.ScorePercent
		}
		fmt.Println(strings.Repeat(rule, 56))
		fmt.Printf("%-12s  %6d  %7d%%\n", "TOTAL", len(records), quiz.ScorePercent(total, 100*len(records)))
		return nil
	},
}

var historyEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List test start, finish and abandon events",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStore(v)
		if err != nil {
			return err
		}
		defer st.Close()

		events, err := st.EventRepo().QuerySessionEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}
		if len(events) == 0 {
			fmt.Println("No session events recorded.")
			return nil
		}

		fmt.Printf("%-19s  %-8s  %-8s  %-10s  %-11s  %9s  %6s\n",
			"Timestamp", "Session", "Action", "Subject", "Mode", "Correct", "Time")
		fmt.Println(strings.Repeat(rule, 82))
		for _, e := range events {
			correct := ""
			if e.Action == store.SessionActionFinish {
				correct = fmt.Sprintf("%d/%d", e.CorrectAnswers, e.Questions)
			}
			fmt.Printf("%-19s  %-8s  %-8s  %-10s  %-11s  %9s  %6s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(e.SessionID, 8),
				e.Action,
				e.Subject,
				e.Mode,
				correct,
				history.FormatElapsed(e.DurationSecs),
			)
		}
		return nil
	},
}

func init() {
	historyEventsCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	historyListCmd.Flags().IntP("limit", "n", 0, "Number of tests to show (0 = all)")
	historyListCmd.Flags().StringP("subject", "s", "", "Only show tests of this subject")
	historyExportCmd.Flags().StringP("output", "o", "-", "Output file path (- for stdout)")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyStatsCmd)
	historyCmd.AddCommand(historyEventsCmd)
}
