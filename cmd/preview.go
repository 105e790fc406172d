package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/session"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Answer a test in a plain prompt loop",
	Long: `Fetch questions for a subject and grade, or generate them from a text
file, and answer them one by one at a plain prompt.

Useful for checking question quality without the full interface. The result
is kept only with --save.`,
	RunE: runPreview,
}

func init() {
	f := previewCmd.Flags()
	f.StringP("subject", "s", string(quiz.SubjectMatematica), "Subject (Italiano, Matematica, Inglese, Diritto)")
	f.StringP("grade", "g", "10", "Grade (8, 10, 13)")
	f.IntP("count", "n", 5, "Number of questions")
	f.String("text-file", "", "Generate comprehension questions about this text")
	f.Bool("save", false, "Append the result to the history")
}

func runPreview(cmd *cobra.Command, args []string) error {
	v := viperForCmd(cmd)
	logger := setupLogging(v, os.Stderr)
	ctx := cmd.Context()

	subjectFlag, _ := cmd.Flags().GetString("subject")
	gradeFlag, _ := cmd.Flags().GetString("grade")
	count, _ := cmd.Flags().GetInt("count")
	textFile, _ := cmd.Flags().GetString("text-file")
	save, _ := cmd.Flags().GetBool("save")

	subject, err := quiz.ParseSubject(subjectFlag)
	if err != nil {
		return err
	}
	grade, err := quiz.ParseGrade(gradeFlag)
	if err != nil {
		return err
	}
	cfg := quiz.Config{Subject: subject, Grade: grade, QuestionCount: count, Mode: quiz.ModeTraining}
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := openStore(v)
	if err != nil {
		return err
	}
	defer st.Close()

	src, err := newSource(cmd, v, st.EventRepo(), logger)
	if err != nil {
		return err
	}

	var questions []quiz.Question
	if textFile != "" {
		data, err := os.ReadFile(textFile)
		if err != nil {
			return fmt.Errorf("read text file: %w", err)
		}
		fmt.Printf("Generating %d questions from %s...\n\n", count, textFile)
		questions, cfg, err = src.FromText(ctx, string(data), cfg)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Preparing %d %s questions (%s)...\n\n", count, subject, grade)
		questions, err = src.ForConfig(ctx, cfg)
		if err != nil {
			return err
		}
	}

	s, err := session.New(questions, quiz.ModeTraining)
	if err != nil {
		return err
	}
	if err := answerLoop(s, os.Stdin, os.Stdout); err != nil {
		return err
	}
	s.Finish()

	rec, err := session.Aggregate(s, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("── Summary: %d/%d correct (%d%%) in %s ──\n",
		rec.CorrectCount, rec.TotalQuestions, rec.ScorePercent, history.FormatElapsed(rec.ElapsedSeconds))

	if save {
		log := history.NewLog(st.KVRepo(), history.WithLogger(logger))
		if err := log.Append(cmd.Context(), rec); err != nil {
			return fmt.Errorf("save result: %w", err)
		}
		fmt.Printf("Saved as %s\n", rec.ID)
	}
	return nil
}

// answerLoop asks every question of s once, confirming each answer.
// An empty line skips the question; closed input ends the loop early.
func answerLoop(s *session.Session, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for i := 0; i < s.Len(); i++ {
		s.Navigate(i)
		q := s.Question(i)
		writeQuestion(out, i+1, s.Len(), q, nil, false)
		if q.Kind == quiz.KindMatrix {
			fmt.Fprintf(out, "\nOne answer per row (e.g. %s): ", matrixExample(q))
		} else {
			fmt.Fprint(out, "\nYour answer (a-d): ")
		}

		for {
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(input closed)")
				return scanner.Err()
			}
			input := strings.TrimSpace(scanner.Text())
			if input == "" {
				fmt.Fprintln(out, "(skipped)")
				break
			}
			if err := applyAnswer(s, i, input); err != nil {
				fmt.Fprintf(out, "%v, try again: ", err)
				continue
			}
			s.Confirm(i)
			a := s.Answer(i)
			if quiz.Evaluate(q, a) {
				fmt.Fprintln(out, "\033[32m✓ Correct!\033[0m")
			} else {
				fmt.Fprintln(out, "\033[31m✗ Wrong.\033[0m")
			}
			writeQuestion(out, i+1, s.Len(), q, &a, true)
			break
		}
		fmt.Fprintln(out)
	}
	return nil
}

var errBadAnswer = errors.New("answer not understood")

func applyAnswer(s *session.Session, i int, input string) error {
	q := s.Question(i)
	if q.Kind == quiz.KindMatrix {
		cells, err := parseCells(input, q.Matrix.Columns, len(q.Matrix.Rows))
		if err != nil {
			return err
		}
		for row, col := range cells {
			s.SelectCell(i, row, col)
		}
		return nil
	}
	opt, err := parseOption(input, len(q.Choice.Options))
	if err != nil {
		return err
	}
	s.SelectOption(i, opt)
	return nil
}

// parseOption accepts a letter (a, B) or a 1-based number.
func parseOption(input string, n int) (int, error) {
	input = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(input), ")"))
	if len(input) == 1 && input[0] >= 'a' && int(input[0]-'a') < n {
		return int(input[0] - 'a'), nil
	}
	if k, err := strconv.Atoi(input); err == nil && k >= 1 && k <= n {
		return k - 1, nil
	}
	return 0, fmt.Errorf("%w: %q", errBadAnswer, input)
}

// parseCells reads one token per row. A token is a column label, its
// first letter, or a 1-based column number.
func parseCells(input string, columns []string, rows int) ([]int, error) {
	tokens := strings.FieldsFunc(input, func(r rune) bool { return r == ' ' || r == ',' || r == ';' })
	if len(tokens) != rows {
		return nil, fmt.Errorf("%w: want %d answers, got %d", errBadAnswer, rows, len(tokens))
	}
	cells := make([]int, rows)
	for r, tok := range tokens {
		col, ok := matchColumn(tok, columns)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errBadAnswer, tok)
		}
		cells[r] = col
	}
	return cells, nil
}

func matchColumn(tok string, columns []string) (int, bool) {
	if k, err := strconv.Atoi(tok); err == nil {
		return k - 1, k >= 1 && k <= len(columns)
	}
	for c, label := range columns {
		if strings.EqualFold(tok, label) {
			return c, true
		}
	}
	found := -1
	for c, label := range columns {
		if label != "" && strings.EqualFold(tok, string([]rune(label)[:1])) {
			if found >= 0 {
				return 0, false
			}
			found = c
		}
	}
	return found, found >= 0
}

func matrixExample(q quiz.Question) string {
	labels := make([]string, len(q.Matrix.Rows))
	for i := range labels {
		label := []rune(q.Matrix.Columns[i%len(q.Matrix.Columns)])
		if len(label) == 0 {
			labels[i] = strconv.Itoa(i%len(q.Matrix.Columns) + 1)
			continue
		}
		labels[i] = string(label[:1])
	}
	return strings.Join(labels, " ")
}
