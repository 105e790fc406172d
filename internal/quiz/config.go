package quiz

import (
	"fmt"
	"strings"
)

// Subject is an INVALSI test subject. Values are the stored names.
type Subject string

const (
	SubjectItaliano   Subject = "Italiano"
	SubjectMatematica Subject = "Matematica"
	SubjectInglese    Subject = "Inglese"
	SubjectDiritto    Subject = "Diritto"
)

// Subjects lists every subject in menu order.
var Subjects = []Subject{SubjectItaliano, SubjectMatematica, SubjectInglese, SubjectDiritto}

// Grade is a school grade level. Values are the stored names.
type Grade string

const (
	GradeTerzaMedia       Grade = "Terza Media (Grado 8)"
	GradeSecondaSuperiore Grade = "Seconda Superiore (Grado 10)"
	GradeQuintaSuperiore  Grade = "Quinta Superiore (Grado 13)"
)

// Grades lists every grade in menu order.
var Grades = []Grade{GradeTerzaMedia, GradeSecondaSuperiore, GradeQuintaSuperiore}

// Number returns the INVALSI grade number (8, 10 or 13).
func (g Grade) Number() int {
	switch g {
	case GradeTerzaMedia:
		return 8
	case GradeSecondaSuperiore:
		return 10
	case GradeQuintaSuperiore:
		return 13
	}
	return 0
}

// Mode selects how a session gives feedback and keeps time.
type Mode string

const (
	// ModeTraining reveals feedback per question after confirmation. Untimed.
	ModeTraining Mode = "allenamento"
	// ModeExam runs a countdown and defers feedback to the end.
	ModeExam Mode = "simulazione"
)

// Modes lists both modes in menu order.
var Modes = []Mode{ModeTraining, ModeExam}

// QuestionCounts are the lengths offered for a standard test.
var QuestionCounts = []int{7, 10, 15, 30}

// CustomQuestionCounts are the lengths offered for a test built from text.
var CustomQuestionCounts = []int{3, 5, 10}

// Config describes a requested test.
type Config struct {
	Subject       Subject `json:"subject"`
	Grade         Grade   `json:"grade"`
	QuestionCount int     `json:"questionCount"`
	Mode          Mode    `json:"mode"`
}

// DefaultConfig returns the configuration preselected on the setup screen.
func DefaultConfig() Config {
	return Config{
		Subject:       SubjectMatematica,
		Grade:         GradeSecondaSuperiore,
		QuestionCount: 10,
		Mode:          ModeTraining,
	}
}

// Validate checks that every field holds a known value.
func (c Config) Validate() error {
	if _, err := ParseSubject(string(c.Subject)); err != nil {
		return err
	}
	if _, err := ParseGrade(string(c.Grade)); err != nil {
		return err
	}
	if _, err := ParseMode(string(c.Mode)); err != nil {
		return err
	}
	if c.QuestionCount <= 0 {
		return fmt.Errorf("question count must be positive, got %d", c.QuestionCount)
	}
	return nil
}

// ParseSubject accepts a subject name case-insensitively.
func ParseSubject(s string) (Subject, error) {
	for _, sub := range Subjects {
		if strings.EqualFold(strings.TrimSpace(s), string(sub)) {
			return sub, nil
		}
	}
	return "", fmt.Errorf("unknown subject %q", s)
}

// ParseGrade accepts a full grade name or its number ("8", "10", "13").
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	for _, g := range Grades {
		if strings.EqualFold(s, string(g)) || s == fmt.Sprint(g.Number()) {
			return g, nil
		}
	}
	return "", fmt.Errorf("unknown grade %q", s)
}

// ParseMode accepts the stored mode names and the English aliases
// "training" and "exam".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(ModeTraining), "training":
		return ModeTraining, nil
	case string(ModeExam), "exam":
		return ModeExam, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
