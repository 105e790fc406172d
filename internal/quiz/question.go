package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidQuestion is returned when a question's shape does not match its kind.
var ErrInvalidQuestion = errors.New("invalid question")

// Kind discriminates the two question shapes.
type Kind string

const (
	KindSingleChoice Kind = "multiple_choice"
	KindMatrix       Kind = "matrix"
)

// OptionsPerQuestion is the fixed number of options of a single-choice item.
const OptionsPerQuestion = 4

// ChoiceSpec holds the single-choice fields of a question.
type ChoiceSpec struct {
	Options      []string
	CorrectIndex int
}

// MatrixSpec holds the grid fields of a question. CorrectColumns has one
// entry per row.
type MatrixSpec struct {
	Rows           []string
	Columns        []string
	CorrectColumns []int
}

// Question is a quiz item. Exactly one of Choice and Matrix is set,
// selected by Kind.
type Question struct {
	ID    string
	Kind  Kind
	Text  string
	Topic string

	// Auxiliary content, never used for scoring.
	ContextText  string
	AudioScript  string
	Illustration string
	Explanation  string

	Choice *ChoiceSpec
	Matrix *MatrixSpec
}

// NewSingleChoice builds a single-choice question.
func NewSingleChoice(id, text string, options []string, correct int) Question {
	return Question{
		ID:   id,
		Kind: KindSingleChoice,
		Text: text,
		Choice: &ChoiceSpec{
			Options:      options,
			CorrectIndex: correct,
		},
	}
}

// NewMatrix builds a matrix question.
func NewMatrix(id, text string, rows, columns []string, correct []int) Question {
	return Question{
		ID:   id,
		Kind: KindMatrix,
		Text: text,
		Matrix: &MatrixSpec{
			Rows:           rows,
			Columns:        columns,
			CorrectColumns: correct,
		},
	}
}

// Validate checks that the populated shape matches Kind.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidQuestion)
	}
	switch q.Kind {
	case KindSingleChoice:
		if q.Matrix != nil {
			return fmt.Errorf("%w: %s: single-choice question carries matrix fields", ErrInvalidQuestion, q.ID)
		}
		if q.Choice == nil {
			return fmt.Errorf("%w: %s: missing options", ErrInvalidQuestion, q.ID)
		}
		if len(q.Choice.Options) != OptionsPerQuestion {
			return fmt.Errorf("%w: %s: want %d options, got %d", ErrInvalidQuestion, q.ID, OptionsPerQuestion, len(q.Choice.Options))
		}
		if q.Choice.CorrectIndex < 0 || q.Choice.CorrectIndex >= len(q.Choice.Options) {
			return fmt.Errorf("%w: %s: correct index %d out of range", ErrInvalidQuestion, q.ID, q.Choice.CorrectIndex)
		}
	case KindMatrix:
		if q.Choice != nil {
			return fmt.Errorf("%w: %s: matrix question carries single-choice fields", ErrInvalidQuestion, q.ID)
		}
		m := q.Matrix
		if m == nil || len(m.Rows) == 0 || len(m.Columns) == 0 {
			return fmt.Errorf("%w: %s: matrix needs rows and columns", ErrInvalidQuestion, q.ID)
		}
		if len(m.CorrectColumns) != len(m.Rows) {
			return fmt.Errorf("%w: %s: %d rows but %d expected columns", ErrInvalidQuestion, q.ID, len(m.Rows), len(m.CorrectColumns))
		}
		for i, c := range m.CorrectColumns {
			if c < 0 || c >= len(m.Columns) {
				return fmt.Errorf("%w: %s: row %d expects column %d out of range", ErrInvalidQuestion, q.ID, i, c)
			}
		}
	default:
		return fmt.Errorf("%w: %s: unknown kind %q", ErrInvalidQuestion, q.ID, q.Kind)
	}
	return nil
}

// RowCount returns the number of matrix rows, or 0 for single-choice items.
func (q Question) RowCount() int {
	if q.Matrix == nil {
		return 0
	}
	return len(q.Matrix.Rows)
}

// Clone returns a deep copy so callers can freeze a question list.
func (q Question) Clone() Question {
	out := q
	if q.Choice != nil {
		c := *q.Choice
		c.Options = append([]string(nil), q.Choice.Options...)
		out.Choice = &c
	}
	if q.Matrix != nil {
		m := *q.Matrix
		m.Rows = append([]string(nil), q.Matrix.Rows...)
		m.Columns = append([]string(nil), q.Matrix.Columns...)
		m.CorrectColumns = append([]int(nil), q.Matrix.CorrectColumns...)
		out.Matrix = &m
	}
	return out
}

// questionJSON is the persisted shape. Field names are shared with
// history records written by earlier releases and must not change.
type questionJSON struct {
	ID                  string   `json:"id"`
	Type                Kind     `json:"type,omitempty"`
	Text                string   `json:"text"`
	ContextText         string   `json:"contextText,omitempty"`
	AudioScript         string   `json:"audioScript,omitempty"`
	Illustration        string   `json:"illustration,omitempty"`
	Options             []string `json:"options,omitempty"`
	CorrectAnswerIndex  *int     `json:"correctAnswerIndex,omitempty"`
	MatrixRows          []string `json:"matrixRows,omitempty"`
	MatrixCols          []string `json:"matrixCols,omitempty"`
	MatrixCorrectAnswer []int    `json:"matrixCorrectAnswer,omitempty"`
	Explanation         string   `json:"explanation"`
	Topic               string   `json:"topic"`
}

// MarshalJSON implements json.Marshaler.
func (q Question) MarshalJSON() ([]byte, error) {
	w := questionJSON{
		ID:           q.ID,
		Type:         q.Kind,
		Text:         q.Text,
		ContextText:  q.ContextText,
		AudioScript:  q.AudioScript,
		Illustration: q.Illustration,
		Explanation:  q.Explanation,
		Topic:        q.Topic,
	}
	if q.Choice != nil {
		idx := q.Choice.CorrectIndex
		w.Options = q.Choice.Options
		w.CorrectAnswerIndex = &idx
	}
	if q.Matrix != nil {
		w.MatrixRows = q.Matrix.Rows
		w.MatrixCols = q.Matrix.Columns
		w.MatrixCorrectAnswer = q.Matrix.CorrectColumns
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler. A missing type means
// single-choice.
func (q *Question) UnmarshalJSON(data []byte) error {
	var w questionJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*q = Question{
		ID:           w.ID,
		Kind:         w.Type,
		Text:         w.Text,
		ContextText:  w.ContextText,
		AudioScript:  w.AudioScript,
		Illustration: w.Illustration,
		Explanation:  w.Explanation,
		Topic:        w.Topic,
	}
	if q.Kind == "" {
		q.Kind = KindSingleChoice
	}
	switch q.Kind {
	case KindMatrix:
		q.Matrix = &MatrixSpec{
			Rows:           w.MatrixRows,
			Columns:        w.MatrixCols,
			CorrectColumns: w.MatrixCorrectAnswer,
		}
	default:
		c := &ChoiceSpec{Options: w.Options, CorrectIndex: -1}
		if w.CorrectAnswerIndex != nil {
			c.CorrectIndex = *w.CorrectAnswerIndex
		}
		q.Choice = c
	}
	return nil
}
