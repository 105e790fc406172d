package quiz

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoChoice marks an unanswered option or matrix row.
const NoChoice = -1

// Answer is the learner's response to one question. It is a tagged union:
// single-choice answers carry an option index, matrix answers carry one
// column index per row. A matrix answer with no cells has never been
// started and counts as every row unanswered.
type Answer struct {
	kind  Kind
	index int
	cells []int
}

// Unanswered returns the blank answer for the given kind.
func Unanswered(kind Kind) Answer {
	if kind == KindMatrix {
		return Answer{kind: KindMatrix, index: NoChoice}
	}
	return Answer{kind: KindSingleChoice, index: NoChoice}
}

// UnansweredFor returns the blank answer matching q's shape.
func UnansweredFor(q Question) Answer {
	return Unanswered(q.Kind)
}

// ChoiceAnswer returns a single-choice answer selecting option i.
func ChoiceAnswer(i int) Answer {
	return Answer{kind: KindSingleChoice, index: i}
}

// CellsAnswer returns a matrix answer with the given per-row columns.
func CellsAnswer(cells ...int) Answer {
	c := make([]int, len(cells))
	copy(c, cells)
	return Answer{kind: KindMatrix, index: NoChoice, cells: c}
}

// Kind reports which shape the answer has.
func (a Answer) Kind() Kind { return a.kind }

// Index returns the chosen option, or NoChoice. Always NoChoice for matrix answers.
func (a Answer) Index() int {
	if a.kind != KindSingleChoice {
		return NoChoice
	}
	return a.index
}

// Cells returns a copy of the per-row columns, nil if never started.
func (a Answer) Cells() []int {
	if a.cells == nil {
		return nil
	}
	out := make([]int, len(a.cells))
	copy(out, a.cells)
	return out
}

// Cell returns the column chosen for row, or NoChoice.
func (a Answer) Cell(row int) int {
	if row < 0 || row >= len(a.cells) {
		return NoChoice
	}
	return a.cells[row]
}

// WithCell returns a copy of a matrix answer with row set to col. A
// never-started answer is first expanded to rows blank cells.
func (a Answer) WithCell(rows, row, col int) Answer {
	cells := a.Cells()
	if len(cells) != rows {
		grown := make([]int, rows)
		for i := range grown {
			grown[i] = NoChoice
			if i < len(cells) {
				grown[i] = cells[i]
			}
		}
		cells = grown
	}
	if row >= 0 && row < rows {
		cells[row] = col
	}
	return Answer{kind: KindMatrix, index: NoChoice, cells: cells}
}

// Clone returns a deep copy.
func (a Answer) Clone() Answer {
	a.cells = a.Cells()
	return a
}

// Conform reinterprets a decoded answer against its question. Older
// records store an untouched matrix answer as the scalar -1.
func (a Answer) Conform(q Question) Answer {
	if q.Kind == KindMatrix && a.kind == KindSingleChoice && a.index == NoChoice {
		return Unanswered(KindMatrix)
	}
	return a
}

func (a Answer) String() string {
	if a.kind == KindMatrix {
		return fmt.Sprint(a.cells)
	}
	return fmt.Sprint(a.index)
}

// MarshalJSON writes a number for single-choice answers and an array for
// matrix answers. A never-started matrix answer is written as -1.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.kind == KindMatrix && a.cells != nil {
		return json.Marshal(a.cells)
	}
	if a.kind == KindMatrix {
		return []byte("-1"), nil
	}
	return json.Marshal(a.index)
}

// UnmarshalJSON accepts a number, an array of numbers, or null.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = Unanswered(KindSingleChoice)
		return nil
	case len(data) > 0 && data[0] == '[':
		var cells []int
		if err := json.Unmarshal(data, &cells); err != nil {
			return fmt.Errorf("decode matrix answer: %w", err)
		}
		if cells == nil {
			cells = []int{}
		}
		*a = Answer{kind: KindMatrix, index: NoChoice, cells: cells}
		return nil
	default:
		var idx int
		if err := json.Unmarshal(data, &idx); err != nil {
			return fmt.Errorf("decode answer: %w", err)
		}
		*a = ChoiceAnswer(idx)
		return nil
	}
}
