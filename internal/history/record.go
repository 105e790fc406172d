package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// Record is a completed test, frozen for later review.
type Record struct {
	ID             string
	CreatedAt      time.Time
	Config         quiz.Config
	TotalQuestions int
	CorrectCount   int
	ScorePercent   int
	ElapsedSeconds int
	Questions      []quiz.Question
	Answers        []quiz.Answer
}

// Outcomes classifies every answer in the record.
func (r Record) Outcomes() []quiz.Outcome {
	out := make([]quiz.Outcome, len(r.Questions))
	for i, q := range r.Questions {
		a := quiz.UnansweredFor(q)
		if i < len(r.Answers) {
			a = r.Answers[i]
		}
		out[i] = quiz.Classify(q, a)
	}
	return out
}

// recordJSON is the persisted shape shared with earlier releases.
type recordJSON struct {
	ID              flexID          `json:"id"`
	Date            int64           `json:"date"`
	Config          quiz.Config     `json:"config"`
	TotalQuestions  int             `json:"totalQuestions"`
	CorrectAnswers  int             `json:"correctAnswers"`
	ScorePercentage int             `json:"scorePercentage"`
	TimeElapsed     int             `json:"timeElapsed"`
	Answers         []quiz.Answer   `json:"answers"`
	Questions       []quiz.Question `json:"questions"`
}

// MarshalJSON implements json.Marshaler.
func (r Record) MarshalJSON() ([]byte, error) {
	answers := r.Answers
	if answers == nil {
		answers = []quiz.Answer{}
	}
	questions := r.Questions
	if questions == nil {
		questions = []quiz.Question{}
	}
	return json.Marshal(recordJSON{
		ID:              flexID(r.ID),
		Date:            r.CreatedAt.UnixMilli(),
		Config:          r.Config,
		TotalQuestions:  r.TotalQuestions,
		CorrectAnswers:  r.CorrectCount,
		ScorePercentage: r.ScorePercent,
		TimeElapsed:     r.ElapsedSeconds,
		Answers:         answers,
		Questions:       questions,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Answers are reconciled with
// the question at the same position.
func (r *Record) UnmarshalJSON(data []byte) error {
	var w recordJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*r = Record{
		ID:             string(w.ID),
		CreatedAt:      time.UnixMilli(w.Date),
		Config:         w.Config,
		TotalQuestions: w.TotalQuestions,
		CorrectCount:   w.CorrectAnswers,
		ScorePercent:   w.ScorePercentage,
		ElapsedSeconds: w.TimeElapsed,
		Questions:      w.Questions,
		Answers:        w.Answers,
	}
	for i := range r.Answers {
		if i < len(r.Questions) {
			r.Answers[i] = r.Answers[i].Conform(r.Questions[i])
		}
	}
	return nil
}

// flexID decodes ids stored either as strings or as bare numbers.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode record id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// NewestFirst returns a copy of records sorted by creation time, newest first.
func NewestFirst(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SubjectStats aggregates the records of one subject.
type SubjectStats struct {
	Subject   quiz.Subject
	Tests     int
	Average   int
	Best      int
	LastTaken time.Time
}

// Summarize groups records by subject in quiz.Subjects order. Subjects
// without records are omitted.
func Summarize(records []Record) []SubjectStats {
	bySubject := make(map[quiz.Subject]*SubjectStats)
	totals := make(map[quiz.Subject]int)
	for _, r := range records {
		st, ok := bySubject[r.Config.Subject]
		if !ok {
			st = &SubjectStats{Subject: r.Config.Subject}
			bySubject[r.Config.Subject] = st
		}
		st.Tests++
		totals[r.Config.Subject] += r.ScorePercent
		if r.ScorePercent > st.Best {
			st.Best = r.ScorePercent
		}
		if r.CreatedAt.After(st.LastTaken) {
			st.LastTaken = r.CreatedAt
		}
	}

	var out []SubjectStats
	appendStats := func(sub quiz.Subject) {
		st, ok := bySubject[sub]
		if !ok {
			return
		}
		st.Average = quiz.ScorePercent(totals[sub], 100*st.Tests)
		out = append(out, *st)
		delete(bySubject, sub)
	}
	for _, sub := range quiz.Subjects {
		appendStats(sub)
	}
	// Subjects written by newer or older releases that this build does not know.
	var rest []string
	for sub := range bySubject {
		rest = append(rest, string(sub))
	}
	sort.Strings(rest)
	for _, sub := range rest {
		appendStats(quiz.Subject(sub))
	}
	return out
}

// FormatElapsed renders seconds as "m:ss".
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return strconv.Itoa(seconds/60) + ":" + fmt.Sprintf("%02d", seconds%60)
}
