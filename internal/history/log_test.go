package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

const legacyLog = `[{"id":"1718000000000","date":1718000000000,
"config":{"subject":"Matematica","grade":"Seconda Superiore (Grado 10)","questionCount":2,"mode":"simulazione"},
"totalQuestions":2,"correctAnswers":1,"scorePercentage":50,"timeElapsed":125,
"answers":[1,-1],
"questions":[
 {"id":"m1","text":"Quanto fa 3 x 4?","options":["7","12","34","1"],"correctAnswerIndex":1,"explanation":"3 x 4 = 12","topic":"Numeri"},
 {"id":"m2","type":"matrix","text":"Vero o falso?","matrixRows":["2 è pari","9 è primo"],"matrixCols":["V","F"],"matrixCorrectAnswer":[0,1],"explanation":"","topic":"Numeri"}
]}]`

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRecord(id string, subject quiz.Subject, score int, at time.Time) Record {
	q := quiz.NewSingleChoice(id+"-q", "Domanda", []string{"a", "b", "c", "d"}, 0)
	return Record{
		ID:             id,
		CreatedAt:      at,
		Config:         quiz.Config{Subject: subject, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 1, Mode: quiz.ModeTraining},
		TotalQuestions: 1,
		CorrectCount:   score / 100,
		ScorePercent:   score,
		ElapsedSeconds: 42,
		Questions:      []quiz.Question{q},
		Answers:        []quiz.Answer{quiz.ChoiceAnswer(0)},
	}
}

type failingKV struct{}

func (failingKV) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("disk on fire")
}
func (failingKV) Set(context.Context, string, string) error { return nil }

func TestLoadAll_Missing(t *testing.T) {
	log := NewLog(NewMemoryKV(), WithLogger(quietLogger()))
	got := log.LoadAll(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("LoadAll() = %v, want empty non-nil slice", got)
	}
}

func TestLoadAll_Corrupt(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, DefaultKey, "{not json")
	log := NewLog(kv, WithLogger(quietLogger()))

	if got := log.LoadAll(ctx); len(got) != 0 {
		t.Errorf("LoadAll() returned %d records, want 0", len(got))
	}
}

func TestLoadAll_ReadError(t *testing.T) {
	log := NewLog(failingKV{}, WithLogger(quietLogger()))
	if got := log.LoadAll(context.Background()); len(got) != 0 {
		t.Errorf("LoadAll() returned %d records, want 0", len(got))
	}
}

func TestAppendThenLoad(t *testing.T) {
	ctx := context.Background()
	log := NewLog(NewMemoryKV(), WithLogger(quietLogger()))
	base := time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := log.Append(ctx, testRecord(id, quiz.SubjectItaliano, 100, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
	}

	got := log.LoadAll(ctx)
	if len(got) != 3 {
		t.Fatalf("LoadAll() returned %d records, want 3", len(got))
	}
	for i, id := range []string{"a", "b", "c"} {
		if got[i].ID != id {
			t.Errorf("record %d id = %q, want %q (append order)", i, got[i].ID, id)
		}
	}
	if !got[2].CreatedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("CreatedAt = %v, want %v", got[2].CreatedAt, base.Add(2*time.Minute))
	}
	if got[0].Answers[0].Index() != 0 {
		t.Errorf("answer index = %d, want 0", got[0].Answers[0].Index())
	}

	if r, ok := log.Find(ctx, "b"); !ok || r.ID != "b" {
		t.Errorf("Find(b) = %v, %v", r.ID, ok)
	}
	if _, ok := log.Find(ctx, "zzz"); ok {
		t.Error("Find(zzz) should miss")
	}
}

func TestAppend_PreservesCorruptValue(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, DefaultKey, "garbage")
	at := time.UnixMilli(1718000000000)
	log := NewLog(kv, WithLogger(quietLogger()), WithClock(func() time.Time { return at }))

	if err := log.Append(ctx, testRecord("new", quiz.SubjectInglese, 100, time.Now())); err != nil {
		t.Fatalf("Append: %v", err)
	}

	saved, ok, _ := kv.Get(ctx, DefaultKey+".corrupt.1718000000000")
	if !ok || saved != "garbage" {
		t.Errorf("corrupt value = %q, %v; want preserved", saved, ok)
	}
	if got := log.LoadAll(ctx); len(got) != 1 || got[0].ID != "new" {
		t.Errorf("LoadAll() = %+v, want just the new record", got)
	}
}

func TestAppend_KeepsEveryCorruptCopy(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	at := time.UnixMilli(1718000000000)
	log := NewLog(kv, WithLogger(quietLogger()), WithClock(func() time.Time { return at }))

	for i, bad := range []string{"first", "second"} {
		_ = kv.Set(ctx, DefaultKey, bad)
		at = at.Add(time.Second)
		if err := log.Append(ctx, testRecord("r", quiz.SubjectInglese, 0, time.Now())); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	for key, want := range map[string]string{
		DefaultKey + ".corrupt.1718000001000": "first",
		DefaultKey + ".corrupt.1718000002000": "second",
	} {
		if got, ok, _ := kv.Get(ctx, key); !ok || got != want {
			t.Errorf("%s = %q, %v; want %q", key, got, ok, want)
		}
	}
}

// flakyKV wraps a MemoryKV and fails reads while broken is set.
type flakyKV struct {
	*MemoryKV
	broken bool
	writes int
}

func (f *flakyKV) Get(ctx context.Context, key string) (string, bool, error) {
	if f.broken {
		return "", false, errors.New("database is locked")
	}
	return f.MemoryKV.Get(ctx, key)
}

func (f *flakyKV) Set(ctx context.Context, key, value string) error {
	f.writes++
	return f.MemoryKV.Set(ctx, key, value)
}

func TestAppend_ReadErrorKeepsLog(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{MemoryKV: NewMemoryKV()}
	log := NewLog(kv, WithLogger(quietLogger()))
	for _, id := range []string{"a", "b", "c"} {
		if err := log.Append(ctx, testRecord(id, quiz.SubjectMatematica, 100, time.Now())); err != nil {
			t.Fatalf("Append(%s): %v", id, err)
		}
	}

	kv.broken = true
	writes := kv.writes
	err := log.Append(ctx, testRecord("d", quiz.SubjectMatematica, 100, time.Now()))
	if err == nil {
		t.Fatal("Append with a failing read should return an error")
	}
	if kv.writes != writes {
		t.Errorf("Append wrote %d times after a failed read, want 0", kv.writes-writes)
	}

	kv.broken = false
	got := log.LoadAll(ctx)
	if len(got) != 3 || got[0].ID != "a" || got[2].ID != "c" {
		t.Errorf("LoadAll() = %d records, want the original 3", len(got))
	}
}

func TestLoadAll_LegacyFormat(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, DefaultKey, legacyLog)
	log := NewLog(kv, WithLogger(quietLogger()))

	got := log.LoadAll(ctx)
	if len(got) != 1 {
		t.Fatalf("LoadAll() returned %d records, want 1", len(got))
	}
	r := got[0]
	if r.ID != "1718000000000" || r.ScorePercent != 50 || r.ElapsedSeconds != 125 {
		t.Errorf("decoded %+v", r)
	}
	if r.Config.Mode != quiz.ModeExam {
		t.Errorf("Mode = %q, want %q", r.Config.Mode, quiz.ModeExam)
	}
	if r.CreatedAt.UnixMilli() != 1718000000000 {
		t.Errorf("CreatedAt = %v", r.CreatedAt)
	}
	if r.Answers[1].Kind() != quiz.KindMatrix {
		t.Errorf("legacy -1 on matrix question decoded as %q, want matrix", r.Answers[1].Kind())
	}

	outcomes := r.Outcomes()
	if outcomes[0] != quiz.OutcomeCorrect || outcomes[1] != quiz.OutcomeSkipped {
		t.Errorf("Outcomes() = %v, want [correct skipped]", outcomes)
	}
}

func TestLoadAll_NumericID(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	_ = kv.Set(ctx, DefaultKey, `[{"id":1718000000000,"date":1718000000000,"config":{},"totalQuestions":0,"correctAnswers":0,"scorePercentage":0,"timeElapsed":0,"answers":[],"questions":[]}]`)

	got := NewLog(kv, WithLogger(quietLogger())).LoadAll(ctx)
	if len(got) != 1 || got[0].ID != "1718000000000" {
		t.Errorf("LoadAll() = %+v", got)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	m := quiz.NewMatrix("m", "Griglia", []string{"r1", "r2"}, []string{"c1", "c2", "c3"}, []int{2, 0})
	rec := testRecord("rt", quiz.SubjectMatematica, 50, time.UnixMilli(1_700_000_000_123))
	rec.Questions = append(rec.Questions, m)
	rec.Answers = append(rec.Answers, quiz.CellsAnswer(2, quiz.NoChoice))
	rec.TotalQuestions = 2

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Record
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.ID != rec.ID || !back.CreatedAt.Equal(rec.CreatedAt) || back.ScorePercent != 50 {
		t.Errorf("round trip changed header: %+v", back)
	}
	cells := back.Answers[1].Cells()
	if len(cells) != 2 || cells[0] != 2 || cells[1] != quiz.NoChoice {
		t.Errorf("matrix cells = %v, want [2 -1]", cells)
	}
	if back.Questions[1].Matrix.CorrectColumns[0] != 2 {
		t.Errorf("matrix key lost: %+v", back.Questions[1].Matrix)
	}
}

func TestNewestFirstAndSummarize(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []Record{
		testRecord("old", quiz.SubjectMatematica, 40, base),
		testRecord("new", quiz.SubjectMatematica, 81, base.Add(48*time.Hour)),
		testRecord("mid", quiz.SubjectItaliano, 70, base.Add(24*time.Hour)),
	}

	sorted := NewestFirst(records)
	if sorted[0].ID != "new" || sorted[1].ID != "mid" || sorted[2].ID != "old" {
		t.Errorf("NewestFirst order = %s,%s,%s", sorted[0].ID, sorted[1].ID, sorted[2].ID)
	}
	if records[0].ID != "old" {
		t.Error("NewestFirst must not reorder its input")
	}

	stats := Summarize(records)
	if len(stats) != 2 {
		t.Fatalf("Summarize() returned %d groups, want 2", len(stats))
	}
	if stats[0].Subject != quiz.SubjectItaliano || stats[1].Subject != quiz.SubjectMatematica {
		t.Errorf("subjects = %s,%s; want menu order", stats[0].Subject, stats[1].Subject)
	}
	mat := stats[1]
	if mat.Tests != 2 || mat.Best != 81 || mat.Average != 61 {
		t.Errorf("Matematica stats = %+v, want tests 2 best 81 average 61", mat)
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{125, "2:05"},
		{5400, "90:00"},
		{-3, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatElapsed(tt.secs); got != tt.want {
			t.Errorf("FormatElapsed(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
