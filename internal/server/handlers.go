package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/questionbank"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// recordSummary is a history row without its questions and answers.
type recordSummary struct {
	ID             string       `json:"id"`
	Date           time.Time    `json:"date"`
	Subject        quiz.Subject `json:"subject"`
	Grade          quiz.Grade   `json:"grade"`
	Mode           quiz.Mode    `json:"mode"`
	TotalQuestions int          `json:"totalQuestions"`
	CorrectAnswers int          `json:"correctAnswers"`
	ScorePercent   int          `json:"scorePercentage"`
	ElapsedSeconds int          `json:"timeElapsed"`
}

type subjectStats struct {
	Subject   quiz.Subject `json:"subject"`
	Tests     int          `json:"tests"`
	Average   int          `json:"average"`
	Best      int          `json:"best"`
	LastTaken time.Time    `json:"lastTaken"`
}

type statsResponse struct {
	Tests    int            `json:"tests"`
	Average  int            `json:"average"`
	Subjects []subjectStats `json:"subjects"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	records := history.NewestFirst(s.history.LoadAll(r.Context()))
	out := make([]recordSummary, 0, len(records))
	for _, rec := range records {
		out = append(out, recordSummary{
			ID:             rec.ID,
			Date:           rec.CreatedAt.UTC(),
			Subject:        rec.Config.Subject,
			Grade:          rec.Config.Grade,
			Mode:           rec.Config.Mode,
			TotalQuestions: rec.TotalQuestions,
			CorrectAnswers: rec.CorrectCount,
			ScorePercent:   rec.ScorePercent,
			ElapsedSeconds: rec.ElapsedSeconds,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, ok := s.history.Find(r.Context(), id)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "APINotFound", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	records := s.history.LoadAll(r.Context())
	resp := statsResponse{Tests: len(records), Subjects: []subjectStats{}}
	total := 0
	for _, rec := range records {
		total += rec.ScorePercent
	}
	resp.Average = quiz.ScorePercent(total, 100*len(records))
	for _, st := range history.Summarize(records) {
		resp.Subjects = append(resp.Subjects, subjectStats{
			Subject:   st.Subject,
			Tests:     st.Tests,
			Average:   st.Average,
			Best:      st.Best,
			LastTaken: st.LastTaken.UTC(),
		})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBankSummary(w http.ResponseWriter, r *http.Request) {
	entries := []questionbank.Entry{}
	if s.bank != nil {
		entries = append(entries, s.bank.Summary()...)
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleBankQuestions(w http.ResponseWriter, r *http.Request) {
	subject, err := quiz.ParseSubject(chi.URLParam(r, "subject"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "APIBadRequest", map[string]any{"Error": err.Error()})
		return
	}
	grade, err := quiz.ParseGrade(chi.URLParam(r, "grade"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "APIBadRequest", map[string]any{"Error": err.Error()})
		return
	}
	questions := []quiz.Question{}
	if s.bank != nil {
		questions = append(questions, s.bank.Lookup(subject, grade)...)
	}
	s.writeJSON(w, http.StatusOK, questions)
}
