package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/llm"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// Purposes recorded on LLM request events.
const (
	PurposeTest       = "question-gen"
	PurposeCustomText = "custom-text"
)

var errEmptyBatch = errors.New("response contained no questions")

// LLMGenerator implements Generator using an LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
	now      func() time.Time
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg, now: time.Now}
}

// batchOutput is the raw LLM response before conversion.
type batchOutput struct {
	Questions []questionOutput `json:"questions"`
}

type questionOutput struct {
	ID                  string   `json:"id"`
	Type                string   `json:"type"`
	Topic               string   `json:"topic"`
	ContextText         string   `json:"contextText"`
	AudioScript         string   `json:"audioScript"`
	Text                string   `json:"text"`
	Options             []string `json:"options"`
	CorrectAnswerIndex  int      `json:"correctAnswerIndex"`
	MatrixRows          []string `json:"matrixRows"`
	MatrixCols          []string `json:"matrixCols"`
	MatrixCorrectAnswer []int    `json:"matrixCorrectAnswer"`
	Explanation         string   `json:"explanation"`
}

// question converts the raw output, keeping only the fields of its type.
func (o questionOutput) question() quiz.Question {
	var q quiz.Question
	if o.Type == string(quiz.KindMatrix) {
		q = quiz.NewMatrix(o.ID, o.Text, o.MatrixRows, o.MatrixCols, o.MatrixCorrectAnswer)
	} else {
		q = quiz.NewSingleChoice(o.ID, o.Text, o.Options, o.CorrectAnswerIndex)
	}
	q.Topic = strings.TrimSpace(o.Topic)
	q.ContextText = strings.TrimSpace(o.ContextText)
	q.AudioScript = strings.TrimSpace(o.AudioScript)
	q.Explanation = strings.TrimSpace(o.Explanation)
	return q
}

// GenerateTest produces questions that complete a standard test.
func (g *LLMGenerator) GenerateTest(ctx context.Context, cfg quiz.Config, count int, prior []string) ([]quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, PurposeTest)
	ctx = llm.WithLogAttrs(ctx,
		slog.String("subject", string(cfg.Subject)),
		slog.String("grade", string(cfg.Grade)),
		slog.Int("count", count))

	req := g.request(buildTestMessage(cfg, count, prior, g.config.MaxPriorQuestions), g.config.ExamTemperature)
	qs, err := g.generate(ctx, req, count)
	if err != nil {
		return nil, err
	}

	stamp := g.now().UnixMilli()
	for i := range qs {
		if strings.TrimSpace(qs[i].ID) == "" {
			qs[i].ID = fmt.Sprintf("q-%d-%d", i, stamp)
		}
	}
	if err := g.validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// GenerateFromText produces questions about text. Every question carries
// text as its context.
func (g *LLMGenerator) GenerateFromText(ctx context.Context, text string, cfg quiz.Config, count int) ([]quiz.Question, error) {
	ctx = llm.WithPurpose(ctx, PurposeCustomText)
	ctx = llm.WithLogAttrs(ctx,
		slog.String("subject", string(cfg.Subject)),
		slog.Int("text_len", len(text)),
		slog.Int("count", count))

	req := g.request(buildTextMessage(text, cfg, count), g.config.TextTemperature)
	qs, err := g.generate(ctx, req, count)
	if err != nil {
		return nil, err
	}

	stamp := g.now().UnixMilli()
	for i := range qs {
		qs[i].ID = fmt.Sprintf("custom-%d-%d", i, stamp)
		qs[i].ContextText = text
		qs[i].AudioScript = ""
	}
	if err := g.validate(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (g *LLMGenerator) request(userMsg string, temperature float64) llm.Request {
	req := llm.Prompt(systemPrompt, userMsg, QuestionsSchema)
	req.MaxTokens = g.config.MaxTokens
	req.Temperature = temperature
	return req
}

// generate sends req and decodes at most count questions.
func (g *LLMGenerator) generate(ctx context.Context, req llm.Request, count int) ([]quiz.Question, error) {
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("LLM generation failed: %w", err)
	}

	var raw batchOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
	}
	if len(raw.Questions) == 0 {
		return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: errEmptyBatch}
	}
	if count > 0 && len(raw.Questions) > count {
		raw.Questions = raw.Questions[:count]
	}

	qs := make([]quiz.Question, len(raw.Questions))
	for i, o := range raw.Questions {
		qs[i] = o.question()
	}
	return qs, nil
}

// validate runs the validators in order over every question.
func (g *LLMGenerator) validate(qs []quiz.Question) error {
	for i := range qs {
		for _, v := range g.config.Validators {
			if verr := v.Validate(&qs[i]); verr != nil {
				verr.Question = i
				return verr
			}
		}
	}
	return nil
}
