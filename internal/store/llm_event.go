package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/VitoPalumboPodcast/Invalsi/ent"
	"github.com/VitoPalumboPodcast/Invalsi/ent/llmrequestevent"
	"github.com/VitoPalumboPodcast/Invalsi/ent/predicate"
)

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return r.appendEvent(ctx, func(tx *ent.Tx, seq int64) error {
		_, err := tx.LLMRequestEvent.Create().
			SetSequence(seq).
			SetProvider(data.Provider).
			SetModel(data.Model).
			SetPurpose(data.Purpose).
			SetInputTokens(data.InputTokens).
			SetOutputTokens(data.OutputTokens).
			SetLatencyMs(data.LatencyMs).
			SetSuccess(data.Success).
			SetErrorMessage(data.ErrorMessage).
			SetRequestBody(data.RequestBody).
			SetResponseBody(data.ResponseBody).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("save LLM request event: %w", err)
		}
		return nil
	})
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	var where []predicate.LLMRequestEvent
	if opts.After > 0 {
		where = append(where, llmrequestevent.SequenceGT(opts.After))
	}
	if opts.Before > 0 {
		where = append(where, llmrequestevent.SequenceLT(opts.Before))
	}
	if !opts.From.IsZero() {
		where = append(where, llmrequestevent.TimestampGTE(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, llmrequestevent.TimestampLTE(opts.To))
	}
	if opts.Purpose != "" {
		where = append(where, llmrequestevent.Purpose(opts.Purpose))
	}

	q := r.client.LLMRequestEvent.Query().
		Where(where...).
		Order(ent.Desc(llmrequestevent.FieldSequence))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	events, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	out := make([]LLMEvent, 0, len(events))
	for _, e := range events {
		out = append(out, toLLMEvent(e))
	}
	return out, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	e, err := r.client.LLMRequestEvent.Get(ctx, id)
	if err != nil {
		if ent.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	ev := toLLMEvent(e)
	return &ev, nil
}

func toLLMEvent(e *ent.LLMRequestEvent) LLMEvent {
	return LLMEvent{
		ID:        e.ID,
		Sequence:  e.Sequence,
		Timestamp: e.Timestamp,
		LLMRequestEventData: LLMRequestEventData{
			Provider:     e.Provider,
			Model:        e.Model,
			Purpose:      e.Purpose,
			InputTokens:  e.InputTokens,
			OutputTokens: e.OutputTokens,
			LatencyMs:    e.LatencyMs,
			Success:      e.Success,
			ErrorMessage: e.ErrorMessage,
			RequestBody:  e.RequestBody,
			ResponseBody: e.ResponseBody,
		},
	}
}

// usageRow is one GROUP BY row; json tags name the aggregate columns.
type usageRow struct {
	Purpose      string  `json:"purpose"`
	Model        string  `json:"model"`
	Calls        int     `json:"calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

func (r *eventRepo) llmUsage(ctx context.Context, groupBy string, withLatency bool) ([]usageRow, error) {
	aggs := []ent.AggregateFunc{
		ent.As(ent.Count(), "calls"),
		ent.As(ent.Sum(llmrequestevent.FieldInputTokens), "input_tokens"),
		ent.As(ent.Sum(llmrequestevent.FieldOutputTokens), "output_tokens"),
	}
	if withLatency {
		aggs = append(aggs, ent.As(ent.Mean(llmrequestevent.FieldLatencyMs), "avg_latency_ms"))
	}

	var rows []usageRow
	err := r.client.LLMRequestEvent.Query().
		GroupBy(groupBy).
		Aggregate(aggs...).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("query usage by %s: %w", groupBy, err)
	}
	return rows, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	rows, err := r.llmUsage(ctx, llmrequestevent.FieldPurpose, true)
	if err != nil {
		return nil, err
	}
	var out []PurposeUsage
	for _, u := range rows {
		out = append(out, PurposeUsage{
			Purpose:      u.Purpose,
			Calls:        u.Calls,
			InputTokens:  u.InputTokens,
			OutputTokens: u.OutputTokens,
			AvgLatencyMs: int64(u.AvgLatencyMs),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Purpose < out[j].Purpose })
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	rows, err := r.llmUsage(ctx, llmrequestevent.FieldModel, false)
	if err != nil {
		return nil, err
	}
	var out []ModelUsage
	for _, u := range rows {
		out = append(out, ModelUsage{
			Model:        u.Model,
			Calls:        u.Calls,
			InputTokens:  u.InputTokens,
			OutputTokens: u.OutputTokens,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out, nil
}
