package store

import (
	"context"
	"fmt"

	"github.com/VitoPalumboPodcast/Invalsi/ent"
	"github.com/VitoPalumboPodcast/Invalsi/ent/predicate"
	"github.com/VitoPalumboPodcast/Invalsi/ent/sessionevent"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.appendEvent(ctx, func(tx *ent.Tx, seq int64) error {
		_, err := tx.SessionEvent.Create().
			SetSequence(seq).
			SetSessionID(data.SessionID).
			SetAction(data.Action).
			SetSubject(data.Subject).
			SetGrade(data.Grade).
			SetMode(data.Mode).
			SetQuestions(data.Questions).
			SetCorrectAnswers(data.CorrectAnswers).
			SetDurationSecs(data.DurationSecs).
			Save(ctx)
		if err != nil {
			return fmt.Errorf("save session event: %w", err)
		}
		return nil
	})
}

func (r *eventRepo) QuerySessionEvents(ctx context.Context, opts QueryOpts) ([]SessionEvent, error) {
	var where []predicate.SessionEvent
	if opts.After > 0 {
		where = append(where, sessionevent.SequenceGT(opts.After))
	}
	if opts.Before > 0 {
		where = append(where, sessionevent.SequenceLT(opts.Before))
	}
	if !opts.From.IsZero() {
		where = append(where, sessionevent.TimestampGTE(opts.From))
	}
	if !opts.To.IsZero() {
		where = append(where, sessionevent.TimestampLTE(opts.To))
	}

	q := r.client.SessionEvent.Query().
		Where(where...).
		Order(ent.Desc(sessionevent.FieldSequence))
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	events, err := q.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}

	out := make([]SessionEvent, 0, len(events))
	for _, e := range events {
		out = append(out, SessionEvent{
			ID:        e.ID,
			Sequence:  e.Sequence,
			Timestamp: e.Timestamp,
			SessionEventData: SessionEventData{
				SessionID:      e.SessionID,
				Action:         e.Action,
				Subject:        e.Subject,
				Grade:          e.Grade,
				Mode:           e.Mode,
				Questions:      e.Questions,
				CorrectAnswers: e.CorrectAnswers,
				DurationSecs:   e.DurationSecs,
			},
		})
	}
	return out, nil
}
