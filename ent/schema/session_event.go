package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records a test starting, finishing or being abandoned.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.String("action").
			NotEmpty().
			Comment("start, finish or abandon"),
		field.String("subject").
			Default(""),
		field.String("grade").
			Default(""),
		field.String("mode").
			Default(""),
		field.Int("questions").
			Default(0),
		field.Int("correct_answers").
			Default(0).
			Comment("Set on finish only"),
		field.Int("duration_secs").
			Default(0).
			Comment("Set on finish only"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id"),
	}
}
