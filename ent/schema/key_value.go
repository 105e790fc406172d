package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
)

// KeyValue stores opaque string values by key. The result history lives
// here as one JSON array.
type KeyValue struct {
	ent.Schema
}

func (KeyValue) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "kv"},
	}
}

func (KeyValue) Fields() []ent.Field {
	return []ent.Field{
		field.String("key").
			NotEmpty().
			Unique().
			Immutable(),
		field.Text("value"),
		field.Time("updated_at").
			Default(time.Now).
			UpdateDefault(time.Now),
	}
}
