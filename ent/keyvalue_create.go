// Code generated by ent, DO NOT EDIT.

package ent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"entgo.io/ent/schema/field"
	"github.com/VitoPalumboPodcast/Invalsi/ent/keyvalue"
)

// KeyValueCreate is the builder for creating a KeyValue entity.
type KeyValueCreate struct {
	config
	mutation *KeyValueMutation
	hooks    []Hook
	conflict []sql.ConflictOption
}

// SetKey sets the "key" field.
func (_c *KeyValueCreate) SetKey(v string) *KeyValueCreate {
	_c.mutation.SetKey(v)
	return _c
}

// SetValue sets the "value" field.
func (_c *KeyValueCreate) SetValue(v string) *KeyValueCreate {
	_c.mutation.SetValue(v)
	return _c
}

// SetUpdatedAt sets the "updated_at" field.
func (_c *KeyValueCreate) SetUpdatedAt(v time.Time) *KeyValueCreate {
	_c.mutation.SetUpdatedAt(v)
	return _c
}

// SetNillableUpdatedAt sets the "updated_at" field if the given value is not nil.
func (_c *KeyValueCreate) SetNillableUpdatedAt(v *time.Time) *KeyValueCreate {
	if v != nil {
		_c.SetUpdatedAt(*v)
	}
	return _c
}

// Mutation returns the KeyValueMutation object of the builder.
func (_c *KeyValueCreate) Mutation() *KeyValueMutation {
	return _c.mutation
}

// Save creates the KeyValue in the database.
func (_c *KeyValueCreate) Save(ctx context.Context) (*KeyValue, error) {
	_c.defaults()
	return withHooks(ctx, _c.sqlSave, _c.mutation, _c.hooks)
}

// SaveX calls Save and panics if Save returns an error.
func (_c *KeyValueCreate) SaveX(ctx context.Context) *KeyValue {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *KeyValueCreate) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *KeyValueCreate) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}

// defaults sets the default values of the builder before save.
func (_c *KeyValueCreate) defaults() {
	if _, ok := _c.mutation.UpdatedAt(); !ok {
		v := keyvalue.DefaultUpdatedAt()
		_c.mutation.SetUpdatedAt(v)
	}
}

// check runs all checks and user-defined validators on the builder.
func (_c *KeyValueCreate) check() error {
	if _, ok := _c.mutation.Key(); !ok {
		return &ValidationError{Name: "key", err: errors.New(`ent: missing required field "KeyValue.key"`)}
	}
	if v, ok := _c.mutation.Key(); ok {
		if err := keyvalue.KeyValidator(v); err != nil {
			return &ValidationError{Name: "key", err: fmt.Errorf(`ent: validator failed for field "KeyValue.key": %w`, err)}
		}
	}
	if _, ok := _c.mutation.Value(); !ok {
		return &ValidationError{Name: "value", err: errors.New(`ent: missing required field "KeyValue.value"`)}
	}
	if _, ok := _c.mutation.UpdatedAt(); !ok {
		return &ValidationError{Name: "updated_at", err: errors.New(`ent: missing required field "KeyValue.updated_at"`)}
	}
	return nil
}

func (_c *KeyValueCreate) sqlSave(ctx context.Context) (*KeyValue, error) {
	if err := _c.check(); err != nil {
		return nil, err
	}
	_node, _spec := _c.createSpec()
	if err := sqlgraph.CreateNode(ctx, _c.driver, _spec); err != nil {
		if sqlgraph.IsConstraintError(err) {
			err = &ConstraintError{msg: err.Error(), wrap: err}
		}
		return nil, err
	}
	id := _spec.ID.Value.(int64)
	_node.ID = int(id)
	_c.mutation.id = &_node.ID
	_c.mutation.done = true
	return _node, nil
}

func (_c *KeyValueCreate) createSpec() (*KeyValue, *sqlgraph.CreateSpec) {
	var (
		_node = &KeyValue{config: _c.config}
		_spec = sqlgraph.NewCreateSpec(keyvalue.Table, sqlgraph.NewFieldSpec(keyvalue.FieldID, field.TypeInt))
	)
	_spec.OnConflict = _c.conflict
	if value, ok := _c.mutation.Key(); ok {
		_spec.SetField(keyvalue.FieldKey, field.TypeString, value)
		_node.Key = value
	}
	if value, ok := _c.mutation.Value(); ok {
		_spec.SetField(keyvalue.FieldValue, field.TypeString, value)
		_node.Value = value
	}
	if value, ok := _c.mutation.UpdatedAt(); ok {
		_spec.SetField(keyvalue.FieldUpdatedAt, field.TypeTime, value)
		_node.UpdatedAt = value
	}
	return _node, _spec
}

// OnConflict allows configuring the `ON CONFLICT` / `ON DUPLICATE KEY` clause
// of the `INSERT` statement. For example:
//
//	client.KeyValue.Create().
//		SetKey(v).
//		OnConflict(
//			// Update the row with the new values
//			// the was proposed for insertion.
//			sql.ResolveWithNewValues(),
//		).
//		// Override some of the fields with custom
//		// update values.
//		Update(func(u *ent.KeyValueUpsert) {
//			SetKey(v+v).
//		}).
//		Exec(ctx)
func (_c *KeyValueCreate) OnConflict(opts ...sql.ConflictOption) *KeyValueUpsertOne {
	_c.conflict = opts
	return &KeyValueUpsertOne{
		create: _c,
	}
}

// OnConflictColumns calls `OnConflict` and configures the columns
// as conflict target. Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//		OnConflict(sql.ConflictColumns(columns...)).
//		Exec(ctx)
func (_c *KeyValueCreate) OnConflictColumns(columns ...string) *KeyValueUpsertOne {
	_c.conflict = append(_c.conflict, sql.ConflictColumns(columns...))
	return &KeyValueUpsertOne{
		create: _c,
	}
}

type (
	// KeyValueUpsertOne is the builder for "upsert"-ing
	//  one KeyValue node.
	KeyValueUpsertOne struct {
		create *KeyValueCreate
	}

	// KeyValueUpsert is the "OnConflict" setter.
	KeyValueUpsert struct {
		*sql.UpdateSet
	}
)

// SetValue sets the "value" field.
func (u *KeyValueUpsert) SetValue(v string) *KeyValueUpsert {
	u.Set(keyvalue.FieldValue, v)
	return u
}

// UpdateValue sets the "value" field to the value that was provided on create.
func (u *KeyValueUpsert) UpdateValue() *KeyValueUpsert {
	u.SetExcluded(keyvalue.FieldValue)
	return u
}

// SetUpdatedAt sets the "updated_at" field.
func (u *KeyValueUpsert) SetUpdatedAt(v time.Time) *KeyValueUpsert {
	u.Set(keyvalue.FieldUpdatedAt, v)
	return u
}

// UpdateUpdatedAt sets the "updated_at" field to the value that was provided on create.
func (u *KeyValueUpsert) UpdateUpdatedAt() *KeyValueUpsert {
	u.SetExcluded(keyvalue.FieldUpdatedAt)
	return u
}

// UpdateNewValues updates the mutable fields using the new values that were set on create.
// Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//		OnConflict(
//			sql.ResolveWithNewValues(),
//		).
//		Exec(ctx)
func (u *KeyValueUpsertOne) UpdateNewValues() *KeyValueUpsertOne {
	u.create.conflict = append(u.create.conflict, sql.ResolveWithNewValues())
	u.create.conflict = append(u.create.conflict, sql.ResolveWith(func(s *sql.UpdateSet) {
		if _, exists := u.create.mutation.Key(); exists {
			s.SetIgnore(keyvalue.FieldKey)
		}
	}))
	return u
}

// Ignore sets each column to itself in case of conflict.
// Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//	    OnConflict(sql.ResolveWithIgnore()).
//	    Exec(ctx)
func (u *KeyValueUpsertOne) Ignore() *KeyValueUpsertOne {
	u.create.conflict = append(u.create.conflict, sql.ResolveWithIgnore())
	return u
}

// DoNothing configures the conflict_action to `DO NOTHING`.
// Supported only by SQLite and PostgreSQL.
func (u *KeyValueUpsertOne) DoNothing() *KeyValueUpsertOne {
	u.create.conflict = append(u.create.conflict, sql.DoNothing())
	return u
}

// Update allows overriding fields `UPDATE` values. See the KeyValueCreate.OnConflict
// documentation for more info.
func (u *KeyValueUpsertOne) Update(set func(*KeyValueUpsert)) *KeyValueUpsertOne {
	u.create.conflict = append(u.create.conflict, sql.ResolveWith(func(update *sql.UpdateSet) {
		set(&KeyValueUpsert{UpdateSet: update})
	}))
	return u
}

// SetValue sets the "value" field.
func (u *KeyValueUpsertOne) SetValue(v string) *KeyValueUpsertOne {
	return u.Update(func(s *KeyValueUpsert) {
		s.SetValue(v)
	})
}

// UpdateValue sets the "value" field to the value that was provided on create.
func (u *KeyValueUpsertOne) UpdateValue() *KeyValueUpsertOne {
	return u.Update(func(s *KeyValueUpsert) {
		s.UpdateValue()
	})
}

// SetUpdatedAt sets the "updated_at" field.
func (u *KeyValueUpsertOne) SetUpdatedAt(v time.Time) *KeyValueUpsertOne {
	return u.Update(func(s *KeyValueUpsert) {
		s.SetUpdatedAt(v)
	})
}

// UpdateUpdatedAt sets the "updated_at" field to the value that was provided on create.
func (u *KeyValueUpsertOne) UpdateUpdatedAt() *KeyValueUpsertOne {
	return u.Update(func(s *KeyValueUpsert) {
		s.UpdateUpdatedAt()
	})
}

// Exec executes the query.
func (u *KeyValueUpsertOne) Exec(ctx context.Context) error {
	if len(u.create.conflict) == 0 {
		return errors.New("ent: missing options for KeyValueCreate.OnConflict")
	}
	return u.create.Exec(ctx)
}

// ExecX is like Exec, but panics if an error occurs.
func (u *KeyValueUpsertOne) ExecX(ctx context.Context) {
	if err := u.create.Exec(ctx); err != nil {
		panic(err)
	}
}

// Exec executes the UPSERT query and returns the inserted/updated ID.
func (u *KeyValueUpsertOne) ID(ctx context.Context) (id int, err error) {
	node, err := u.create.Save(ctx)
	if err != nil {
		return id, err
	}
	return node.ID, nil
}

// IDX is like ID, but panics if an error occurs.
func (u *KeyValueUpsertOne) IDX(ctx context.Context) int {
	id, err := u.ID(ctx)
	if err != nil {
		panic(err)
	}
	return id
}

// KeyValueCreateBulk is the builder for creating many KeyValue entities in bulk.
type KeyValueCreateBulk struct {
	config
	err      error
	builders []*KeyValueCreate
	conflict []sql.ConflictOption
}

// Save creates the KeyValue entities in the database.
func (_c *KeyValueCreateBulk) Save(ctx context.Context) ([]*KeyValue, error) {
	if _c.err != nil {
		return nil, _c.err
	}
	specs := make([]*sqlgraph.CreateSpec, len(_c.builders))
	nodes := make([]*KeyValue, len(_c.builders))
	mutators := make([]Mutator, len(_c.builders))
	for i := range _c.builders {
		func(i int, root context.Context) {
			builder := _c.builders[i]
			builder.defaults()
			var mut Mutator = MutateFunc(func(ctx context.Context, m Mutation) (Value, error) {
				mutation, ok := m.(*KeyValueMutation)
				if !ok {
					return nil, fmt.Errorf("unexpected mutation type %T", m)
				}
				if err := builder.check(); err != nil {
					return nil, err
				}
				builder.mutation = mutation
				var err error
				nodes[i], specs[i] = builder.createSpec()
				if i < len(mutators)-1 {
					_, err = mutators[i+1].Mutate(root, _c.builders[i+1].mutation)
				} else {
					spec := &sqlgraph.BatchCreateSpec{Nodes: specs}
					spec.OnConflict = _c.conflict
					// Invoke the actual operation on the latest mutation in the chain.
					if err = sqlgraph.BatchCreate(ctx, _c.driver, spec); err != nil {
						if sqlgraph.IsConstraintError(err) {
							err = &ConstraintError{msg: err.Error(), wrap: err}
						}
					}
				}
				if err != nil {
					return nil, err
				}
				mutation.id = &nodes[i].ID
				if specs[i].ID.Value != nil {
					id := specs[i].ID.Value.(int64)
					nodes[i].ID = int(id)
				}
				mutation.done = true
				return nodes[i], nil
			})
			for i := len(builder.hooks) - 1; i >= 0; i-- {
				mut = builder.hooks[i](mut)
			}
			mutators[i] = mut
		}(i, ctx)
	}
	if len(mutators) > 0 {
		if _, err := mutators[0].Mutate(ctx, _c.builders[0].mutation); err != nil {
			return nil, err
		}
	}
	return nodes, nil
}

// SaveX is like Save, but panics if an error occurs.
func (_c *KeyValueCreateBulk) SaveX(ctx context.Context) []*KeyValue {
	v, err := _c.Save(ctx)
	if err != nil {
		panic(err)
	}
	return v
}

// Exec executes the query.
func (_c *KeyValueCreateBulk) Exec(ctx context.Context) error {
	_, err := _c.Save(ctx)
	return err
}

// ExecX is like Exec, but panics if an error occurs.
func (_c *KeyValueCreateBulk) ExecX(ctx context.Context) {
	if err := _c.Exec(ctx); err != nil {
		panic(err)
	}
}

// OnConflict allows configuring the `ON CONFLICT` / `ON DUPLICATE KEY` clause
// of the `INSERT` statement. For example:
//
//	client.KeyValue.CreateBulk(builders...).
//		OnConflict(
//			// Update the row with the new values
//			// the was proposed for insertion.
//			sql.ResolveWithNewValues(),
//		).
//		// Override some of the fields with custom
//		// update values.
//		Update(func(u *ent.KeyValueUpsert) {
//			SetKey(v+v).
//		}).
//		Exec(ctx)
func (_c *KeyValueCreateBulk) OnConflict(opts ...sql.ConflictOption) *KeyValueUpsertBulk {
	_c.conflict = opts
	return &KeyValueUpsertBulk{
		create: _c,
	}
}

// OnConflictColumns calls `OnConflict` and configures the columns
// as conflict target. Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//		OnConflict(sql.ConflictColumns(columns...)).
//		Exec(ctx)
func (_c *KeyValueCreateBulk) OnConflictColumns(columns ...string) *KeyValueUpsertBulk {
	_c.conflict = append(_c.conflict, sql.ConflictColumns(columns...))
	return &KeyValueUpsertBulk{
		create: _c,
	}
}

// KeyValueUpsertBulk is the builder for "upsert"-ing
// a bulk of KeyValue nodes.
type KeyValueUpsertBulk struct {
	create *KeyValueCreateBulk
}

// UpdateNewValues updates the mutable fields using the new values that
// were set on create. Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//		OnConflict(
//			sql.ResolveWithNewValues(),
//		).
//		Exec(ctx)
func (u *KeyValueUpsertBulk) UpdateNewValues() *KeyValueUpsertBulk {
	u.create.conflict = append(u.create.conflict, sql.ResolveWithNewValues())
	u.create.conflict = append(u.create.conflict, sql.ResolveWith(func(s *sql.UpdateSet) {
		for _, b := range u.create.builders {
			if _, exists := b.mutation.Key(); exists {
				s.SetIgnore(keyvalue.FieldKey)
			}
		}
	}))
	return u
}

// Ignore sets each column to itself in case of conflict.
// Using this option is equivalent to using:
//
//	client.KeyValue.Create().
//		OnConflict(sql.ResolveWithIgnore()).
//		Exec(ctx)
func (u *KeyValueUpsertBulk) Ignore() *KeyValueUpsertBulk {
	u.create.conflict = append(u.create.conflict, sql.ResolveWithIgnore())
	return u
}

// DoNothing configures the conflict_action to `DO NOTHING`.
// Supported only by SQLite and PostgreSQL.
func (u *KeyValueUpsertBulk) DoNothing() *KeyValueUpsertBulk {
	u.create.conflict = append(u.create.conflict, sql.DoNothing())
	return u
}

// Update allows overriding fields `UPDATE` values. See the KeyValueCreateBulk.OnConflict
// documentation for more info.
func (u *KeyValueUpsertBulk) Update(set func(*KeyValueUpsert)) *KeyValueUpsertBulk {
	u.create.conflict = append(u.create.conflict, sql.ResolveWith(func(update *sql.UpdateSet) {
		set(&KeyValueUpsert{UpdateSet: update})
	}))
	return u
}

// SetValue sets the "value" field.
func (u *KeyValueUpsertBulk) SetValue(v string) *KeyValueUpsertBulk {
	return u.Update(func(s *KeyValueUpsert) {
		s.SetValue(v)
	})
}

// UpdateValue sets the "value" field to the value that was provided on create.
func (u *KeyValueUpsertBulk) UpdateValue() *KeyValueUpsertBulk {
	return u.Update(func(s *KeyValueUpsert) {
		s.UpdateValue()
	})
}

// SetUpdatedAt sets the "updated_at" field.
func (u *KeyValueUpsertBulk) SetUpdatedAt(v time.Time) *KeyValueUpsertBulk {
	return u.Update(func(s *KeyValueUpsert) {
		s.SetUpdatedAt(v)
	})
}

// UpdateUpdatedAt sets the "updated_at" field to the value that was provided on create.
func (u *KeyValueUpsertBulk) UpdateUpdatedAt() *KeyValueUpsertBulk {
	return u.Update(func(s *KeyValueUpsert) {
		s.UpdateUpdatedAt()
	})
}

// Exec executes the query.
func (u *KeyValueUpsertBulk) Exec(ctx context.Context) error {
	if u.create.err != nil {
		return u.create.err
	}
	for i, b := range u.create.builders {
		if len(b.conflict) != 0 {
			return fmt.Errorf("ent: OnConflict was set for builder %d. Set it on the KeyValueCreateBulk instead", i)
		}
	}
	if len(u.create.conflict) == 0 {
		return errors.New("ent: missing options for KeyValueCreateBulk.OnConflict")
	}
	return u.create.Exec(ctx)
}

// ExecX is like Exec, but panics if an error occurs.
func (u *KeyValueUpsertBulk) ExecX(ctx context.Context) {
	if err := u.create.Exec(ctx); err != nil {
		panic(err)
	}
}
