package store

import (
	"context"
	"fmt"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/ent"
	"github.com/VitoPalumboPodcast/Invalsi/ent/keyvalue"
)

// KVRepo is a string key-value table. It satisfies history.KV.
type KVRepo struct {
	client *ent.Client
}

// Get returns the value stored under key.
func (r *KVRepo) Get(ctx context.Context, key string) (string, bool, error) {
	kv, err := r.client.KeyValue.Query().
		Where(keyvalue.Key(key)).
		Only(ctx)
	if err != nil {
		if ent.IsNotFound(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %q: %w", key, err)
	}
	return kv.Value, true, nil
}

// Set stores value under key, replacing any previous value.
func (r *KVRepo) Set(ctx context.Context, key, value string) error {
	err := r.client.KeyValue.Create().
		SetKey(key).
		SetValue(value).
		SetUpdatedAt(time.Now()).
		OnConflictColumns(keyvalue.FieldKey).
		UpdateNewValues().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}
