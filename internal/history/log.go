package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// DefaultKey is the KV key holding the serialized log.
const DefaultKey = "invalsi_history"

// corruptSuffix prefixes the keys that keep an undecodable log before it is
// replaced. Each copy is stamped with the Unix milliseconds of the append.
const corruptSuffix = ".corrupt."

// KV is the persistent key-value port. Writes are last-write-wins.
type KV interface {
	// Get returns the value for key and whether it exists.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
}

// Log is the append-only history of test results. The whole log is
// rewritten on every append.
type Log struct {
	kv     KV
	key    string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(l *Log) { l.key = key }
}

// WithLogger sets the logger used for recoverable read failures.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Log) { l.logger = logger }
}

// WithClock sets the clock used to stamp preserved corrupt values.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// NewLog creates a Log over kv.
func NewLog(kv KV, opts ...Option) *Log {
	l := &Log{kv: kv, key: DefaultKey, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadAll returns every stored record in append order. A missing,
// unreadable, or malformed log yields an empty slice.
func (l *Log) LoadAll(ctx context.Context) []Record {
	records, _, err := l.load(ctx)
	if err != nil {
		l.logger.Warn("history unreadable, treating as empty", "key", l.key, "error", err)
		return []Record{}
	}
	return records
}

// Append adds rec to the end of the log and persists the whole log. A read
// failure is returned and leaves the stored log untouched. An undecodable
// log is copied to a stamped corrupt key and a new log is started.
func (l *Log) Append(ctx context.Context, rec Record) error {
	records, raw, err := l.load(ctx)
	if err != nil {
		if raw == "" {
			return err
		}
		backup := l.corruptKey()
		l.logger.Warn("history corrupt, starting a new log", "key", l.key, "backup", backup, "error", err)
		if serr := l.kv.Set(ctx, backup, raw); serr != nil {
			return fmt.Errorf("preserve corrupt history: %w", serr)
		}
		records = nil
	}

	records = append(records, rec)
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	if err := l.kv.Set(ctx, l.key, string(data)); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

func (l *Log) corruptKey() string {
	return fmt.Sprintf("%s%s%d", l.key, corruptSuffix, l.now().UnixMilli())
}

// Find returns the record with the given id.
func (l *Log) Find(ctx context.Context, id string) (Record, bool) {
	for _, r := range l.LoadAll(ctx) {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

// load returns the decoded records and the raw stored value.
func (l *Log) load(ctx context.Context) ([]Record, string, error) {
	raw, ok, err := l.kv.Get(ctx, l.key)
	if err != nil {
		return nil, "", fmt.Errorf("read history: %w", err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return []Record{}, "", nil
	}

	var records []Record
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		return nil, raw, fmt.Errorf("decode history: %w", err)
	}
	if records == nil {
		records = []Record{}
	}
	return records, raw, nil
}
