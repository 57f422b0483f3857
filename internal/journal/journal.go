package journal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/lorawatch-core/internal/infrastructure/database"
	"github.com/nerrad567/lorawatch-core/internal/observer"
)

// Kind separates the general event log from the alert log.
type Kind string

// Journal kinds.
const (
	KindEvent Kind = "event"
	KindAlert Kind = "alert"
)

// Query limits for Recent.
const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// timeLayout sorts lexically in chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const writeTimeout = 2 * time.Second

// Entry is one journal line.
type Entry struct {
	ID         string    `json:"id"`
	Kind       Kind      `json:"kind"`
	DevEUI     string    `json:"dev_eui,omitempty"`
	Message    string    `json:"message"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Logger defines the logging interface used by the Journal.
type Logger interface {
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}

// Journal stores event and alert lines in SQLite.
//
// It is an observer.Listener: registered with the notifier it records
// every event and alert notification.
type Journal struct {
	db     *database.DB
	now    func() time.Time
	logger Logger
}

// New creates a Journal on db. The journal table must already exist.
func New(db *database.DB) *Journal {
	return &Journal{
		db:     db,
		now:    time.Now,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the journal.
func (j *Journal) SetLogger(logger Logger) {
	j.logger = logger
}

// ParseKind validates a kind name. The empty string is not a kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindEvent, KindAlert:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Record appends a line and returns the stored entry.
func (j *Journal) Record(ctx context.Context, kind Kind, devEUI, message string) (Entry, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return Entry{}, err
	}
	if strings.TrimSpace(message) == "" {
		return Entry{}, ErrEmptyMessage
	}

	e := Entry{
		ID:         uuid.NewString(),
		Kind:       kind,
		DevEUI:     devEUI,
		Message:    message,
		RecordedAt: j.now().UTC(),
	}

	_, err := j.db.ExecContext(ctx,
		"INSERT INTO journal (id, kind, dev_eui, message, recorded_at) VALUES (?, ?, ?, ?, ?)",
		e.ID, string(e.Kind), e.DevEUI, e.Message, e.RecordedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("recording %s: %w", kind, err)
	}
	return e, nil
}

// Recent returns the newest entries first. An empty kind returns both
// kinds. A non-positive limit uses DefaultLimit; limits above MaxLimit
// are capped.
func (j *Journal) Recent(ctx context.Context, kind Kind, limit int) ([]Entry, error) {
	if kind != "" {
		if _, err := ParseKind(string(kind)); err != nil {
			return nil, err
		}
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	query := "SELECT id, kind, dev_eui, message, recorded_at FROM journal"
	args := []any{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY recorded_at DESC, rowid DESC LIMIT ?"
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var e Entry
		var k, recordedAt string
		if err := rows.Scan(&e.ID, &k, &e.DevEUI, &e.Message, &recordedAt); err != nil {
			return nil, fmt.Errorf("scanning journal row: %w", err)
		}
		e.Kind = Kind(k)
		e.RecordedAt, err = time.Parse(timeLayout, recordedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing journal timestamp %q: %w", recordedAt, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal: %w", err)
	}
	return entries, nil
}

// Notify implements observer.Listener. Event and alert lines are stored;
// device changes are ignored.
func (j *Journal) Notify(n observer.Notification) {
	var kind Kind
	switch n.Kind {
	case observer.KindEvent:
		kind = KindEvent
	case observer.KindAlert:
		kind = KindAlert
	default:
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if _, err := j.Record(ctx, kind, n.DevEUI, n.Text); err != nil {
		j.logger.Error("journal write failed", "kind", string(kind), "error", err)
	}
}
