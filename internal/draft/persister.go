package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"permitdesk/internal/draft/store"
	"permitdesk/internal/sentinel"
	"permitdesk/internal/wizard/models"
)

// Option configures a Persister.
type Option func(*Persister)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Persister) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(p *Persister) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// Persister reads and writes the single draft record. The wizard's
// synchronous saves and the autosave worker both write through here, so the
// check-then-set in Save runs under its own mutex.
type Persister struct {
	kv     store.KV
	logger *slog.Logger
	clock  func() time.Time

	mu sync.Mutex
}

// New creates a Persister backed by kv.
func New(kv store.KV, opts ...Option) *Persister {
	p := &Persister{
		kv:     kv,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Save serializes the snapshot under the draft key. The record is stamped
// with the snapshot's capture time, not the write time: an autosave that
// captured state and then lost the race to a synchronous save carries an
// older stamp, and the record already on disk wins. A refused save returns
// sentinel.ErrStaleWrite so callers can treat it as a skip, not a failure.
func (p *Persister) Save(ctx context.Context, st models.ApplicationState) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rec := recordFromState(st)
	rec.SavedAt = st.CapturedAt
	if rec.SavedAt.IsZero() {
		rec.SavedAt = p.clock()
	}

	if existing, err := p.Load(ctx); err == nil && existing != nil && existing.SavedAt.After(rec.SavedAt) {
		p.logger.Info("draft_save_skipped_stale",
			"existing_saved_at", existing.SavedAt,
			"attempted_saved_at", rec.SavedAt,
		)
		return sentinel.ErrStaleWrite
	}

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("serialize draft: %w", err)
	}
	if err := p.kv.Set(ctx, DraftKey, payload); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}
	return nil
}

// Load returns the saved draft, or nil if none exists. A corrupt or
// unrecognized record is logged and reported as "no draft" rather than
// failing the wizard.
func (p *Persister) Load(ctx context.Context) (*Record, error) {
	payload, err := p.kv.Get(ctx, DraftKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		p.logger.Warn("draft_record_unreadable", "error", err)
		return nil, nil
	}
	if rec.Version != recordVersion {
		p.logger.Warn("draft_record_version_unknown", "version", rec.Version)
		return nil, nil
	}
	return &rec, nil
}

// Clear removes the draft record. Called on successful submission.
func (p *Persister) Clear(ctx context.Context) error {
	if err := p.kv.Remove(ctx, DraftKey); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}

// SaveLanguage persists the UI language preference on behalf of the
// localization collaborator.
func (p *Persister) SaveLanguage(ctx context.Context, lang string) error {
	if err := p.kv.Set(ctx, LanguageKey, []byte(lang)); err != nil {
		return fmt.Errorf("persist language preference: %w", err)
	}
	return nil
}

// LoadLanguage returns the persisted language preference, or empty when none
// has been saved.
func (p *Persister) LoadLanguage(ctx context.Context) (string, error) {
	payload, err := p.kv.Get(ctx, LanguageKey)
	if errors.Is(err, sentinel.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load language preference: %w", err)
	}
	return string(payload), nil
}
