// Package submit hands a completed application off to the receiving system
// and returns the citizen's receipt.
package submit

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	dErrors "permitdesk/pkg/domain-errors"

	"permitdesk/internal/wizard/models"
)

// Receipt is the submission handoff passed to the navigation collaborator.
type Receipt struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	SubmittedAt time.Time `json:"submitted_at"`
	Status      string    `json:"status"`
}

// Submitter accepts a finished application. A failure leaves the wizard
// pre-submission so the citizen can retry.
type Submitter interface {
	Submit(ctx context.Context, st models.ApplicationState) (Receipt, error)
}

// Option configures the local submitter.
type Option func(*Local)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Local) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(l *Local) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// Local issues receipts in-process. Receipt IDs are time-based and unique
// only within a session; two submissions in the same millisecond get a
// monotonic bump rather than a duplicate.
type Local struct {
	logger *slog.Logger
	clock  func() time.Time

	mu         sync.Mutex
	lastMillis int64
}

// NewLocal creates a Local submitter.
func NewLocal(opts ...Option) *Local {
	l := &Local{
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit issues a receipt for the application.
func (l *Local) Submit(_ context.Context, st models.ApplicationState) (Receipt, error) {
	if st.ApplicationType == nil {
		return Receipt{}, dErrors.New(dErrors.CodeInvariantViolation, "application has no type")
	}

	now := l.clock()
	millis := now.UnixMilli()

	l.mu.Lock()
	if millis <= l.lastMillis {
		millis = l.lastMillis + 1
	}
	l.lastMillis = millis
	l.mu.Unlock()

	receipt := Receipt{
		ID:          ReceiptID(millis),
		Type:        st.ApplicationType.ID,
		SubmittedAt: now,
		Status:      "submitted",
	}

	l.logger.Info("application_submitted",
		"receipt_id", receipt.ID,
		"application_type", receipt.Type,
	)
	return receipt, nil
}

// ReceiptID formats a receipt identifier from epoch milliseconds:
// "APP-" plus the uppercased base36 encoding.
func ReceiptID(millis int64) string {
	return "APP-" + strings.ToUpper(strconv.FormatInt(millis, 36))
}
