// Package service orchestrates the application wizard: step transitions,
// validation gating, fee recomputation, draft saves, and final submission.
// The Wizard owns the canonical aggregate; every other component works on
// copies.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"permitdesk/internal/draft"
	"permitdesk/internal/fees"
	"permitdesk/internal/platform/metrics"
	"permitdesk/internal/sentinel"
	"permitdesk/internal/submit"
	"permitdesk/internal/wizard/models"
	"permitdesk/internal/wizard/validation"
	dErrors "permitdesk/pkg/domain-errors"
)

// DraftStore is the persistence surface the wizard depends on.
type DraftStore interface {
	Save(ctx context.Context, st models.ApplicationState) error
	Load(ctx context.Context) (*draft.Record, error)
	Clear(ctx context.Context) error
}

// NavResult reports the outcome of a navigation operation. A non-empty
// ValidationErrors map means the step did not change.
type NavResult struct {
	Step             int
	ValidationErrors map[string]string
}

// Option configures a Wizard.
type Option func(*Wizard)

func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		if logger != nil {
			w.logger = logger
		}
	}
}

func WithClock(clock func() time.Time) Option {
	return func(w *Wizard) {
		if clock != nil {
			w.clock = clock
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Wizard) {
		w.metrics = m
	}
}

// Wizard is the application wizard state machine. All mutation happens under
// one mutex; handlers, the autosave worker, and fee-result goroutines only
// ever see consistent snapshots.
type Wizard struct {
	drafts    DraftStore
	submitter submit.Submitter
	logger    *slog.Logger
	clock     func() time.Time
	metrics   *metrics.Metrics
	compute   func(*models.ApplicationType, models.ProjectDetails) models.FeeBreakdown

	mu    sync.Mutex
	state models.ApplicationState

	// feeToken implements last-request-wins for async fee recomputation:
	// each dispatch takes a new token and a resolving computation is applied
	// only if its token is still the newest.
	feeToken uint64
}

// New creates a Wizard with a fresh aggregate. Call Restore to resume a
// persisted draft.
func New(drafts DraftStore, submitter submit.Submitter, opts ...Option) *Wizard {
	w := &Wizard{
		drafts:    drafts,
		submitter: submitter,
		logger:    slog.Default(),
		clock:     time.Now,
		compute:   fees.Compute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Restore loads the persisted draft, if any, into the aggregate. A missing
// or unreadable draft leaves the wizard fresh; the failure is logged, never
// surfaced.
func (w *Wizard) Restore(ctx context.Context) {
	rec, err := w.drafts.Load(ctx)
	if err != nil {
		w.logger.Warn("draft_restore_failed", "error", err)
		return
	}
	if rec == nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = rec.State()
	if w.state.ApplicationType != nil {
		w.dispatchFeeRecalcLocked()
	}
	if w.metrics != nil {
		w.metrics.DraftsRestored.Inc()
	}
	w.logger.Info("draft_restored",
		"current_step", w.state.CurrentStep,
		"saved_at", rec.SavedAt,
	)
}

// State returns a deep-copied snapshot of the aggregate, stamped with its
// capture time so a save of this snapshot can be ordered against others.
func (w *Wizard) State() models.ApplicationState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Snapshot implements the autosave worker's state source.
func (w *Wizard) Snapshot() models.ApplicationState {
	return w.State()
}

// Next advances to the following step. The current step must validate
// cleanly; otherwise the errors are recorded and the step stays put.
// A successful advance triggers an immediate draft save.
func (w *Wizard) Next(ctx context.Context) (NavResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return NavResult{}, err
	}

	errs := validation.Step(w.state.CurrentStep, &w.state, w.clock())
	if len(errs) > 0 {
		w.state.ValidationErrors = errs
		if w.metrics != nil {
			w.metrics.ValidationFailures.WithLabelValues(strconv.Itoa(w.state.CurrentStep)).Inc()
		}
		return NavResult{Step: w.state.CurrentStep, ValidationErrors: copyErrs(errs)}, nil
	}

	w.state.ValidationErrors = nil
	if w.state.CurrentStep < models.StepReview {
		w.state.CurrentStep++
	}
	if w.metrics != nil {
		w.metrics.StepsAdvanced.Inc()
	}
	w.saveDraftLocked(ctx)
	return NavResult{Step: w.state.CurrentStep}, nil
}

// Previous steps back without validating and without touching any step's
// stored data.
func (w *Wizard) Previous(_ context.Context) (NavResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return NavResult{}, err
	}
	if w.state.CurrentStep > 0 {
		w.state.CurrentStep--
	}
	return NavResult{Step: w.state.CurrentStep}, nil
}

// GoToStep jumps to any step unconditionally, e.g. "edit from review".
// Neither the source nor the target step is validated, and no data moves.
func (w *Wizard) GoToStep(_ context.Context, step int) (NavResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return NavResult{}, err
	}
	if step < 0 || step >= models.TotalSteps {
		return NavResult{}, dErrors.New(dErrors.CodeBadRequest, "step out of range")
	}
	w.state.CurrentStep = step
	return NavResult{Step: w.state.CurrentStep}, nil
}

// UpdateStep merges a partial update into one step's data slice. Updates to
// fee-relevant slices (application type, project details) dispatch an async
// fee recomputation.
func (w *Wizard) UpdateStep(_ context.Context, step int, patch models.StepPatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return err
	}
	if step < 0 || step >= models.TotalSteps {
		return dErrors.New(dErrors.CodeBadRequest, "step out of range")
	}

	switch step {
	case models.StepApplicationType:
		if patch.ApplicationTypeID == nil {
			return dErrors.New(dErrors.CodeBadRequest, "application_type_id is required for this step")
		}
		at, ok := models.LookupApplicationType(*patch.ApplicationTypeID)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "unknown application type")
		}
		w.state.ApplicationType = &at
		w.dispatchFeeRecalcLocked()

	case models.StepPersonalInfo:
		if patch.PersonalInfo == nil {
			return dErrors.New(dErrors.CodeBadRequest, "personal_info is required for this step")
		}
		patch.PersonalInfo.Apply(&w.state.PersonalInfo)

	case models.StepProjectDetails:
		if patch.ProjectDetails == nil {
			return dErrors.New(dErrors.CodeBadRequest, "project_details is required for this step")
		}
		patch.ProjectDetails.Apply(&w.state.ProjectDetails)
		w.dispatchFeeRecalcLocked()

	case models.StepDocuments:
		if patch.Documents == nil {
			return dErrors.New(dErrors.CodeBadRequest, "documents is required for this step")
		}
		w.state.Documents = append([]models.DocumentRef(nil), (*patch.Documents)...)

	case models.StepReview:
		return dErrors.New(dErrors.CodeBadRequest, "review step has no editable data")
	}
	return nil
}

// Submit finishes the application. Only valid from the review step; steps
// 0-3 are re-validated first. On success the draft is cleared and the
// aggregate becomes terminal; on submitter failure everything stays intact
// so the citizen can retry.
func (w *Wizard) Submit(ctx context.Context) (submit.Receipt, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return submit.Receipt{}, err
	}
	if w.state.CurrentStep != models.StepReview {
		return submit.Receipt{}, dErrors.New(dErrors.CodeInvalidState, "submission is only allowed from the review step")
	}

	now := w.clock()
	errs := map[string]string{}
	for step := models.StepApplicationType; step <= models.StepDocuments; step++ {
		for field, msg := range validation.Step(step, &w.state, now) {
			errs[field] = msg
		}
	}
	if len(errs) > 0 {
		w.state.ValidationErrors = errs
		if w.metrics != nil {
			w.metrics.Submissions.WithLabelValues("rejected").Inc()
		}
		return submit.Receipt{}, dErrors.New(dErrors.CodeValidation, "application has validation errors")
	}
	w.state.ValidationErrors = nil

	receipt, err := w.submitter.Submit(ctx, w.state.Clone())
	if err != nil {
		if w.metrics != nil {
			w.metrics.Submissions.WithLabelValues("failed").Inc()
		}
		return submit.Receipt{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "submission failed, please try again")
	}

	if err := w.drafts.Clear(ctx); err != nil {
		w.logger.Warn("draft_clear_failed", "error", err, "receipt_id", receipt.ID)
	}
	w.state = models.ApplicationState{Submitted: true}
	// Orphan any in-flight fee computation so a late result cannot
	// repopulate the cleared aggregate.
	w.feeToken++
	if w.metrics != nil {
		w.metrics.Submissions.WithLabelValues("submitted").Inc()
	}
	return receipt, nil
}

// SaveNow persists the current draft immediately (the explicit "save draft"
// user action). The save is best-effort like every other draft write.
func (w *Wizard) SaveNow(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureMutableLocked(); err != nil {
		return err
	}
	w.saveDraftLocked(ctx)
	return nil
}

func (w *Wizard) ensureMutableLocked() error {
	if w.state.Submitted {
		return dErrors.New(dErrors.CodeInvalidState, "application already submitted")
	}
	return nil
}

func (w *Wizard) snapshotLocked() models.ApplicationState {
	snap := w.state.Clone()
	snap.CapturedAt = w.clock()
	return snap
}

// saveDraftLocked persists a snapshot and stamps LastSavedAt. Failures are
// logged and swallowed; the autosave worker retries on its next tick. A
// stale-write refusal means a newer draft is already on disk, which is fine.
func (w *Wizard) saveDraftLocked(ctx context.Context) {
	snap := w.snapshotLocked()
	if err := w.drafts.Save(ctx, snap); err != nil {
		if !errors.Is(err, sentinel.ErrStaleWrite) {
			w.logger.Warn("draft_save_failed", "error", err)
		}
		return
	}
	now := snap.CapturedAt
	w.state.LastSavedAt = &now
}

// dispatchFeeRecalcLocked starts an async fee computation carrying a fresh
// token. The aggregate shows Calculating until the newest token resolves;
// superseded results are discarded silently.
func (w *Wizard) dispatchFeeRecalcLocked() {
	w.feeToken++
	token := w.feeToken
	w.state.Calculating = true

	var at *models.ApplicationType
	if w.state.ApplicationType != nil {
		c := *w.state.ApplicationType
		at = &c
	}
	pd := w.state.ProjectDetails

	go func() {
		bd := w.compute(at, pd)
		w.applyFeeResult(token, bd)
	}()
}

func (w *Wizard) applyFeeResult(token uint64, bd models.FeeBreakdown) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if token != w.feeToken {
		if w.metrics != nil {
			w.metrics.FeeResultsDropped.Inc()
		}
		return
	}
	w.state.FeeBreakdown = &bd
	w.state.Calculating = false
	if w.metrics != nil {
		result := "applied"
		if len(bd.Items) == 0 {
			result = "empty"
		}
		w.metrics.FeeComputations.WithLabelValues(result).Inc()
	}
}

func copyErrs(errs map[string]string) map[string]string {
	out := make(map[string]string, len(errs))
	for k, v := range errs {
		out[k] = v
	}
	return out
}
