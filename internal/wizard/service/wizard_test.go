package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permitdesk/internal/draft"
	"permitdesk/internal/draft/store"
	"permitdesk/internal/submit"
	"permitdesk/internal/wizard/models"
	dErrors "permitdesk/pkg/domain-errors"
)

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fakeSubmitter struct {
	err   error
	calls int
}

func (f *fakeSubmitter) Submit(_ context.Context, st models.ApplicationState) (submit.Receipt, error) {
	f.calls++
	if f.err != nil {
		return submit.Receipt{}, f.err
	}
	return submit.Receipt{
		ID:          "APP-TEST",
		Type:        st.ApplicationType.ID,
		SubmittedAt: testNow,
		Status:      "submitted",
	}, nil
}

type fixture struct {
	wizard    *Wizard
	persister *draft.Persister
	submitter *fakeSubmitter
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	persister := draft.New(store.NewInMemory(), draft.WithClock(clock))
	submitter := &fakeSubmitter{}
	w := New(persister, submitter, WithClock(clock))
	return &fixture{wizard: w, persister: persister, submitter: submitter}
}

func (f *fixture) selectType(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.wizard.UpdateStep(context.Background(), models.StepApplicationType,
		models.StepPatch{ApplicationTypeID: &id}))
}

func (f *fixture) fillPersonalInfo(t *testing.T) {
	t.Helper()
	pi := models.PersonalInfoPatch{
		FirstName:            ptr("Marcia"),
		LastName:             ptr("Brown"),
		Email:                ptr("marcia.brown@example.com"),
		Phone:                ptr("876-555-1234"),
		Address:              ptr("12 Half Way Tree Road"),
		Parish:               ptr("St. Andrew"),
		IdentificationType:   ptr("national-id"),
		IdentificationNumber: ptr("ID-443210"),
		TRN:                  ptr("123-456-789"),
		DateOfBirth:          ptr("1988-06-14"),
	}
	require.NoError(t, f.wizard.UpdateStep(context.Background(), models.StepPersonalInfo,
		models.StepPatch{PersonalInfo: &pi}))
}

func (f *fixture) fillProjectDetails(t *testing.T) {
	t.Helper()
	pd := models.ProjectDetailsPatch{
		ProjectTitle:       ptr("Trench repair"),
		ProjectDescription: ptr("Repair collapsed drainage trench"),
		ProjectLocation:    ptr("Constant Spring Road"),
		ProjectDuration:    intPtr(14),
		StartDate:          ptr("2026-03-10"),
		EndDate:            ptr("2026-03-24"),
		UrgencyLevel:       urgencyPtr(models.UrgencyStandard),
		TrafficImpact:      trafficPtr(models.TrafficModerate),
		WorkSchedule:       schedulePtr(models.ScheduleBusinessHours),
	}
	require.NoError(t, f.wizard.UpdateStep(context.Background(), models.StepProjectDetails,
		models.StepPatch{ProjectDetails: &pd}))
}

func (f *fixture) attachDocuments(t *testing.T) {
	t.Helper()
	docs := []models.DocumentRef{{ID: "doc-1", Name: "site-plan.pdf", Category: "Site Plan"}}
	require.NoError(t, f.wizard.UpdateStep(context.Background(), models.StepDocuments,
		models.StepPatch{Documents: &docs}))
}

// fillAll walks the wizard legitimately to the review step.
func (f *fixture) fillAll(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	f.selectType(t, "road-permit")
	f.fillPersonalInfo(t)
	f.fillProjectDetails(t)
	f.attachDocuments(t)
	for i := 0; i < 4; i++ {
		res, err := f.wizard.Next(ctx)
		require.NoError(t, err)
		require.Empty(t, res.ValidationErrors, "step %d should validate", i)
	}
	require.Equal(t, models.StepReview, f.wizard.State().CurrentStep)
}

func ptr(s string) *string                                { return &s }
func intPtr(n int) *int                                   { return &n }
func urgencyPtr(u models.UrgencyLevel) *models.UrgencyLevel { return &u }
func trafficPtr(v models.TrafficImpact) *models.TrafficImpact { return &v }
func schedulePtr(v models.WorkSchedule) *models.WorkSchedule  { return &v }

func TestNextBlockedByValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.wizard.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Step)
	assert.Contains(t, res.ValidationErrors, "application_type")

	st := f.wizard.State()
	assert.Equal(t, 0, st.CurrentStep)
	assert.Contains(t, st.ValidationErrors, "application_type")
}

func TestNextAdvancesAndSavesDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectType(t, "road-permit")

	res, err := f.wizard.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepPersonalInfo, res.Step)
	assert.Empty(t, res.ValidationErrors)

	st := f.wizard.State()
	assert.Empty(t, st.ValidationErrors)
	require.NotNil(t, st.LastSavedAt)

	rec, err := f.persister.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, models.StepPersonalInfo, rec.CurrentStep)
	assert.Equal(t, "road-permit", rec.ApplicationType)
}

func TestTRNFormatBlocksAdvance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectType(t, "road-permit")
	_, err := f.wizard.Next(ctx)
	require.NoError(t, err)

	f.fillPersonalInfo(t)
	badTRN := "12-34"
	require.NoError(t, f.wizard.UpdateStep(ctx, models.StepPersonalInfo,
		models.StepPatch{PersonalInfo: &models.PersonalInfoPatch{TRN: &badTRN}}))

	res, err := f.wizard.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StepPersonalInfo, res.Step)
	assert.Contains(t, res.ValidationErrors, "trn")
	assert.Equal(t, models.StepPersonalInfo, f.wizard.State().CurrentStep)
}

func TestPreviousFloorsAtZeroAndSkipsValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.wizard.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Step)

	f.selectType(t, "road-permit")
	_, err = f.wizard.Next(ctx)
	require.NoError(t, err)

	// Step 1 is incomplete but going back never validates.
	res, err = f.wizard.Previous(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Step)
}

func TestGoToStepJumpsUnconditionally(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.wizard.GoToStep(ctx, models.StepReview)
	require.NoError(t, err)
	assert.Equal(t, models.StepReview, res.Step)

	_, err = f.wizard.GoToStep(ctx, 7)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = f.wizard.GoToStep(ctx, -1)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestGoToStepRoundTripLeavesDataIntact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectType(t, "road-permit")
	f.fillPersonalInfo(t)
	f.fillProjectDetails(t)
	f.attachDocuments(t)

	before := f.wizard.State()

	_, err := f.wizard.GoToStep(ctx, models.StepReview)
	require.NoError(t, err)
	_, err = f.wizard.GoToStep(ctx, before.CurrentStep)
	require.NoError(t, err)

	after := f.wizard.State()
	assert.Equal(t, before.ApplicationType, after.ApplicationType)
	assert.Equal(t, before.PersonalInfo, after.PersonalInfo)
	assert.Equal(t, before.ProjectDetails, after.ProjectDetails)
	assert.Equal(t, before.Documents, after.Documents)
}

func TestUpdateStepRejectsMismatchedPatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.wizard.UpdateStep(ctx, models.StepApplicationType, models.StepPatch{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = f.wizard.UpdateStep(ctx, models.StepReview, models.StepPatch{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))

	err = f.wizard.UpdateStep(ctx, 9, models.StepPatch{})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestUpdateStepUnknownApplicationType(t *testing.T) {
	f := newFixture(t)
	id := "no-such-permit"
	err := f.wizard.UpdateStep(context.Background(), models.StepApplicationType,
		models.StepPatch{ApplicationTypeID: &id})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestFeeRecomputationResolves(t *testing.T) {
	f := newFixture(t)
	f.selectType(t, "road-permit")
	f.fillProjectDetails(t)

	require.Eventually(t, func() bool {
		st := f.wizard.State()
		return !st.Calculating && st.FeeBreakdown != nil
	}, time.Second, 5*time.Millisecond)

	st := f.wizard.State()
	// base 2500 + moderate traffic 500 -> 3000, processing 150, GCT 520.
	assert.Equal(t, models.Money(3670), st.FeeBreakdown.Total)
	assert.Equal(t, "JMD", st.FeeBreakdown.Currency)
}

func TestStaleFeeResultIsDiscarded(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.wizard.compute = func(_ *models.ApplicationType, pd models.ProjectDetails) models.FeeBreakdown {
		if pd.ProjectDuration == 11 {
			<-release
		}
		return models.FeeBreakdown{Total: models.Money(pd.ProjectDuration), Currency: "JMD"}
	}
	f.selectType(t, "road-permit")
	ctx := context.Background()

	require.NoError(t, f.wizard.UpdateStep(ctx, models.StepProjectDetails,
		models.StepPatch{ProjectDetails: &models.ProjectDetailsPatch{ProjectDuration: intPtr(11)}}))
	require.NoError(t, f.wizard.UpdateStep(ctx, models.StepProjectDetails,
		models.StepPatch{ProjectDetails: &models.ProjectDetailsPatch{ProjectDuration: intPtr(22)}}))

	require.Eventually(t, func() bool {
		st := f.wizard.State()
		return !st.Calculating && st.FeeBreakdown != nil && st.FeeBreakdown.Total == 22
	}, time.Second, 5*time.Millisecond)

	// Let the superseded computation finish; its result must be dropped.
	close(release)
	time.Sleep(50 * time.Millisecond)
	st := f.wizard.State()
	assert.Equal(t, models.Money(22), st.FeeBreakdown.Total)
	assert.False(t, st.Calculating)
}

func TestSubmitOnlyFromReview(t *testing.T) {
	f := newFixture(t)
	_, err := f.wizard.Submit(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	assert.Zero(t, f.submitter.calls)
}

func TestSubmitRevalidatesEarlierSteps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectType(t, "road-permit")

	// Jump straight to review past incomplete steps.
	_, err := f.wizard.GoToStep(ctx, models.StepReview)
	require.NoError(t, err)

	_, err = f.wizard.Submit(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	assert.Zero(t, f.submitter.calls)

	st := f.wizard.State()
	assert.Contains(t, st.ValidationErrors, "trn")
	assert.Contains(t, st.ValidationErrors, "documents")
}

func TestSubmitSuccessClearsEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillAll(t)

	receipt, err := f.wizard.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "APP-TEST", receipt.ID)
	assert.Equal(t, "road-permit", receipt.Type)
	assert.Equal(t, "submitted", receipt.Status)

	rec, err := f.persister.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec, "draft must be cleared after submission")

	st := f.wizard.State()
	assert.Nil(t, st.ApplicationType)
	assert.Equal(t, models.PersonalInfo{}, st.PersonalInfo)

	// The terminal state is not re-enterable.
	_, err = f.wizard.Next(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	err = f.wizard.UpdateStep(ctx, models.StepPersonalInfo,
		models.StepPatch{PersonalInfo: &models.PersonalInfoPatch{FirstName: ptr("x")}})
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	_, err = f.wizard.Submit(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
}

func TestSubmitFailureKeepsStateAndDraft(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fillAll(t)
	f.submitter.err = errors.New("upstream unavailable")

	_, err := f.wizard.Submit(ctx)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))

	st := f.wizard.State()
	assert.Equal(t, models.StepReview, st.CurrentStep)
	assert.NotNil(t, st.ApplicationType)

	rec, err := f.persister.Load(ctx)
	require.NoError(t, err)
	assert.NotNil(t, rec, "draft must survive a failed submission")

	// Retry succeeds once the collaborator recovers.
	f.submitter.err = nil
	receipt, err := f.wizard.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "submitted", receipt.Status)
}

func TestSnapshotCarriesCaptureTime(t *testing.T) {
	f := newFixture(t)
	f.selectType(t, "road-permit")

	st := f.wizard.State()
	assert.True(t, st.CapturedAt.Equal(testNow))
}

func TestSaveNow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.selectType(t, "road-permit")

	require.NoError(t, f.wizard.SaveNow(ctx))

	rec, err := f.persister.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "road-permit", rec.ApplicationType)
}

func TestRestoreResumesDraft(t *testing.T) {
	clock := func() time.Time { return testNow }
	kv := store.NewInMemory()
	persister := draft.New(kv, draft.WithClock(clock))

	first := newFixtureWith(t, persister)
	first.selectType(t, "road-permit")
	first.fillPersonalInfo(t)
	_, err := first.wizard.Next(context.Background())
	require.NoError(t, err)

	second := newFixtureWith(t, persister)
	second.wizard.Restore(context.Background())

	st := second.wizard.State()
	assert.Equal(t, models.StepPersonalInfo, st.CurrentStep)
	require.NotNil(t, st.ApplicationType)
	assert.Equal(t, "road-permit", st.ApplicationType.ID)
	assert.Equal(t, "Marcia", st.PersonalInfo.FirstName)
	require.NotNil(t, st.LastSavedAt)

	// Restoring a typed application re-derives the fee breakdown.
	require.Eventually(t, func() bool {
		st := second.wizard.State()
		return !st.Calculating && st.FeeBreakdown != nil
	}, time.Second, 5*time.Millisecond)
}

func TestRestoreWithNoDraftStaysFresh(t *testing.T) {
	f := newFixture(t)
	f.wizard.Restore(context.Background())
	st := f.wizard.State()
	assert.Equal(t, 0, st.CurrentStep)
	assert.Nil(t, st.ApplicationType)
}

func newFixtureWith(t *testing.T, persister *draft.Persister) *fixture {
	t.Helper()
	clock := func() time.Time { return testNow }
	submitter := &fakeSubmitter{}
	return &fixture{
		wizard:    New(persister, submitter, WithClock(clock)),
		persister: persister,
		submitter: submitter,
	}
}
