package submit

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"permitdesk/internal/wizard/models"
)

func TestReceiptIDFormat(t *testing.T) {
	millis := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC).UnixMilli()
	id := ReceiptID(millis)

	assert.True(t, strings.HasPrefix(id, "APP-"))
	assert.Equal(t, strings.ToUpper(id), id)
	assert.NotContains(t, id[4:], "-")
}

func TestSubmitIssuesReceipt(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	at, ok := models.LookupApplicationType("event-permit")
	require.True(t, ok)

	l := NewLocal(WithClock(func() time.Time { return now }))
	receipt, err := l.Submit(context.Background(), models.ApplicationState{ApplicationType: &at})
	require.NoError(t, err)

	assert.Equal(t, ReceiptID(now.UnixMilli()), receipt.ID)
	assert.Equal(t, "event-permit", receipt.Type)
	assert.Equal(t, "submitted", receipt.Status)
	assert.True(t, receipt.SubmittedAt.Equal(now))
}

func TestSubmitWithoutTypeFails(t *testing.T) {
	l := NewLocal()
	_, err := l.Submit(context.Background(), models.ApplicationState{})
	assert.Error(t, err)
}

func TestSameMillisecondGetsDistinctIDs(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	at, ok := models.LookupApplicationType("road-permit")
	require.True(t, ok)

	l := NewLocal(WithClock(func() time.Time { return now }))

	first, err := l.Submit(context.Background(), models.ApplicationState{ApplicationType: &at})
	require.NoError(t, err)
	second, err := l.Submit(context.Background(), models.ApplicationState{ApplicationType: &at})
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}
