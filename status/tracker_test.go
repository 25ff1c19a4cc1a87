package status

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docindex/core"
	"github.com/poiesic/docindex/storage"
)

// fakeRepo is an in-memory DocumentRepository for tracker tests.
type fakeRepo struct {
	docs map[uuid.UUID]*core.Document
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[uuid.UUID]*core.Document)}
}

func (f *fakeRepo) CreateDocument(ctx context.Context, doc *core.Document) error {
	copied := *doc
	f.docs[doc.ID] = &copied
	return nil
}

func (f *fakeRepo) EnsureDocument(ctx context.Context, doc *core.Document) error {
	if _, ok := f.docs[doc.ID]; ok {
		return nil
	}
	return f.CreateDocument(ctx, doc)
}

func (f *fakeRepo) GetDocument(ctx context.Context, id uuid.UUID) (*core.Document, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (f *fakeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status core.DocumentStatus, errorMessage string) error {
	doc, ok := f.docs[id]
	if !ok {
		return storage.ErrNotFound
	}
	doc.Status = status
	doc.ErrorMessage = errorMessage
	return nil
}

func (f *fakeRepo) Close() error { return nil }

func seedDocument(repo *fakeRepo) uuid.UUID {
	id := uuid.New()
	repo.docs[id] = &core.Document{
		ID:        id,
		SessionID: uuid.New(),
		Name:      "report.pdf",
		Status:    core.StatusPending,
	}
	return id
}

func TestTrackerTransitions(t *testing.T) {
	repo := newFakeRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()
	id := seedDocument(repo)

	require.NoError(t, tracker.MarkProcessing(ctx, id))
	assert.Equal(t, core.StatusProcessing, repo.docs[id].Status)

	require.NoError(t, tracker.MarkCompleted(ctx, id))
	assert.Equal(t, core.StatusCompleted, repo.docs[id].Status)
	assert.Empty(t, repo.docs[id].ErrorMessage)
}

func TestTrackerMarkFailed(t *testing.T) {
	repo := newFakeRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()
	id := seedDocument(repo)

	require.NoError(t, tracker.MarkFailed(ctx, id, "parse error: no extractable text"))
	assert.Equal(t, core.StatusFailed, repo.docs[id].Status)
	assert.Equal(t, "parse error: no extractable text", repo.docs[id].ErrorMessage)
}

func TestTrackerMarkFailedTruncates(t *testing.T) {
	repo := newFakeRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()
	id := seedDocument(repo)

	long := strings.Repeat("x", 5000)
	require.NoError(t, tracker.MarkFailed(ctx, id, long))

	stored := repo.docs[id].ErrorMessage
	assert.Len(t, stored, maxErrorLength)
	assert.True(t, strings.HasSuffix(stored, truncationMarker))
}

func TestTrackerUnknownDocument(t *testing.T) {
	tracker := NewTracker(newFakeRepo())
	err := tracker.MarkProcessing(context.Background(), uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTrackerEnsureDocument(t *testing.T) {
	repo := newFakeRepo()
	tracker := NewTracker(repo)
	ctx := context.Background()

	job := &core.IngestJob{
		DocumentID: uuid.New(),
		SessionID:  uuid.New(),
		StorageKey: "documents/sess/report.pdf",
		Filename:   "report.pdf",
		Source:     core.JobSourceNotification,
	}

	require.NoError(t, tracker.EnsureDocument(ctx, job))
	doc, err := repo.GetDocument(ctx, job.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusPending, doc.Status)
	assert.Equal(t, "report.pdf", doc.Name)

	// Redelivery leaves the existing row untouched.
	require.NoError(t, repo.UpdateStatus(ctx, job.DocumentID, core.StatusCompleted, ""))
	require.NoError(t, tracker.EnsureDocument(ctx, job))
	doc, err = repo.GetDocument(ctx, job.DocumentID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusCompleted, doc.Status)
}

func TestTruncateError(t *testing.T) {
	tests := []struct {
		name    string
		msg     string
		wantLen int
		cut     bool
	}{
		{"short message unchanged", "boom", 4, false},
		{"exactly at limit", strings.Repeat("a", maxErrorLength), maxErrorLength, false},
		{"one over limit", strings.Repeat("a", maxErrorLength+1), maxErrorLength, true},
		{"far over limit", strings.Repeat("a", 10*maxErrorLength), maxErrorLength, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateError(tt.msg)
			assert.Len(t, got, tt.wantLen)
			assert.Equal(t, tt.cut, strings.HasSuffix(got, truncationMarker))
		})
	}
}
