package ingest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docindex/core"
)

func TestParseMessageDirect(t *testing.T) {
	docID := uuid.New()
	sessionID := uuid.New()
	body := fmt.Sprintf(`{
		"document_id": %q,
		"session_id": %q,
		"s3_key": "documents/%s/report.pdf",
		"filename": "report.pdf",
		"file_size_bytes": 4096
	}`, docID, sessionID, sessionID)

	jobs, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, docID, job.DocumentID)
	assert.Equal(t, sessionID, job.SessionID)
	assert.Equal(t, "report.pdf", job.Filename)
	assert.Equal(t, int64(4096), job.FileSize)
	assert.Equal(t, core.JobSourceDirect, job.Source)
}

func TestParseMessageDirectDefaultsFilename(t *testing.T) {
	docID := uuid.New()
	sessionID := uuid.New()
	body := fmt.Sprintf(`{
		"document_id": %q,
		"session_id": %q,
		"s3_key": "documents/%s/quarterly%%20report.pdf"
	}`, docID, sessionID, sessionID)

	jobs, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "quarterly%20report.pdf", jobs[0].Filename)
}

func TestParseMessageNotification(t *testing.T) {
	sessionID := uuid.New()
	body := fmt.Sprintf(`{
		"Records": [
			{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "documents/%s/summer+budget.pdf", "size": 1024}}}
		]
	}`, sessionID)

	jobs, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	assert.Equal(t, sessionID, job.SessionID)
	assert.Equal(t, "summer budget.pdf", job.Filename)
	assert.Equal(t, fmt.Sprintf("documents/%s/summer budget.pdf", sessionID), job.StorageKey)
	assert.Equal(t, int64(1024), job.FileSize)
	assert.Equal(t, core.JobSourceNotification, job.Source)

	// Redelivery of the same key resolves to the same document.
	assert.Equal(t, core.DocumentIDFromKey(job.StorageKey), job.DocumentID)
}

func TestParseMessageNotificationSessionsLayout(t *testing.T) {
	sessionID := uuid.New()
	body := fmt.Sprintf(`{
		"Records": [
			{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "sessions/%s/documents/notes.pdf", "size": 2}}}
		]
	}`, sessionID)

	jobs, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, sessionID, jobs[0].SessionID)
	assert.Equal(t, "notes.pdf", jobs[0].Filename)
}

func TestParseMessageNotificationMultipleRecords(t *testing.T) {
	sessionID := uuid.New()
	body := fmt.Sprintf(`{
		"Records": [
			{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "documents/%s/a.pdf", "size": 1}}},
			{"s3": {"bucket": {"name": "uploads"}, "object": {"key": "documents/%s/b.pdf", "size": 2}}}
		]
	}`, sessionID, sessionID)

	jobs, err := ParseMessage([]byte(body))
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.NotEqual(t, jobs[0].DocumentID, jobs[1].DocumentID)
}

func TestParseMessageInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "this is not json"},
		{"empty object", "{}"},
		{"unrelated json", `{"hello": "world"}`},
		{"direct with bad document_id", `{"document_id": "nope", "session_id": "also-nope", "s3_key": "x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage([]byte(tt.body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidMessageFormat)
		})
	}
}

func TestParseMessageEmptyNotification(t *testing.T) {
	_, err := ParseMessage([]byte(`{"Records": []}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyNotification)
}

func TestParseMessageUnrecognizedKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"flat key", "report.pdf"},
		{"wrong prefix", "uploads/abc/report.pdf"},
		{"non-uuid session", "documents/not-a-uuid/report.pdf"},
		{"too deep", "documents/a/b/c/report.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := fmt.Sprintf(`{"Records": [{"s3": {"bucket": {"name": "uploads"}, "object": {"key": %q, "size": 1}}}]}`, tt.key)
			_, err := ParseMessage([]byte(body))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnrecognizedKey)
		})
	}
}
