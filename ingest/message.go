// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/poiesic/docindex/core"
)

// directMessage is the canonical job descriptor enqueued by the upload
// service.
type directMessage struct {
	DocumentID    string `json:"document_id"`
	SessionID     string `json:"session_id"`
	StorageKey    string `json:"s3_key"`
	Filename      string `json:"filename"`
	FileSizeBytes int64  `json:"file_size_bytes"`
}

// storageNotification is the bucket-event fallback shape. Keys inside it
// are URL-encoded by the emitting service.
type storageNotification struct {
	Records []struct {
		S3 struct {
			Bucket struct {
				Name string `json:"name"`
			} `json:"bucket"`
			Object struct {
				Key  string `json:"key"`
				Size int64  `json:"size"`
			} `json:"object"`
		} `json:"s3"`
	} `json:"Records"`
}

// ParseMessage resolves a raw queue record body into ingestion jobs.
//
// Two shapes are accepted: the canonical job descriptor produced by the
// upload service, and a storage "object created" notification, which may
// carry several object records and therefore yield several jobs. A
// notification with an empty record list is ErrEmptyNotification; anything
// else is ErrInvalidMessageFormat.
func ParseMessage(body []byte) ([]*core.IngestJob, error) {
	var direct directMessage
	if err := json.Unmarshal(body, &direct); err == nil && direct.DocumentID != "" {
		job, err := direct.toJob()
		if err != nil {
			return nil, err
		}
		return []*core.IngestJob{job}, nil
	}

	var notification storageNotification
	if err := json.Unmarshal(body, &notification); err == nil && notification.Records != nil {
		if len(notification.Records) == 0 {
			return nil, ErrEmptyNotification
		}
		jobs := make([]*core.IngestJob, 0, len(notification.Records))
		for _, record := range notification.Records {
			job, err := jobFromObjectKey(record.S3.Object.Key, record.S3.Object.Size)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	}

	return nil, ErrInvalidMessageFormat
}

func (m *directMessage) toJob() (*core.IngestJob, error) {
	docID, err := uuid.Parse(m.DocumentID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad document_id %q", ErrInvalidMessageFormat, m.DocumentID)
	}
	sessionID, err := uuid.Parse(m.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad session_id %q", ErrInvalidMessageFormat, m.SessionID)
	}
	if m.StorageKey == "" {
		return nil, fmt.Errorf("%w: missing s3_key", ErrInvalidMessageFormat)
	}
	filename := m.Filename
	if filename == "" {
		filename = path.Base(m.StorageKey)
	}
	return &core.IngestJob{
		DocumentID: docID,
		SessionID:  sessionID,
		StorageKey: m.StorageKey,
		Filename:   filename,
		FileSize:   m.FileSizeBytes,
		Source:     core.JobSourceDirect,
	}, nil
}

// jobFromObjectKey derives a job from a notification object key. The key
// is URL-decoded first; emitters encode spaces and unicode in key names.
func jobFromObjectKey(rawKey string, size int64) (*core.IngestJob, error) {
	key, err := url.QueryUnescape(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable object key %q", ErrInvalidMessageFormat, rawKey)
	}

	sessionID, filename, err := parseObjectKey(key)
	if err != nil {
		return nil, err
	}

	return &core.IngestJob{
		DocumentID: core.DocumentIDFromKey(key),
		SessionID:  sessionID,
		StorageKey: key,
		Filename:   filename,
		FileSize:   size,
		Source:     core.JobSourceNotification,
	}, nil
}

// parseObjectKey extracts session and filename from the known key layouts:
//
//	documents/{session_id}/{filename}
//	sessions/{session_id}/documents/{filename}
func parseObjectKey(key string) (uuid.UUID, string, error) {
	parts := strings.Split(strings.Trim(key, "/"), "/")

	var sessionPart, filename string
	switch {
	case len(parts) == 3 && parts[0] == "documents":
		sessionPart, filename = parts[1], parts[2]
	case len(parts) == 4 && parts[0] == "sessions" && parts[2] == "documents":
		sessionPart, filename = parts[1], parts[3]
	default:
		return uuid.Nil, "", fmt.Errorf("%w: %q", ErrUnrecognizedKey, key)
	}

	sessionID, err := uuid.Parse(sessionPart)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("%w: %q has non-uuid session segment", ErrUnrecognizedKey, key)
	}
	if filename == "" {
		return uuid.Nil, "", fmt.Errorf("%w: %q has empty filename", ErrUnrecognizedKey, key)
	}
	return sessionID, filename, nil
}
