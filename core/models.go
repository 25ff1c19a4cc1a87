package core

import (
	"encoding/hex"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
	"github.com/google/uuid"
)

// DocumentStatus is the lifecycle state of an uploaded document.
type DocumentStatus string

const (
	// StatusPending is the initial state, set at document creation by the upload path.
	StatusPending DocumentStatus = "pending"
	// StatusProcessing is set when the ingestion pipeline picks the document up.
	StatusProcessing DocumentStatus = "processing"
	// StatusCompleted is the terminal success state.
	StatusCompleted DocumentStatus = "completed"
	// StatusFailed is the terminal failure state; ErrorMessage carries the reason.
	StatusFailed DocumentStatus = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Document represents one uploaded file tracked in the relational store.
// Status transitions are monotonic within a single processing attempt:
// pending -> processing -> (completed | failed).
type Document struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	Name         string
	Status       DocumentStatus
	UploadURL    string // object-storage key or local path
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// JobSource identifies how an ingestion job entered the queue.
type JobSource int

const (
	// JobSourceDirect means the queue body carried a canonical job descriptor.
	JobSourceDirect JobSource = iota + 1
	// JobSourceNotification means the job was derived from an object-storage
	// "object created" event and no document row may exist yet.
	JobSourceNotification
)

// IngestJob is the canonical job descriptor consumed by the coordinator.
// It is transient and never persisted beyond the current invocation.
type IngestJob struct {
	DocumentID uuid.UUID
	SessionID  uuid.UUID
	StorageKey string
	Filename   string
	FileSize   int64
	Source     JobSource
}

// documentIDNamespace is the UUIDv5 namespace for deriving document
// identifiers from storage keys.
var documentIDNamespace = uuid.MustParse("6f1c8f3e-9a74-4d2b-8e25-4b0a4f1d9c71")

// DocumentIDFromKey derives a deterministic document identifier from a
// storage key. Jobs derived from object-storage notifications use this so
// that redelivery of the same notification resolves to the same document.
func DocumentIDFromKey(key string) uuid.UUID {
	return uuid.NewSHA1(documentIDNamespace, []byte(key))
}

// Segment is a unit of extracted text with its source metadata.
// Produced by the parsing stage, consumed by the chunking stage.
type Segment struct {
	Text   string
	Source string // originating file path or object key
	Page   int    // 1-based page number, 0 if not applicable
}

// ChunkMeta carries the provenance of a chunk through embedding and indexing.
type ChunkMeta struct {
	DocumentID uuid.UUID
	SessionID  uuid.UUID
	Index      int    // position of the chunk within the document
	Page       int    // 1-based page number, 0 if unknown
	Section    string // section heading, if known
	Source     string // originating file path or object key
	Offset     int    // rune offset of the chunk within the concatenated text
}

// Chunk is a bounded text window over a parsed document. It is ephemeral:
// created by chunking, enriched by embedding, written to the vector index,
// then discarded.
type Chunk struct {
	ID     string // content-addressed, assigned by the embedding stage
	Text   string
	Meta   ChunkMeta
	Vector []float32
}

// ChunkID generates a deterministic, content-addressed chunk identifier
// from the chunk's text, source path, and start offset using BLAKE2b.
// Identical inputs always yield the same 16-character hex identifier;
// changing any one input changes it.
func ChunkID(content, source string, offset int) string {
	h, _ := blake2b.New(8, nil) // 8 bytes = 16 hex characters
	h.Write([]byte(content))
	h.Write([]byte{0})
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(offset)))
	return hex.EncodeToString(h.Sum(nil))
}

// Vector index metadata keys.
const (
	MetaSessionID = "session_id"
	MetaDocID     = "doc_id"
	MetaChunkID   = "chunk_id"
	MetaPage      = "page"
	MetaSection   = "section"
	MetaSourceURI = "source_uri"
)

// VectorRecord is the unit written to the vector index. Writing the same ID
// twice overwrites in place, which is what makes reprocessing idempotent.
type VectorRecord struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// VectorRecord converts an embedded chunk into its index record form.
func (c *Chunk) VectorRecord() *VectorRecord {
	meta := map[string]string{
		MetaSessionID: c.Meta.SessionID.String(),
		MetaDocID:     c.Meta.DocumentID.String(),
		MetaChunkID:   c.ID,
		MetaSourceURI: c.Meta.Source,
	}
	if c.Meta.Page > 0 {
		meta[MetaPage] = strconv.Itoa(c.Meta.Page)
	}
	if c.Meta.Section != "" {
		meta[MetaSection] = c.Meta.Section
	}
	return &VectorRecord{
		ID:       c.ID,
		Values:   c.Vector,
		Metadata: meta,
	}
}
