// Package chunk splits parsed text segments into bounded, overlapping
// windows suitable for embedding.
//
// Windows are measured in runes. Each chunk keeps its originating segment's
// page and source metadata and records a monotonically increasing start
// offset within the concatenated document text; the offset feeds the
// content-addressed chunk identifier, so chunking is fully deterministic
// over byte-identical input.
package chunk
