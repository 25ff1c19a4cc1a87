// Package parse extracts ordered text segments from uploaded document files.
//
// Only PDF input is supported; any other file type fails explicitly rather
// than attempting best-effort extraction. Segments carry per-page source
// metadata which follows the text through chunking, embedding, and indexing.
//
// Parsers take a local file path (the object has already been fetched from
// object storage, or is provided directly in development) plus the canonical
// source URI to record in segment metadata. Using the canonical URI rather
// than the transient local path keeps chunk identifiers stable across
// reprocessing runs.
package parse
