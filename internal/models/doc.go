// Package models defines the records that flow through the pipeline and the persisted run history entity.
//
// The package contains two categories of types:
//
// 1. Pipeline records: plain values exchanged between stages
//   - [Track] : a raw track row as extracted, every field still text
//   - [RecordSet] : ordered raw rows, the Extractor's output and the Transformer's input
//   - [CleanTrack] : a normalized row with a parsed release date and numeric popularity
//   - [CleanRecordSet] : the Transformer's output and the Loader's input
//   - [Column] : the destination schema, derived from [CleanTrack]
//
// 2. Persistent entities: database-backed models
//   - [Run] : one execution of the pipeline with its outcome and row counts
//
// Persistent entities implement the [Model] interface; [Repository] defines the data access operations.
package models
