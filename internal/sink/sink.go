// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/schemasynth

// Package sink writes generated documents to streams, files, directories and fixture stores.
package sink

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/woozymasta/schemasynth"
	"github.com/woozymasta/schemasynth/internal/store"
)

// storeBatchSize is the number of documents committed per bbolt transaction.
const storeBatchSize = 256

// Sink consumes generated documents in order.
type Sink interface {
	Write(ctx context.Context, doc *schemasynth.Document) error
	Close() error
}

// Stream writes JSON documents one per line, YAML documents separated by "---".
type Stream struct {
	w       io.Writer
	closer  io.Closer
	format  schemasynth.DocumentFormat
	written int
}

// NewStream creates stream sink over w.
func NewStream(w io.Writer, format schemasynth.DocumentFormat) (*Stream, error) {
	format, err := schemasynth.ParseDocumentFormat(string(format))
	if err != nil {
		return nil, err
	}

	return &Stream{w: w, format: format}, nil
}

// NewFile creates file at path and writes every document into it.
func NewFile(path string, format schemasynth.DocumentFormat) (*Stream, error) {
	format, err := schemasynth.ParseDocumentFormat(string(format))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create output file %q: %w", path, err)
	}

	return &Stream{w: file, closer: file, format: format}, nil
}

// Write encodes doc and appends it to the stream.
func (s *Stream) Write(_ context.Context, doc *schemasynth.Document) error {
	data, err := schemasynth.EncodeDocument(doc, s.format)
	if err != nil {
		return err
	}

	return s.WriteEncoded(data)
}

// WriteEncoded appends already encoded document in stream format.
func (s *Stream) WriteEncoded(data []byte) error {
	if s.format == schemasynth.DocumentFormatYAML && s.written > 0 {
		if _, err := io.WriteString(s.w, "---\n"); err != nil {
			return fmt.Errorf("write document separator: %w", err)
		}
	}

	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write document %d: %w", s.written, err)
	}

	if len(data) == 0 || data[len(data)-1] != '\n' {
		if _, err := io.WriteString(s.w, "\n"); err != nil {
			return fmt.Errorf("write document %d: %w", s.written, err)
		}
	}

	s.written++
	return nil
}

// Written returns number of documents written.
func (s *Stream) Written() int {
	return s.written
}

// Close closes underlying file, if the stream owns one.
func (s *Stream) Close() error {
	if s.closer == nil {
		return nil
	}

	return s.closer.Close()
}

// Directory writes every document into its own numbered file.
type Directory struct {
	dir     string
	format  schemasynth.DocumentFormat
	written int
}

// NewDirectory creates dir when missing.
func NewDirectory(dir string, format schemasynth.DocumentFormat) (*Directory, error) {
	format, err := schemasynth.ParseDocumentFormat(string(format))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}

	return &Directory{dir: dir, format: format}, nil
}

// Write stores doc as document-NNNNNN.<format>, numbered from 1.
func (d *Directory) Write(_ context.Context, doc *schemasynth.Document) error {
	data, err := schemasynth.EncodeDocument(doc, d.format)
	if err != nil {
		return err
	}

	if d.format == schemasynth.DocumentFormatJSON {
		data = append(data, '\n')
	}

	path := DocumentPath(d.dir, d.written+1, d.format)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write document file %q: %w", path, err)
	}

	d.written++
	return nil
}

// Close is a no-op.
func (d *Directory) Close() error {
	return nil
}

// DocumentPath returns file path used by Directory for document number.
func DocumentPath(dir string, number int, format schemasynth.DocumentFormat) string {
	return filepath.Join(dir, fmt.Sprintf("document-%06d.%s", number, format))
}

// Store writes documents into fixture database under one run.
type Store struct {
	store   *store.Store
	run     store.Run
	format  schemasynth.DocumentFormat
	pending []store.Entry
	written int
	size    int64
}

// NewStore creates run in st and returns sink that fills it.
// The sink does not close st.
func NewStore(st *store.Store, run store.Run) (*Store, error) {
	format, err := schemasynth.ParseDocumentFormat(run.Format)
	if err != nil {
		return nil, err
	}

	run.Format = string(format)
	run, err = st.CreateRun(run)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	return &Store{
		store:   st,
		run:     run,
		format:  format,
		pending: make([]store.Entry, 0, storeBatchSize),
	}, nil
}

// Run returns stored run metadata.
func (s *Store) Run() store.Run {
	return s.run
}

// Write buffers doc and commits full batches.
func (s *Store) Write(_ context.Context, doc *schemasynth.Document) error {
	data, err := schemasynth.EncodeDocument(doc, s.format)
	if err != nil {
		return err
	}

	s.pending = append(s.pending, store.Entry{Index: s.written, Data: data})
	s.written++
	s.size += int64(len(data))

	if len(s.pending) >= storeBatchSize {
		return s.flush()
	}

	return nil
}

// Close commits pending documents and records stored count.
func (s *Store) Close() error {
	if err := s.flush(); err != nil {
		return err
	}

	s.run.Stored = s.written
	s.run.Bytes = s.size
	return s.store.CompleteRun(s.run.ID, s.written, s.size)
}

func (s *Store) flush() error {
	if err := s.store.PutDocuments(s.run.ID, s.pending); err != nil {
		return fmt.Errorf("store documents: %w", err)
	}

	s.pending = s.pending[:0]
	return nil
}
