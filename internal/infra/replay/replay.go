// Package replay persists per-episode replay files: a gob-encoded stream of
// world snapshots behind zstd compression. Replays are a boundary concern;
// a write failure must never abort the simulation.
package replay

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/ecosim-lab/ecosim/internal/engine"
)

// Header identifies a replay file.
type Header struct {
	Version int
	RunID   string
	Episode int
	Seed    int64
}

const formatVersion = 1

// Writer streams snapshots of one episode to disk.
type Writer struct {
	f   *os.File
	bw  *bufio.Writer
	zw  *zstd.Encoder
	enc *gob.Encoder
}

// NewWriter creates the replay file for one episode and writes the header.
func NewWriter(dir string, header Header) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create replay directory: %w", err)
	}
	header.Version = formatVersion

	path := filepath.Join(dir, fmt.Sprintf("%s-ep%04d.replay.zst", header.RunID, header.Episode))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create replay file: %w", err)
	}

	bw := bufio.NewWriter(f)
	zw, err := zstd.NewWriter(bw)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to init zstd writer: %w", err)
	}

	w := &Writer{f: f, bw: bw, zw: zw, enc: gob.NewEncoder(zw)}
	if err := w.enc.Encode(header); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write replay header: %w", err)
	}
	return w, nil
}

// Append writes one snapshot frame.
func (w *Writer) Append(state engine.RenderState) error {
	return w.enc.Encode(state)
}

// Close flushes and closes the replay file.
func (w *Writer) Close() error {
	var firstErr error
	if err := w.zw.Close(); err != nil {
		firstErr = err
	}
	if err := w.bw.Flush(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := w.f.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// Read loads a replay file: the header plus every snapshot frame.
func Read(path string) (Header, []engine.RenderState, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to open replay file: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(bufio.NewReader(f))
	if err != nil {
		return Header{}, nil, fmt.Errorf("failed to init zstd reader: %w", err)
	}
	defer zr.Close()

	dec := gob.NewDecoder(zr)

	var header Header
	if err := dec.Decode(&header); err != nil {
		return Header{}, nil, fmt.Errorf("failed to read replay header: %w", err)
	}
	if header.Version != formatVersion {
		return Header{}, nil, fmt.Errorf("unsupported replay version %d", header.Version)
	}

	var frames []engine.RenderState
	for {
		var state engine.RenderState
		if err := dec.Decode(&state); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return Header{}, nil, fmt.Errorf("failed to read replay frame: %w", err)
		}
		frames = append(frames, state)
	}
	return header, frames, nil
}
