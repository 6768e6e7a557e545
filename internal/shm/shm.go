// Package shm implements the shared-memory frame transport: a one-byte
// status flag at offset 0 (0=idle, 1=writing, 2=ready) followed by the raw
// BGRA frame, per spec §5/§6. The host process owns the actual IPC
// primitive (a named shared memory region); this package only needs
// seek/read/write on the file descriptor backing it, which a regular
// mmap-or-file-backed *os.File satisfies identically — no pack example
// wires a shared-memory library we could ground an alternative on.
package shm

import (
	"fmt"
	"os"
	"time"

	"github.com/moonlit-ink/vncrop/internal/errs"
)

const (
	flagIdle    = 0
	flagWriting = 1
	flagReady   = 2

	pollAttempts = 10
	pollInterval = 10 * time.Millisecond
)

// Region is the shared-memory-backed region the host process writes frames
// into and this service reads them from.
type Region struct {
	f *os.File
}

// Open opens the region backing file at path. Capacity must be at least
// 4000*2500*4+1 bytes per spec §6.
func Open(path string) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("shm: %w: %v", errs.TransientInput, err)
	}
	return &Region{f: f}, nil
}

// Close closes the backing file descriptor.
func (r *Region) Close() error {
	return r.f.Close()
}

// ReadFrame polls the status flag up to pollAttempts times, pollInterval
// apart, and on success reads size bytes of frame data, then resets the flag
// to idle. It returns errs.TransientInput if the flag never reached ready.
func (r *Region) ReadFrame(size int) ([]byte, error) {
	flag := make([]byte, 1)
	ready := false
	for i := 0; i < pollAttempts; i++ {
		if _, err := r.f.ReadAt(flag, 0); err != nil {
			return nil, fmt.Errorf("shm: %w: %v", errs.TransientInput, err)
		}
		if flag[0] == flagReady {
			ready = true
			break
		}
		time.Sleep(pollInterval)
	}
	if !ready {
		return nil, fmt.Errorf("shm: flag timeout, last=%d: %w", flag[0], errs.TransientInput)
	}

	buf := make([]byte, size)
	n, err := r.f.ReadAt(buf, 1)
	if err != nil && n < size {
		return nil, fmt.Errorf("shm: short read (%d/%d): %w", n, size, errs.TransientInput)
	}

	if _, err := r.f.WriteAt([]byte{flagIdle}, 0); err != nil {
		return nil, fmt.Errorf("shm: resetting flag: %w", err)
	}
	return buf, nil
}
