package dccfs

import (
	"fmt"
	"io"
	"os"
)

// BackingFile is the storage abstraction a Mount reads and writes
// blocks against. *os.File satisfies it directly; tests use an
// in-memory implementation instead of touching disk.
type BackingFile interface {
	io.ReaderAt
	io.WriterAt
	Size() (int64, error)
}

// readBlock reads exactly blksz bytes at block index idx from f.
func readBlock(f BackingFile, idx, blksz uint64) ([]byte, error) {
	buf := make([]byte, blksz)
	n, err := f.ReadAt(buf, int64(idx*blksz))
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: read block %d: %v", ErrIO, idx, err)
	}
	if uint64(n) != blksz {
		return nil, fmt.Errorf("%w: short read at block %d (%d/%d bytes)", ErrIO, idx, n, blksz)
	}
	return buf, nil
}

// writeBlock writes exactly blksz bytes at block index idx to f. buf
// must be exactly blksz bytes long.
func writeBlock(f BackingFile, idx, blksz uint64, buf []byte) error {
	if uint64(len(buf)) != blksz {
		return fmt.Errorf("%w: write block %d: buffer is %d bytes, want %d", ErrIO, idx, len(buf), blksz)
	}
	n, err := f.WriteAt(buf, int64(idx*blksz))
	if err != nil {
		return fmt.Errorf("%w: write block %d: %v", ErrIO, idx, err)
	}
	if uint64(n) != blksz {
		return fmt.Errorf("%w: short write at block %d (%d/%d bytes)", ErrIO, idx, n, blksz)
	}
	return nil
}

// fileBackend adapts *os.File to BackingFile.
type fileBackend struct {
	f *os.File
}

func (b *fileBackend) ReadAt(p []byte, off int64) (int, error)  { return b.f.ReadAt(p, off) }
func (b *fileBackend) WriteAt(p []byte, off int64) (int, error) { return b.f.WriteAt(p, off) }

func (b *fileBackend) Size() (int64, error) {
	fi, err := b.f.Stat()
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}
