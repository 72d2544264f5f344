package dccfs

import (
	"fmt"
	"log"
	"math/bits"
	"os"
)

// Superblock is the image-wide metadata record stored at block 0.
type Superblock struct {
	Magic    uint64
	Root     uint64
	Blks     uint64
	Blksz    uint64
	Freeblks uint64
	Freelist uint64
}

// Freepage is the record written into every free block; together they
// form the singly linked LIFO freelist rooted at Superblock.Freelist.
type Freepage struct {
	Next  uint64
	Count uint64
}

// Mount is the live handle to an opened image: the in-memory
// superblock, the backing file, and (on unix) the exclusive advisory
// lock that enforces mount exclusivity.
type Mount struct {
	sb      Superblock
	file    *os.File
	back    BackingFile
	inoOfft uint64
}

// Blksz returns the image's block size.
func (m *Mount) Blksz() uint64 { return m.sb.Blksz }

// Blks returns the image's total block count.
func (m *Mount) Blks() uint64 { return m.sb.Blks }

// Freeblks returns the current count of free blocks.
func (m *Mount) Freeblks() uint64 { return m.sb.Freeblks }

func isPowerOfTwo(n uint64) bool {
	return n != 0 && bits.OnesCount64(n) == 1
}

// Format creates a fresh image in the file at path, sized by the
// file's current length divided by blksz. The file must already exist
// at its intended size.
func Format(path string, blksz uint64) (*Mount, error) {
	if blksz < MinBlockSize || !isPowerOfTwo(blksz) {
		return nil, ErrInvalidArgument
	}

	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	if err := lockExclusive(f); err != nil {
		f.Close()
		return nil, err
	}

	back := &fileBackend{f: f}
	size, err := back.Size()
	if err != nil {
		unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	blks := uint64(size) / blksz
	if blks < MinBlockCount {
		log.Printf("dccfs: format rejected: %d blocks of %d bytes is below minimum %d", blks, blksz, MinBlockCount)
		unlockFile(f)
		f.Close()
		return nil, ErrNoSpace
	}

	m := &Mount{file: f, back: back}
	m.sb = Superblock{
		Magic:    Magic,
		Root:     blockRootInode,
		Blks:     blks,
		Blksz:    blksz,
		Freeblks: blks - blockFirstFree,
		Freelist: blockFirstFree,
	}

	if err := m.writeSuperblock(); err != nil {
		unlockFile(f)
		f.Close()
		return nil, err
	}

	root := Inode{Mode: IMDIR, Parent: blockRootInode, Meta: blockRootNode, Next: 0}
	if err := m.writeInode(blockRootInode, &root); err != nil {
		unlockFile(f)
		f.Close()
		return nil, err
	}

	rootInfo := NodeInfo{Size: 0}
	setName(&rootInfo, "/", NameMax(blksz))
	if err := m.writeNodeInfo(blockRootNode, &rootInfo); err != nil {
		unlockFile(f)
		f.Close()
		return nil, err
	}

	for b := uint64(blockFirstFree); b < blks; b++ {
		next := uint64(0)
		if b+1 < blks {
			next = b + 1
		}
		fp := Freepage{Next: next, Count: 0}
		buf, err := encodeRecord(&fp, blksz)
		if err != nil {
			unlockFile(f)
			f.Close()
			return nil, err
		}
		if err := writeBlock(back, b, blksz, buf); err != nil {
			unlockFile(f)
			f.Close()
			return nil, err
		}
	}

	return m, nil
}

// Open acquires the exclusive mount lock and validates an existing
// image's superblock.
func Open(path string, opts ...MountOption) (*Mount, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}

	if err := lockExclusive(f); err != nil {
		f.Close()
		return nil, err
	}

	back := &fileBackend{f: f}
	m := &Mount{file: f, back: back}

	if err := m.readSuperblock(); err != nil {
		unlockFile(f)
		f.Close()
		return nil, err
	}
	if m.sb.Magic != Magic {
		unlockFile(f)
		f.Close()
		return nil, ErrBadImage
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			unlockFile(f)
			f.Close()
			return nil, err
		}
	}

	return m, nil
}

// Close validates the superblock is still intact, releases the mount
// lock, and discards the mount state.
func (m *Mount) Close() error {
	if m.sb.Magic != Magic {
		return ErrBadImage
	}
	if err := unlockFile(m.file); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return m.file.Close()
}

func (m *Mount) readSuperblock() error {
	buf, err := readBlock(m.back, blockSuperblock, superblockProbeSize(m))
	if err != nil {
		return err
	}
	var sb Superblock
	if err := decodeRecord(buf, &sb); err != nil {
		return fmt.Errorf("%w: %v", ErrBadImage, err)
	}
	m.sb = sb
	return nil
}

// superblockProbeSize determines how many bytes to read for the
// superblock itself. Until the superblock has been read, m.sb.Blksz is
// unknown, so the probe uses the minimum legal block size, which is
// always large enough to hold the fixed-width superblock record.
func superblockProbeSize(m *Mount) uint64 {
	if m.sb.Blksz != 0 {
		return m.sb.Blksz
	}
	return MinBlockSize
}

func (m *Mount) writeSuperblock() error {
	buf, err := encodeRecord(&m.sb, m.sb.Blksz)
	if err != nil {
		return err
	}
	return writeBlock(m.back, blockSuperblock, m.sb.Blksz, buf)
}

// GetBlock pops and returns the head of the freelist, or 0 if the
// image is exhausted.
func (m *Mount) GetBlock() (uint64, error) {
	if m.sb.Freeblks == 0 {
		return 0, nil
	}
	idx := m.sb.Freelist
	buf, err := readBlock(m.back, idx, m.sb.Blksz)
	if err != nil {
		return 0, err
	}
	var fp Freepage
	if err := decodeRecord(buf, &fp); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	m.sb.Freelist = fp.Next
	m.sb.Freeblks--
	if err := m.writeSuperblock(); err != nil {
		return 0, err
	}
	return idx, nil
}

// PutBlock pushes block b onto the freelist. Double-freeing a block
// corrupts the freelist; callers must not call PutBlock twice for the
// same block without an intervening GetBlock.
func (m *Mount) PutBlock(b uint64) error {
	fp := Freepage{Next: m.sb.Freelist, Count: 0}
	buf, err := encodeRecord(&fp, m.sb.Blksz)
	if err != nil {
		return err
	}
	if err := writeBlock(m.back, b, m.sb.Blksz, buf); err != nil {
		return err
	}
	m.sb.Freelist = b
	m.sb.Freeblks++
	return m.writeSuperblock()
}
