package dccfs

import "io"

// mockBackingFile is an in-memory BackingFile, modeled directly on the
// teacher's mockReader (mock_test.go): a byte slice addressed by
// ReadAt/WriteAt, used for fast, I/O-free unit tests of C1-C4 that
// don't need a real backing file or its advisory lock.
type mockBackingFile struct {
	data []byte
}

func newMockBackingFile(size uint64) *mockBackingFile {
	return &mockBackingFile{data: make([]byte, size)}
}

func (m *mockBackingFile) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mockBackingFile) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.data)) {
		return 0, io.ErrShortWrite
	}
	return copy(m.data[off:end], p), nil
}

func (m *mockBackingFile) Size() (int64, error) {
	return int64(len(m.data)), nil
}

// formatMock builds a *Mount over a mockBackingFile, replicating
// Format's on-disk layout (superblock, root inode+nodeinfo, initial
// freelist) without going through a real os.File or its advisory
// lock, exactly the shortcut the teacher's mockReader gives
// TestErrorHandling/TestInvalidSuperblock.
func formatMock(blksz, blks uint64) (*Mount, error) {
	back := newMockBackingFile(blksz * blks)
	m := &Mount{back: back}
	m.sb = Superblock{
		Magic:    Magic,
		Root:     blockRootInode,
		Blks:     blks,
		Blksz:    blksz,
		Freeblks: blks - blockFirstFree,
		Freelist: blockFirstFree,
	}
	if err := m.writeSuperblock(); err != nil {
		return nil, err
	}
	root := Inode{Mode: IMDIR, Parent: blockRootInode, Meta: blockRootNode, Next: 0}
	if err := m.writeInode(blockRootInode, &root); err != nil {
		return nil, err
	}
	rootInfo := NodeInfo{Size: 0}
	setName(&rootInfo, "/", NameMax(blksz))
	if err := m.writeNodeInfo(blockRootNode, &rootInfo); err != nil {
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
			return nil, err
		}
		if err := writeBlock(back, b, blksz, buf); err != nil {
			return nil, err
		}
	}
	return m, nil
}
