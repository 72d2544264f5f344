package dccfs

// MountOption configures a Mount at Open time, mirroring the teacher's
// own functional-option shape (options.go's Option/InodeOffset).
type MountOption func(*Mount) error

// WithInodeOffset sets the value added to a block index when a Mount
// is exported over FUSE, so image block 1 (the root) doesn't collide
// with the kernel's reserved inode number 1 on filesystems that care.
func WithInodeOffset(offt uint64) MountOption {
	return func(m *Mount) error {
		m.inoOfft = offt
		return nil
	}
}
