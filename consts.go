package dccfs

// Magic identifies a valid dccfs image, written to the superblock at
// Format time and checked on every Open/Close.
const Magic uint64 = 0xDCC605F5

// Mode tags carried in every inode's Mode field.
const (
	IMREG   uint64 = 1 // regular file, head inode
	IMDIR   uint64 = 2 // directory, head inode
	IMCHILD uint64 = 3 // overflow continuation of an IMREG or IMDIR
)

// Fixed block positions written by Format.
const (
	blockSuperblock = 0
	blockRootInode  = 1
	blockRootNode   = 2
	blockFirstFree  = 3
)

// Platform minimums, chosen so LinkMax is always at least 1 and NameMax
// leaves room for real names, not just the bare theoretical floor.
const (
	MinBlockSize  = 512
	MinBlockCount = 8
)

// inodeHeaderSize is the byte size of an Inode's four u64 header fields
// (Mode, Parent, Meta, Next) ahead of its Links array.
const inodeHeaderSize = 4 * 8

// nodeInfoHeaderSize is the reserved header budget of a NodeInfo record:
// eight u64 slots, of which only the first (Size) is populated. NameMax
// is defined against this reserved budget, not against the single field
// actually in use.
const nodeInfoHeaderSize = 8 * 8

// LinkMax returns the number of 64-bit slots in an inode's Links array
// for a given block size.
func LinkMax(blksz uint64) uint64 {
	return (blksz - inodeHeaderSize) / 8
}

// NameMax returns the number of bytes available for a name in a
// NodeInfo record for a given block size.
func NameMax(blksz uint64) uint64 {
	return blksz - nodeInfoHeaderSize
}

// freepageHeaderSize is the byte size of a Freepage's two u64 fields.
const freepageHeaderSize = 2 * 8
