package dccfs

import "fmt"

// NodeInfo is the sibling record to a head inode, holding its size and
// name. For a directory, Size counts entries present across the whole
// overflow chain; for a regular file, Size is the exact byte length.
// Reserved pads the header out to the full 8-u64 budget the on-disk
// layout sets aside (only Size is actually populated), which is what
// NameMax is defined against: Name starts right after this reserved
// region. Name's length is NameMax(blksz) for the owning mount and
// must be allocated to that length before decodeRecord/encodeRecord
// touch it, since the reflective codec reads/writes exactly len(Name)
// bytes.
type NodeInfo struct {
	Size     uint64
	Reserved [7]uint64
	Name     []byte
}

func setName(n *NodeInfo, name string, nameMax uint64) {
	n.Name = make([]byte, nameMax)
	max := len(name)
	if uint64(max) > nameMax {
		max = int(nameMax)
	}
	copy(n.Name[:max], name)
}

func getName(n *NodeInfo) string {
	i := 0
	for i < len(n.Name) && n.Name[i] != 0 {
		i++
	}
	return string(n.Name[:i])
}

func (m *Mount) readNodeInfo(block uint64) (*NodeInfo, error) {
	buf, err := readBlock(m.back, block, m.sb.Blksz)
	if err != nil {
		return nil, err
	}
	n := NodeInfo{Name: make([]byte, NameMax(m.sb.Blksz))}
	if err := decodeRecord(buf, &n); err != nil {
		return nil, fmt.Errorf("%w: nodeinfo %d: %v", ErrIO, block, err)
	}
	return &n, nil
}

func (m *Mount) writeNodeInfo(block uint64, n *NodeInfo) error {
	buf, err := encodeRecord(n, m.sb.Blksz)
	if err != nil {
		return err
	}
	return writeBlock(m.back, block, m.sb.Blksz, buf)
}
