package dccfs

import "fmt"

// Inode is a head (IMREG/IMDIR) or overflow-continuation (IMCHILD)
// record. Meta is a tagged union keyed on Mode: for a head inode it is
// the block of the associated NodeInfo; for an IMCHILD it is a back
// pointer to the previous inode in its overflow chain. Links holds
// LinkMax(blksz) block indices, zero meaning an empty slot.
type Inode struct {
	Mode   uint64
	Parent uint64
	Meta   uint64
	Next   uint64
	Links  []uint64
}

func (m *Mount) readInode(block uint64) (*Inode, error) {
	buf, err := readBlock(m.back, block, m.sb.Blksz)
	if err != nil {
		return nil, err
	}
	ino := Inode{Links: make([]uint64, LinkMax(m.sb.Blksz))}
	if err := decodeRecord(buf, &ino); err != nil {
		return nil, fmt.Errorf("%w: inode %d: %v", ErrIO, block, err)
	}
	return &ino, nil
}

func (m *Mount) writeInode(block uint64, ino *Inode) error {
	if ino.Links == nil {
		ino.Links = make([]uint64, LinkMax(m.sb.Blksz))
	}
	buf, err := encodeRecord(ino, m.sb.Blksz)
	if err != nil {
		return err
	}
	return writeBlock(m.back, block, m.sb.Blksz, buf)
}

// headBlock resolves the owning head inode (IMREG or IMDIR) for a
// carrier, which may be the head itself or one of its IMCHILD overflow
// segments. An IMCHILD's Parent field points directly at its owning
// head, per the on-disk layout.
func (m *Mount) headBlock(carrierBlock uint64, carrier *Inode) (uint64, *Inode, error) {
	if carrier.Mode != IMCHILD {
		return carrierBlock, carrier, nil
	}
	head, err := m.readInode(carrier.Parent)
	if err != nil {
		return 0, nil, err
	}
	return carrier.Parent, head, nil
}

// findLink scans the links[] arrays across the overflow chain starting
// at headBlockIdx for the first slot equal to needle. If none is
// found, it returns the block of the tail carrier and slot -1.
func (m *Mount) findLink(headBlockIdx uint64, needle uint64) (uint64, int, error) {
	carrierBlock := headBlockIdx
	for {
		carrier, err := m.readInode(carrierBlock)
		if err != nil {
			return 0, 0, err
		}
		for i, l := range carrier.Links {
			if l == needle {
				return carrierBlock, i, nil
			}
		}
		if carrier.Next == 0 {
			return carrierBlock, -1, nil
		}
		carrierBlock = carrier.Next
	}
}

// createChild allocates a new IMCHILD inode extending the overflow
// chain whose current tail is at tailBlock, owned by the head at
// headBlockIdx, and links it via tail.Next.
func (m *Mount) createChild(tailBlock, headBlockIdx uint64) (uint64, error) {
	newBlock, err := m.GetBlock()
	if err != nil {
		return 0, err
	}
	if newBlock == 0 {
		return 0, ErrNoSpace
	}

	child := Inode{Mode: IMCHILD, Parent: headBlockIdx, Meta: tailBlock, Next: 0}
	if err := m.writeInode(newBlock, &child); err != nil {
		return 0, err
	}

	tail, err := m.readInode(tailBlock)
	if err != nil {
		return 0, err
	}
	tail.Next = newBlock
	if err := m.writeInode(tailBlock, tail); err != nil {
		return 0, err
	}

	return newBlock, nil
}

// addLink sets carrier.links[slot] = target and increments the owning
// head's NodeInfo.Size.
func (m *Mount) addLink(carrierBlock uint64, slot int, target uint64) error {
	carrier, err := m.readInode(carrierBlock)
	if err != nil {
		return err
	}
	carrier.Links[slot] = target
	if err := m.writeInode(carrierBlock, carrier); err != nil {
		return err
	}

	_, head, err := m.headBlock(carrierBlock, carrier)
	if err != nil {
		return err
	}
	info, err := m.readNodeInfo(head.Meta)
	if err != nil {
		return err
	}
	info.Size++
	return m.writeNodeInfo(head.Meta, info)
}

// removeLink zeros carrier.links[slot] and decrements the owning
// head's NodeInfo.Size.
func (m *Mount) removeLink(carrierBlock uint64, slot int) error {
	carrier, err := m.readInode(carrierBlock)
	if err != nil {
		return err
	}
	carrier.Links[slot] = 0
	if err := m.writeInode(carrierBlock, carrier); err != nil {
		return err
	}

	_, head, err := m.headBlock(carrierBlock, carrier)
	if err != nil {
		return err
	}
	info, err := m.readNodeInfo(head.Meta)
	if err != nil {
		return err
	}
	if info.Size > 0 {
		info.Size--
	}
	return m.writeNodeInfo(head.Meta, info)
}
