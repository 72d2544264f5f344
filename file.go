package dccfs

// ceilDiv computes ceil(a/b) for positive b.
func ceilDiv(a, b uint64) uint64 {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// extraInodes computes how many IMCHILD overflow segments, beyond the
// head, are needed to hold datablks data-block links, LinkMax of them
// per carrier. The source computes ceil(datablks/LinkMax) extra
// segments when datablks > LinkMax; that overcounts by one, since the
// head inode itself already holds the first LinkMax links.
func extraInodes(datablks, linkMax uint64) uint64 {
	if datablks <= linkMax {
		return 0
	}
	return ceilDiv(datablks, linkMax) - 1
}

// WriteFile creates or replaces the regular file at path with the
// first cnt bytes of buf.
func (m *Mount) WriteFile(path string, buf []byte, cnt uint64) error {
	if cnt > uint64(len(buf)) {
		return ErrInvalidArgument
	}

	r, err := m.resolve(path)
	if err != nil {
		return err
	}
	if r.Target != nil {
		if r.TargetInode.Mode == IMDIR {
			return ErrIsDirectory
		}
		if err := m.unlinkInode(r.DirBlock, *r.Target, r.TargetInode); err != nil {
			return err
		}
		// Recompute free-slot search against the now-detached parent.
		r, err = m.resolve(path)
		if err != nil {
			return err
		}
	}

	linkMax := LinkMax(m.sb.Blksz)
	blksz := m.sb.Blksz
	datablks := ceilDiv(cnt, blksz)
	extras := extraInodes(datablks, linkMax)

	carrierBlock, slot, err := m.findLink(r.DirBlock, 0)
	if err != nil {
		return err
	}
	needExtraCarrier := slot == -1

	need := datablks + 2 + extras
	if needExtraCarrier {
		need++
	}
	if need > m.sb.Freeblks {
		return ErrNoSpace
	}

	headBlock, err := m.GetBlock()
	if err != nil {
		return err
	}
	if headBlock == 0 {
		return ErrNoSpace
	}
	infoBlock, err := m.GetBlock()
	if err != nil {
		return err
	}
	if infoBlock == 0 {
		return ErrNoSpace
	}

	if needExtraCarrier {
		newCarrier, err := m.createChild(carrierBlock, r.DirBlock)
		if err != nil {
			return err
		}
		if err := m.addLink(newCarrier, 0, headBlock); err != nil {
			return err
		}
	} else {
		if err := m.addLink(carrierBlock, slot, headBlock); err != nil {
			return err
		}
	}

	head := Inode{Mode: IMREG, Parent: r.DirBlock, Meta: infoBlock, Next: 0, Links: make([]uint64, linkMax)}

	offset := uint64(0)
	filled := uint64(0)
	headFill := datablks
	if headFill > linkMax {
		headFill = linkMax
	}
	for i := uint64(0); i < headFill; i++ {
		db, err := m.GetBlock()
		if err != nil {
			return err
		}
		if db == 0 {
			return ErrNoSpace
		}
		if err := m.writeDataBlock(db, buf, offset, cnt); err != nil {
			return err
		}
		head.Links[i] = db
		offset += blksz
		filled++
	}
	if err := m.writeInode(headBlock, &head); err != nil {
		return err
	}

	tailBlock := headBlock
	remaining := datablks - filled
	for remaining > 0 {
		segBlock, err := m.createChild(tailBlock, headBlock)
		if err != nil {
			return err
		}
		seg := Inode{Mode: IMCHILD, Parent: headBlock, Meta: tailBlock, Next: 0, Links: make([]uint64, linkMax)}
		segFill := remaining
		if segFill > linkMax {
			segFill = linkMax
		}
		for i := uint64(0); i < segFill; i++ {
			db, err := m.GetBlock()
			if err != nil {
				return err
			}
			if db == 0 {
				return ErrNoSpace
			}
			if err := m.writeDataBlock(db, buf, offset, cnt); err != nil {
				return err
			}
			seg.Links[i] = db
			offset += blksz
		}
		if err := m.writeInode(segBlock, &seg); err != nil {
			return err
		}
		remaining -= segFill
		tailBlock = segBlock
	}

	info := NodeInfo{Size: cnt}
	setName(&info, r.LeafName, NameMax(blksz))
	return m.writeNodeInfo(infoBlock, &info)
}

// writeDataBlock writes min(blksz, cnt-offset) bytes of buf starting
// at offset into data block db, zero-padding the remainder of the
// block. offset advances monotonically across the whole file, unlike
// the source's multiplicative indexing bug.
func (m *Mount) writeDataBlock(db uint64, buf []byte, offset, cnt uint64) error {
	blksz := m.sb.Blksz
	block := make([]byte, blksz)
	end := offset + blksz
	if end > cnt {
		end = cnt
	}
	if offset < end {
		copy(block, buf[offset:end])
	}
	return writeBlock(m.back, db, blksz, block)
}

// ReadFile reads up to bufsz bytes of path into buf, clamped to the
// file's recorded size, and returns the number of bytes read.
func (m *Mount) ReadFile(path string, buf []byte, bufsz uint64) (uint64, error) {
	r, err := m.resolve(path)
	if err != nil {
		return 0, err
	}
	if r.Target == nil {
		return 0, ErrNotFound
	}
	if r.TargetInode.Mode == IMDIR {
		return 0, ErrIsDirectory
	}

	info, err := m.readNodeInfo(r.TargetInode.Meta)
	if err != nil {
		return 0, err
	}

	toRead := bufsz
	if info.Size < toRead {
		toRead = info.Size
	}
	if uint64(len(buf)) < toRead {
		toRead = uint64(len(buf))
	}

	blksz := m.sb.Blksz
	linkMax := LinkMax(blksz)
	carrier := r.TargetInode
	carrierIdx := uint64(0)

	var read uint64
	for read < toRead {
		if carrierIdx == linkMax {
			if carrier.Next == 0 {
				return read, ErrIO
			}
			next, err := m.readInode(carrier.Next)
			if err != nil {
				return read, err
			}
			carrier = next
			carrierIdx = 0
		}

		db := carrier.Links[carrierIdx]
		if db == 0 {
			return read, ErrIO
		}
		block, err := readBlock(m.back, db, blksz)
		if err != nil {
			return read, err
		}
		want := toRead - read
		if want > blksz {
			want = blksz
		}
		copy(buf[read:read+want], block[:want])
		read += want
		carrierIdx++
	}

	return read, nil
}

// Unlink removes the regular file at path, returning every block it
// owns to the freelist.
func (m *Mount) Unlink(path string) error {
	r, err := m.resolve(path)
	if err != nil {
		return err
	}
	if r.Target == nil {
		return ErrNotFound
	}
	if r.TargetInode.Mode == IMDIR {
		return ErrIsDirectory
	}
	return m.unlinkInode(r.DirBlock, *r.Target, r.TargetInode)
}

// unlinkInode releases a head inode's whole block graph: its data
// blocks, every overflow segment, the head inode, and its nodeinfo.
// It then detaches the link from its parent directory. Overflow
// segments never have a nodeinfo of their own, so only the head frees
// one, avoiding the double-free the source risked by freeing meta on
// every segment.
func (m *Mount) unlinkInode(parentBlock, headBlockIdx uint64, head *Inode) error {
	seg := head
	segBlock := headBlockIdx
	for {
		for _, l := range seg.Links {
			if l != 0 {
				if err := m.PutBlock(l); err != nil {
					return err
				}
			}
		}

		next := seg.Next
		if segBlock == headBlockIdx {
			if err := m.PutBlock(head.Meta); err != nil {
				return err
			}
		}
		if err := m.PutBlock(segBlock); err != nil {
			return err
		}
		if next == 0 {
			break
		}
		nextSeg, err := m.readInode(next)
		if err != nil {
			return err
		}
		seg = nextSeg
		segBlock = next
	}

	carrierBlock, slot, err := m.findLink(parentBlock, headBlockIdx)
	if err != nil {
		return err
	}
	if slot == -1 {
		return ErrIO
	}
	return m.removeLink(carrierBlock, slot)
}
