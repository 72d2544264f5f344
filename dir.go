package dccfs

import "strings"

// Mkdir creates an empty directory at path. The parent directory must
// already exist; path itself must not.
func (m *Mount) Mkdir(path string) error {
	r, err := m.resolve(path)
	if err != nil {
		return err
	}
	if r.Target != nil {
		return ErrExists
	}

	carrierBlock, slot, err := m.findLink(r.DirBlock, 0)
	if err != nil {
		return err
	}
	needExtraCarrier := slot == -1

	need := uint64(2)
	if needExtraCarrier {
		need++
	}
	if need > m.sb.Freeblks {
		return ErrNoSpace
	}

	dirBlock, err := m.GetBlock()
	if err != nil {
		return err
	}
	if dirBlock == 0 {
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
		if err := m.addLink(newCarrier, 0, dirBlock); err != nil {
			return err
		}
	} else {
		if err := m.addLink(carrierBlock, slot, dirBlock); err != nil {
			return err
		}
	}

	ino := Inode{Mode: IMDIR, Parent: r.DirBlock, Meta: infoBlock, Next: 0}
	if err := m.writeInode(dirBlock, &ino); err != nil {
		return err
	}

	info := NodeInfo{Size: 0}
	setName(&info, r.LeafName, NameMax(m.sb.Blksz))
	return m.writeNodeInfo(infoBlock, &info)
}

// Rmdir removes the empty directory at path.
func (m *Mount) Rmdir(path string) error {
	r, err := m.resolve(path)
	if err != nil {
		return err
	}
	if r.Target == nil {
		return ErrNotFound
	}
	if r.TargetInode.Mode != IMDIR {
		return ErrNotDirectory
	}
	info, err := m.readNodeInfo(r.TargetInode.Meta)
	if err != nil {
		return err
	}
	if info.Size != 0 {
		return ErrNotEmpty
	}

	if err := m.releaseChain(*r.Target, r.TargetInode, true); err != nil {
		return err
	}

	carrierBlock, slot, err := m.findLink(r.DirBlock, *r.Target)
	if err != nil {
		return err
	}
	if slot == -1 {
		return ErrIO
	}
	return m.removeLink(carrierBlock, slot)
}

// releaseChain returns every block owned by a head inode's whole
// overflow chain to the freelist: the chain's overflow carrier blocks
// and, when freeHead is true, the head itself and its nodeinfo block.
// Overflow segments never have a nodeinfo of their own, so only
// segment 0 (the head) frees one.
func (m *Mount) releaseChain(headBlockIdx uint64, head *Inode, freeHead bool) error {
	next := head.Next
	if freeHead {
		if err := m.PutBlock(head.Meta); err != nil {
			return err
		}
		if err := m.PutBlock(headBlockIdx); err != nil {
			return err
		}
	}
	for next != 0 {
		seg, err := m.readInode(next)
		if err != nil {
			return err
		}
		cur := next
		next = seg.Next
		if err := m.PutBlock(cur); err != nil {
			return err
		}
	}
	return nil
}

// ListDir returns a space-separated listing of path's entries,
// directories suffixed with "/". Slot order within a carrier, carriers
// visited head-first along Next.
func (m *Mount) ListDir(path string) (string, error) {
	r, err := m.resolve(path)
	if err != nil {
		return "", err
	}
	if r.Target == nil {
		return "", ErrNotFound
	}
	if r.TargetInode.Mode != IMDIR {
		return "", ErrNotDirectory
	}

	var names []string
	carrierBlock := *r.Target
	for {
		carrier, err := m.readInode(carrierBlock)
		if err != nil {
			return "", err
		}
		for _, child := range carrier.Links {
			if child == 0 {
				continue
			}
			childInode, err := m.readInode(child)
			if err != nil {
				return "", err
			}
			info, err := m.readNodeInfo(childInode.Meta)
			if err != nil {
				return "", err
			}
			name := getName(info)
			if childInode.Mode == IMDIR {
				name += "/"
			}
			names = append(names, name)
		}
		if carrier.Next == 0 {
			break
		}
		carrierBlock = carrier.Next
	}

	return strings.Join(names, " "), nil
}
