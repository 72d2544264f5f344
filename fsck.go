package dccfs

import "fmt"

// Check walks a whole image and verifies the invariants every mutation
// is expected to preserve: blocks partition into reachable-from-root,
// free-listed, and the fixed superblock/root-meta blocks; directory
// and file sizes match their link counts; and every overflow segment's
// back pointers are consistent with its chain.
func Check(m *Mount) error {
	seen := make(map[uint64]bool)
	seen[blockSuperblock] = true

	if err := checkInode(m, blockRootInode, blockRootInode, seen); err != nil {
		return err
	}

	freeCount := uint64(0)
	cur := m.sb.Freelist
	for cur != 0 {
		if seen[cur] {
			return fmt.Errorf("dccfs: fsck: block %d appears twice (freelist and reachable set)", cur)
		}
		seen[cur] = true
		freeCount++
		buf, err := readBlock(m.back, cur, m.sb.Blksz)
		if err != nil {
			return err
		}
		var fp Freepage
		if err := decodeRecord(buf, &fp); err != nil {
			return err
		}
		cur = fp.Next
	}
	if freeCount != m.sb.Freeblks {
		return fmt.Errorf("dccfs: fsck: freelist length %d does not match freeblks %d", freeCount, m.sb.Freeblks)
	}

	if uint64(len(seen)) != m.sb.Blks {
		return fmt.Errorf("dccfs: fsck: %d blocks accounted for, want %d", len(seen), m.sb.Blks)
	}

	return nil
}

// checkInode recursively validates a head inode's chain, its
// nodeinfo's recorded size, and (for directories) descends into every
// child.
func checkInode(m *Mount, headBlockIdx, parentBlockIdx uint64, seen map[uint64]bool) error {
	head, err := m.readInode(headBlockIdx)
	if err != nil {
		return err
	}
	if seen[headBlockIdx] {
		return fmt.Errorf("dccfs: fsck: block %d reachable twice", headBlockIdx)
	}
	seen[headBlockIdx] = true
	if seen[head.Meta] {
		return fmt.Errorf("dccfs: fsck: nodeinfo block %d reachable twice", head.Meta)
	}
	seen[head.Meta] = true

	info, err := m.readNodeInfo(head.Meta)
	if err != nil {
		return err
	}

	var entries uint64
	var dataBlocks uint64
	segBlock := headBlockIdx
	seg := head
	for {
		for _, l := range seg.Links {
			if l == 0 {
				continue
			}
			if head.Mode == IMDIR {
				entries++
				if err := checkInode(m, l, headBlockIdx, seen); err != nil {
					return err
				}
			} else {
				dataBlocks++
				if seen[l] {
					return fmt.Errorf("dccfs: fsck: data block %d reachable twice", l)
				}
				seen[l] = true
			}
		}
		if seg.Next == 0 {
			break
		}
		next, err := m.readInode(seg.Next)
		if err != nil {
			return err
		}
		if next.Mode != IMCHILD {
			return fmt.Errorf("dccfs: fsck: block %d reached via Next is not IMCHILD", seg.Next)
		}
		if next.Meta != segBlock {
			return fmt.Errorf("dccfs: fsck: IMCHILD %d back pointer does not match its predecessor", seg.Next)
		}
		if next.Parent != headBlockIdx {
			return fmt.Errorf("dccfs: fsck: IMCHILD %d parent does not match its head", seg.Next)
		}
		if seen[seg.Next] {
			return fmt.Errorf("dccfs: fsck: block %d reachable twice", seg.Next)
		}
		seen[seg.Next] = true
		segBlock = seg.Next
		seg = next
	}

	if head.Mode == IMDIR {
		if info.Size != entries {
			return fmt.Errorf("dccfs: fsck: directory %d nodeinfo.size=%d, counted %d", headBlockIdx, info.Size, entries)
		}
	} else if head.Mode == IMREG {
		want := ceilDiv(info.Size, m.sb.Blksz)
		if dataBlocks != want {
			return fmt.Errorf("dccfs: fsck: file %d nodeinfo.size=%d wants %d data blocks, found %d", headBlockIdx, info.Size, want, dataBlocks)
		}
	}

	return nil
}
