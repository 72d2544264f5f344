//go:build fuse

package dccfs

import (
	"strings"

	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/hanwen/go-fuse/v2/fuse/nodefs"
	"github.com/hanwen/go-fuse/v2/fuse/pathfs"
)

// fuseFS adapts a Mount to go-fuse's pathfs.FileSystem, grounded on
// the teacher's inode_fuse.go bridge (Lookup/Open/OpenDir/FillAttr),
// rewired against this module's path-based resolve/list/read instead
// of squashfs's inode table lookups. pathfs's name-string interface
// maps directly onto this module's path-based API, unlike an
// inode-number-keyed node tree.
type fuseFS struct {
	pathfs.FileSystem
	mount *Mount
}

// NewFuseFS returns a pathfs.FileSystem backed by m, suitable for
// pathfs.NewPathNodeFs and a fuse.Server.
func NewFuseFS(m *Mount) pathfs.FileSystem {
	return &fuseFS{FileSystem: pathfs.NewDefaultFileSystem(), mount: m}
}

// toImagePath maps a go-fuse relative name ("", "a", "a/b") onto this
// module's absolute path form.
func toImagePath(name string) string {
	if name == "" {
		return "/"
	}
	return "/" + name
}

func (fsys *fuseFS) GetAttr(name string, context *fuse.Context) (*fuse.Attr, fuse.Status) {
	r, err := fsys.mount.resolve(toImagePath(name))
	if err != nil || r.Target == nil {
		return nil, fuse.ENOENT
	}
	attr := &fuse.Attr{Mode: uint32(r.TargetInode.FileMode()), Ino: *r.Target + fsys.mount.inoOfft}
	if r.TargetInode.Mode == IMREG {
		info, err := fsys.mount.readNodeInfo(r.TargetInode.Meta)
		if err == nil {
			attr.Size = info.Size
		}
	}
	return attr, fuse.OK
}

func (fsys *fuseFS) OpenDir(name string, context *fuse.Context) ([]fuse.DirEntry, fuse.Status) {
	listing, err := fsys.mount.ListDir(toImagePath(name))
	if err != nil {
		return nil, fuse.ENOENT
	}
	var entries []fuse.DirEntry
	if listing != "" {
		for _, n := range strings.Split(listing, " ") {
			mode := uint32(fuse.S_IFREG)
			if strings.HasSuffix(n, "/") {
				mode = fuse.S_IFDIR
				n = strings.TrimSuffix(n, "/")
			}
			entries = append(entries, fuse.DirEntry{Name: n, Mode: mode})
		}
	}
	return entries, fuse.OK
}

func (fsys *fuseFS) Open(name string, flags uint32, context *fuse.Context) (nodefs.File, fuse.Status) {
	r, err := fsys.mount.resolve(toImagePath(name))
	if err != nil || r.Target == nil {
		return nil, fuse.ENOENT
	}
	if r.TargetInode.Mode != IMREG {
		return nil, fuse.EISDIR
	}
	return &fuseFile{File: nodefs.NewDefaultFile(), mount: fsys.mount, path: toImagePath(name)}, fuse.OK
}

// fuseFile backs an open regular file with a Mount-level ReadFile call
// per read, since the core engine keeps no file handle state of its
// own between calls.
type fuseFile struct {
	nodefs.File
	mount *Mount
	path  string
}

func (f *fuseFile) Read(dest []byte, off int64) (fuse.ReadResult, fuse.Status) {
	buf := make([]byte, off+int64(len(dest)))
	n, err := f.mount.ReadFile(f.path, buf, uint64(len(buf)))
	if err != nil {
		return nil, fuse.EIO
	}
	if uint64(off) >= n {
		return fuse.ReadResultData(nil), fuse.OK
	}
	end := n
	if uint64(off)+uint64(len(dest)) < end {
		end = uint64(off) + uint64(len(dest))
	}
	return fuse.ReadResultData(buf[off:end]), fuse.OK
}
