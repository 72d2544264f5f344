package dccfs

import "testing"

// TestMockBlockIORoundTrip exercises C1 (readBlock/writeBlock) against
// the in-memory mock, with no real file descriptor involved.
func TestMockBlockIORoundTrip(t *testing.T) {
	back := newMockBackingFile(512 * 8)
	want := make([]byte, 512)
	for i := range want {
		want[i] = byte(i)
	}
	if err := writeBlock(back, 3, 512, want); err != nil {
		t.Fatalf("writeBlock: %v", err)
	}
	got, err := readBlock(back, 3, 512)
	if err != nil {
		t.Fatalf("readBlock: %v", err)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

// TestMockGetPutBlock exercises C2's allocator against a mock-backed
// Mount built without touching a real os.File or its advisory lock.
func TestMockGetPutBlock(t *testing.T) {
	m, err := formatMock(512, 16)
	if err != nil {
		t.Fatalf("formatMock: %v", err)
	}
	if m.Freeblks() != 13 {
		t.Fatalf("Freeblks() = %d, want 13", m.Freeblks())
	}
	first, err := m.GetBlock()
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if first != blockFirstFree {
		t.Fatalf("GetBlock() = %d, want %d", first, blockFirstFree)
	}
	second, err := m.GetBlock()
	if err != nil {
		t.Fatalf("GetBlock: %v", err)
	}
	if second != blockFirstFree+1 {
		t.Fatalf("second GetBlock() = %d, want %d", second, blockFirstFree+1)
	}
	if err := m.PutBlock(second); err != nil {
		t.Fatalf("PutBlock: %v", err)
	}
	if m.sb.Freelist != second {
		t.Fatalf("freelist head after PutBlock = %d, want %d", m.sb.Freelist, second)
	}
}

// TestMockResolveAndFindLink exercises C3/C4 (findLink, resolve)
// directly against mkdir-created state on a mock-backed Mount.
func TestMockResolveAndFindLink(t *testing.T) {
	m, err := formatMock(512, 64)
	if err != nil {
		t.Fatalf("formatMock: %v", err)
	}
	if err := m.Mkdir("/a"); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	r, err := m.resolve("/a")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if r.Target == nil {
		t.Fatalf("resolve(/a) found no target")
	}
	if r.TargetInode.Mode != IMDIR {
		t.Fatalf("resolve(/a) mode = %d, want IMDIR", r.TargetInode.Mode)
	}

	carrier, slot, err := m.findLink(blockRootInode, *r.Target)
	if err != nil {
		t.Fatalf("findLink: %v", err)
	}
	if carrier != blockRootInode || slot != 0 {
		t.Fatalf("findLink(root, a) = (%d, %d), want (%d, 0)", carrier, slot, blockRootInode)
	}
}
