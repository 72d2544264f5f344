package dccfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
)

// order is the fixed byte order for every on-disk integer field. The
// image is self-produced and self-consumed, so there is no need to
// sniff or record an endianness the way a format shared with foreign
// encoders would.
var order binary.ByteOrder = binary.LittleEndian

// decodeRecord fills the exported fields of v, in declaration order,
// by reading them sequentially from buf. v must be a pointer to a
// struct whose exported fields are all fixed-size binary.Read-able
// types (uint64, [N]byte, and so on). Fields whose name does not start
// with an uppercase letter are skipped, mirroring the convention the
// teacher's Superblock.UnmarshalBinary uses to separate wire fields
// from runtime-only bookkeeping fields on the same struct.
func decodeRecord(buf []byte, v interface{}) error {
	r := bytes.NewReader(buf)
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := f.Name
		if len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
			continue
		}
		fv := rv.Field(i)
		if !fv.CanSet() {
			continue
		}
		if err := binary.Read(r, order, fv.Addr().Interface()); err != nil {
			return fmt.Errorf("dccfs: decode field %s: %w", name, err)
		}
	}
	return nil
}

// encodeRecord writes the exported fields of v, in declaration order,
// into a buffer of exactly blksz bytes, zero-padded. See decodeRecord
// for the field-selection rule.
func encodeRecord(v interface{}, blksz uint64) ([]byte, error) {
	var buf bytes.Buffer
	rv := reflect.ValueOf(v).Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := f.Name
		if len(name) == 0 || name[0] < 'A' || name[0] > 'Z' {
			continue
		}
		fv := rv.Field(i)
		if err := binary.Write(&buf, order, fv.Interface()); err != nil {
			return nil, fmt.Errorf("dccfs: encode field %s: %w", name, err)
		}
	}

	if uint64(buf.Len()) > blksz {
		return nil, fmt.Errorf("dccfs: encoded record exceeds block size (%d > %d)", buf.Len(), blksz)
	}
	out := make([]byte, blksz)
	copy(out, buf.Bytes())
	return out, nil
}
