package tagplan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCompileHoldingRegisterUint16(t *testing.T) {
	tag := TagRecord{Name: "temp1", Address: "1!400001", Type: Uint16, Attribute: AttrRead}
	got, err := Compile(tag, Base1)
	if err != nil {
		t.Fatalf("Compile: unexpected error: %v", err)
	}
	want := Point{
		SlaveID:      1,
		Area:         AreaHoldRegister,
		StartAddress: 0,
		NRegister:    1,
		Type:         Uint16,
		Name:         "temp1",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Compile mismatch (-want +got):\n%s", diff)
	}
}

func TestCompileBase0OffsetClamp(t *testing.T) {
	tag := TagRecord{Name: "last", Address: "1!465536", Type: Uint16, Attribute: AttrRead}
	got, err := Compile(tag, Base0)
	if err != nil {
		t.Fatalf("Compile: unexpected error: %v", err)
	}
	if got.StartAddress != 65535 {
		t.Errorf("StartAddress = %d, want 65535", got.StartAddress)
	}
}

func TestCompileWritableDiscreteInputRejected(t *testing.T) {
	tag := TagRecord{Name: "di1", Address: "1!100001", Type: Bit, Attribute: AttrWrite}
	_, err := Compile(tag, Base1)
	if !errors.Is(err, ErrAttributeNotSupport) {
		t.Fatalf("Compile error = %v, want ErrAttributeNotSupport", err)
	}
}

func TestCompileBytesOddLengthRejected(t *testing.T) {
	tag := TagRecord{Name: "blk", Address: "1!400001.Y5", Type: Bytes, Attribute: AttrRead}
	_, err := Compile(tag, Base1)
	if !errors.Is(err, ErrAddressFormatInvalid) {
		t.Fatalf("Compile error = %v, want ErrAddressFormatInvalid", err)
	}
}

func TestCompileCoilTypeMismatchRejected(t *testing.T) {
	tag := TagRecord{Name: "badcoil", Address: "1!000001", Type: Uint16, Attribute: AttrRead}
	_, err := Compile(tag, Base1)
	if !errors.Is(err, ErrTypeNotSupport) {
		t.Fatalf("Compile error = %v, want ErrTypeNotSupport", err)
	}
}

func TestCompileStringRegisterCount(t *testing.T) {
	tag := TagRecord{Name: "name", Address: "1!400010.S10H", Type: String, Attribute: AttrRead}
	got, err := Compile(tag, Base1)
	if err != nil {
		t.Fatalf("Compile: unexpected error: %v", err)
	}
	if got.NRegister != 5 {
		t.Errorf("NRegister = %d, want 5 for a 10-byte H-encoded string", got.NRegister)
	}
}

func TestCompileMalformedAddress(t *testing.T) {
	cases := []string{
		"400001",    // missing '!'
		"1!",        // missing area/offset
		"1!200001",  // unknown area digit
		"1!400001x", // trailing garbage
		"x!400001",  // non-numeric slave
	}
	for _, addr := range cases {
		tag := TagRecord{Name: "t", Address: addr, Type: Uint16, Attribute: AttrRead}
		if _, err := Compile(tag, Base1); !errors.Is(err, ErrAddressFormatInvalid) {
			t.Errorf("Compile(%q) error = %v, want ErrAddressFormatInvalid", addr, err)
		}
	}
}
