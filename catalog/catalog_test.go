package catalog

import (
	"strings"
	"testing"

	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

const sampleYAML = `
settings:
  address_base: 1
  max_byte: 100
  endianness32: CDAB
  endianness64: LL
tags:
  - name: temp1
    address: "1!400001"
    type: UINT16
    attribute: R
  - name: setpoint
    address: "1!400002.E32=BADC"
    type: FLOAT
    attribute: RW
`

func TestLoadParsesSettingsAndTags(t *testing.T) {
	cat, err := Load(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Settings.AddressBase != tagplan.Base1 {
		t.Errorf("AddressBase = %v, want Base1", cat.Settings.AddressBase)
	}
	if cat.Settings.MaxByte != 100 {
		t.Errorf("MaxByte = %d, want 100", cat.Settings.MaxByte)
	}
	if cat.Settings.Endianness32 != tagplan.CDAB {
		t.Errorf("Endianness32 = %v, want CDAB", cat.Settings.Endianness32)
	}
	if len(cat.Tags) != 2 {
		t.Fatalf("len(Tags) = %d, want 2", len(cat.Tags))
	}
	if cat.Tags[0].Type != tagplan.Uint16 || cat.Tags[0].Attribute != tagplan.AttrRead {
		t.Errorf("Tags[0] = %+v, want Type=Uint16 Attribute=AttrRead", cat.Tags[0])
	}
	if cat.Tags[1].Attribute != tagplan.AttrRead|tagplan.AttrWrite {
		t.Errorf("Tags[1].Attribute = %v, want RW", cat.Tags[1].Attribute)
	}

	// Round trip through Compile to make sure the loaded records are usable.
	for _, tag := range cat.Tags {
		if _, err := tagplan.Compile(tag, cat.Settings.AddressBase); err != nil {
			t.Errorf("Compile(%q): %v", tag.Name, err)
		}
	}
}

func TestLoadRejectsUnknownType(t *testing.T) {
	const bad = `
settings:
  address_base: 0
  max_byte: 100
tags:
  - name: bogus
    address: "1!400001"
    type: NOT_A_TYPE
    attribute: R
`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Error("Load: want error for unknown type, got nil")
	}
}

func TestLoadRejectsZeroMaxByte(t *testing.T) {
	const bad = `
settings:
  address_base: 0
  max_byte: 0
tags: []
`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Error("Load: want error for zero max_byte, got nil")
	}
}
