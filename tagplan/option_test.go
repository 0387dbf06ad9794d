package tagplan

import "testing"

func TestParseOptionNone(t *testing.T) {
	opt, err := ParseOption("")
	if err != nil {
		t.Fatalf("ParseOption(\"\"): %v", err)
	}
	if opt.Kind != OptionNone {
		t.Errorf("Kind = %v, want OptionNone", opt.Kind)
	}
}

func TestParseOptionVariants(t *testing.T) {
	cases := []struct {
		suffix string
		check  func(t *testing.T, opt Option)
	}{
		{"B5", func(t *testing.T, opt Option) {
			if opt.Kind != OptionBit || opt.BitIndex != 5 {
				t.Errorf("got %+v, want Kind=OptionBit BitIndex=5", opt)
			}
		}},
		{"S20H", func(t *testing.T, opt Option) {
			if opt.Kind != OptionString || opt.StringLength != 20 || opt.StringEncoding != StringH {
				t.Errorf("got %+v, want Kind=OptionString StringLength=20 StringEncoding=H", opt)
			}
		}},
		{"Y8", func(t *testing.T, opt Option) {
			if opt.Kind != OptionBytes || opt.BytesLength != 8 {
				t.Errorf("got %+v, want Kind=OptionBytes BytesLength=8", opt)
			}
		}},
		{"E32=CDAB", func(t *testing.T, opt Option) {
			if opt.Kind != OptionValue32 || opt.Value32Endianness != CDAB {
				t.Errorf("got %+v, want Kind=OptionValue32 Value32Endianness=CDAB", opt)
			}
		}},
		{"E64=BL", func(t *testing.T, opt Option) {
			if opt.Kind != OptionValue64 || opt.Value64Endianness != BL {
				t.Errorf("got %+v, want Kind=OptionValue64 Value64Endianness=BL", opt)
			}
		}},
	}
	for _, c := range cases {
		opt, err := ParseOption(c.suffix)
		if err != nil {
			t.Fatalf("ParseOption(%q): %v", c.suffix, err)
		}
		c.check(t, opt)
	}
}

func TestParseOptionRejectsGarbage(t *testing.T) {
	cases := []string{"Z9", "B", "S10", "E32=XYZW", "E99=LL"}
	for _, suffix := range cases {
		if _, err := ParseOption(suffix); err == nil {
			t.Errorf("ParseOption(%q): want error, got nil", suffix)
		}
	}
}
