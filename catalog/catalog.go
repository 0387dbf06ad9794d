// Package catalog loads a YAML tag catalog into the records and gateway
// settings tagplan.Compile consumes. It is the gateway's only dependency on
// a concrete file format; the core tagplan package never reads YAML itself.
package catalog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fenwick-industrial/modbus-gateway/tagplan"
)

// Settings are the catalog-wide gateway parameters: the addressing
// convention, the PDU byte budget, and the default 32-/64-bit endianness
// applied to points that defer to the run default.
type Settings struct {
	AddressBase  tagplan.AddressBase
	MaxByte      uint16
	Endianness32 tagplan.Endianness32
	Endianness64 tagplan.Endianness64
}

// Catalog is a loaded, not-yet-compiled set of tag records plus the
// settings needed to compile them.
type Catalog struct {
	Settings Settings
	Tags     []tagplan.TagRecord
}

type yamlFile struct {
	Settings yamlSettings `yaml:"settings"`
	Tags     []yamlTag    `yaml:"tags"`
}

type yamlSettings struct {
	AddressBase  int    `yaml:"address_base"`
	MaxByte      uint16 `yaml:"max_byte"`
	Endianness32 string `yaml:"endianness32"`
	Endianness64 string `yaml:"endianness64"`
}

type yamlTag struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	Type      string `yaml:"type"`
	Attribute string `yaml:"attribute"`
}

// LoadFile reads and parses a catalog YAML file at path.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()

	cat, err := Load(f)
	if err != nil {
		return Catalog{}, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cat, nil
}

// Load parses a catalog YAML document from r.
func Load(r io.Reader) (Catalog, error) {
	var raw yamlFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}

	settings, err := parseSettings(raw.Settings)
	if err != nil {
		return Catalog{}, err
	}

	tags := make([]tagplan.TagRecord, 0, len(raw.Tags))
	for i, t := range raw.Tags {
		scalarType, err := parseScalarType(t.Type)
		if err != nil {
			return Catalog{}, fmt.Errorf("tag[%d] %q: %w", i, t.Name, err)
		}
		attr, err := parseAttribute(t.Attribute)
		if err != nil {
			return Catalog{}, fmt.Errorf("tag[%d] %q: %w", i, t.Name, err)
		}
		tags = append(tags, tagplan.TagRecord{
			Name:      t.Name,
			Address:   t.Address,
			Type:      scalarType,
			Attribute: attr,
		})
	}

	return Catalog{Settings: settings, Tags: tags}, nil
}

func parseSettings(s yamlSettings) (Settings, error) {
	base := tagplan.AddressBase(s.AddressBase)
	if base != tagplan.Base0 && base != tagplan.Base1 {
		return Settings{}, fmt.Errorf("settings: address_base must be 0 or 1, got %d", s.AddressBase)
	}
	if s.MaxByte == 0 {
		return Settings{}, fmt.Errorf("settings: max_byte must be positive")
	}

	e32 := tagplan.ABCD
	if s.Endianness32 != "" {
		var err error
		e32, err = parseEndianness32(s.Endianness32)
		if err != nil {
			return Settings{}, fmt.Errorf("settings: %w", err)
		}
	}
	e64 := tagplan.LL
	if s.Endianness64 != "" {
		var err error
		e64, err = parseEndianness64(s.Endianness64)
		if err != nil {
			return Settings{}, fmt.Errorf("settings: %w", err)
		}
	}

	return Settings{AddressBase: base, MaxByte: s.MaxByte, Endianness32: e32, Endianness64: e64}, nil
}

func parseScalarType(s string) (tagplan.ScalarType, error) {
	switch strings.ToUpper(s) {
	case "BIT":
		return tagplan.Bit, nil
	case "BOOL":
		return tagplan.Bool, nil
	case "INT8":
		return tagplan.Int8, nil
	case "UINT8":
		return tagplan.Uint8, nil
	case "INT16":
		return tagplan.Int16, nil
	case "UINT16":
		return tagplan.Uint16, nil
	case "WORD":
		return tagplan.Word, nil
	case "INT32":
		return tagplan.Int32, nil
	case "UINT32":
		return tagplan.Uint32, nil
	case "FLOAT":
		return tagplan.Float, nil
	case "DWORD":
		return tagplan.DWord, nil
	case "TIME":
		return tagplan.Time, nil
	case "DATETIME":
		return tagplan.DateTime, nil
	case "INT64":
		return tagplan.Int64, nil
	case "UINT64":
		return tagplan.Uint64, nil
	case "DOUBLE":
		return tagplan.Double, nil
	case "LWORD":
		return tagplan.LWord, nil
	case "STRING":
		return tagplan.String, nil
	case "BYTES":
		return tagplan.Bytes, nil
	case "PTR":
		return tagplan.Ptr, nil
	default:
		return 0, fmt.Errorf("unknown type %q", s)
	}
}

func parseAttribute(s string) (tagplan.Attribute, error) {
	switch strings.ToUpper(s) {
	case "R":
		return tagplan.AttrRead, nil
	case "W":
		return tagplan.AttrWrite, nil
	case "RW", "WR":
		return tagplan.AttrRead | tagplan.AttrWrite, nil
	default:
		return 0, fmt.Errorf("unknown attribute %q, want R, W, or RW", s)
	}
}

func parseEndianness32(s string) (tagplan.Endianness32, error) {
	switch strings.ToUpper(s) {
	case "ABCD":
		return tagplan.ABCD, nil
	case "CDAB":
		return tagplan.CDAB, nil
	case "BADC":
		return tagplan.BADC, nil
	case "DCBA":
		return tagplan.DCBA, nil
	default:
		return 0, fmt.Errorf("unknown endianness32 %q", s)
	}
}

func parseEndianness64(s string) (tagplan.Endianness64, error) {
	switch strings.ToUpper(s) {
	case "LL":
		return tagplan.LL, nil
	case "BB":
		return tagplan.BB, nil
	case "LB":
		return tagplan.LB, nil
	case "BL":
		return tagplan.BL, nil
	default:
		return 0, fmt.Errorf("unknown endianness64 %q", s)
	}
}
