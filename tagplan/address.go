package tagplan

import (
	"fmt"
	"strconv"
	"strings"
)

// TagRecord is the external, catalog-supplied description of one tag: its
// opaque name, its textual address, its declared scalar type, and its
// requested read/write attribute.
type TagRecord struct {
	Name      string
	Address   string
	Type      ScalarType
	Attribute Attribute
}

// Compile parses a TagRecord's textual address and validates it against
// its declared type and attribute, producing a compiled Point or a typed
// *Error (spec §4.1, §7). Parsing is strict: the textual address must be
// exactly "slave!area_digit offset" with an optional ".option" suffix; any
// surplus or defect is ADDRESS_FORMAT_INVALID.
func Compile(tag TagRecord, base AddressBase) (Point, error) {
	slaveID, area, offset, optSuffix, err := parseAddressString(tag.Address)
	if err != nil {
		return Point{}, newError(KindAddressFormatInvalid, tag.Name, err.Error())
	}

	opt, err := ParseOption(optSuffix)
	if err != nil {
		return Point{}, newError(KindAddressFormatInvalid, tag.Name, err.Error())
	}

	p := Point{
		SlaveID:      slaveID,
		Area:         area,
		StartAddress: adjustBase(offset, base),
		Type:         tag.Type,
		Option:       opt,
		Name:         tag.Name,
	}

	if area.IsReadOnly() && tag.Attribute.Writable() {
		return Point{}, newError(KindAttributeNotSupport, tag.Name,
			fmt.Sprintf("writable attribute not supported on %s", area))
	}

	switch area {
	case AreaCoil, AreaDiscreteInput:
		if tag.Type != Bit {
			return Point{}, newError(KindTypeNotSupport, tag.Name,
				fmt.Sprintf("type %s not supported on %s", tag.Type, area))
		}
		if opt.BitIndex > 7 {
			return Point{}, newError(KindAddressFormatInvalid, tag.Name, "bit index > 7")
		}

	case AreaInputRegister, AreaHoldRegister:
		switch tag.Type {
		case String:
			if opt.StringLength <= 0 || opt.StringLength > 127 {
				return Point{}, newError(KindAddressFormatInvalid, tag.Name,
					fmt.Sprintf("string length %d out of range 1..127", opt.StringLength))
			}
		case Bytes:
			if opt.BytesLength <= 0 || opt.BytesLength > 128 || opt.BytesLength%2 != 0 {
				return Point{}, newError(KindAddressFormatInvalid, tag.Name,
					fmt.Sprintf("bytes length %d must be even and in 1..128", opt.BytesLength))
			}
		case Bit:
			if opt.BitIndex > 15 {
				return Point{}, newError(KindAddressFormatInvalid, tag.Name, "bit index > 15")
			}
			if tag.Attribute.Writable() {
				return Point{}, newError(KindAttributeNotSupport, tag.Name,
					"writable BIT not supported on register area")
			}
		}
	}

	n, err := registerCount(tag.Type, opt)
	if err != nil {
		return Point{}, newError(KindTypeNotSupport, tag.Name, err.Error())
	}
	p.NRegister = n

	if int(p.StartAddress)+int(p.NRegister) > 65536 {
		return Point{}, newError(KindAddressFormatInvalid, tag.Name,
			"start address plus register count exceeds 65536")
	}

	return p, nil
}

// registerCount derives n_register per the type table in spec §4.1.
func registerCount(t ScalarType, opt Option) (uint16, error) {
	switch t {
	case Bit, Bool, Int8, Uint8, Ptr:
		return 1, nil
	case Int16, Uint16, Word:
		return 1, nil
	case Int32, Uint32, Float, DWord, Time, DateTime:
		return 2, nil
	case Int64, Uint64, Double, LWord:
		return 4, nil
	case String:
		switch opt.StringEncoding {
		case StringH, StringL:
			return uint16(ceilDiv(opt.StringLength, 2)), nil
		case StringD, StringE:
			return uint16(opt.StringLength), nil
		default:
			return 0, fmt.Errorf("string type has no encoding set")
		}
	case Bytes:
		return uint16(ceilDiv(opt.BytesLength, 2)), nil
	default:
		return 0, fmt.Errorf("unknown scalar type %d", uint8(t))
	}
}

func ceilDiv(n, d int) int {
	if n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}

// adjustBase applies the catalog's addressing convention (spec §3): an
// offset of 65536 under Base0 clamps to 65535; an offset of 0 under Base1
// stays 0 (it would otherwise underflow); otherwise the base is
// subtracted.
func adjustBase(offset uint32, base AddressBase) uint16 {
	if offset == 65536 && base == Base0 {
		return 65535
	}
	if offset == 0 && base == Base1 {
		return 0
	}
	return uint16(offset - uint32(base))
}

// parseAddressString is a strict lexer for "slave!area_digit offset
// [.option]" (spec §6: `"%hhu!%c%u"` plus a trailing option suffix). It
// rejects trailing garbage and validates numeric ranges before casting to
// storage width, rather than relying on a permissive sscanf-style parse.
func parseAddressString(s string) (slave uint8, area Area, offset uint32, optSuffix string, err error) {
	bang := strings.IndexByte(s, '!')
	if bang < 0 {
		return 0, 0, 0, "", fmt.Errorf("address %q missing '!'", s)
	}
	slaveStr := s[:bang]
	rest := s[bang+1:]
	if len(rest) == 0 {
		return 0, 0, 0, "", fmt.Errorf("address %q missing area/offset", s)
	}

	var a Area
	switch rest[0] {
	case '0':
		a = AreaCoil
	case '1':
		a = AreaDiscreteInput
	case '3':
		a = AreaInputRegister
	case '4':
		a = AreaHoldRegister
	default:
		return 0, 0, 0, "", fmt.Errorf("address %q has unknown area digit %q", s, rest[0])
	}

	offsetAndSuffix := rest[1:]
	digitsPart := offsetAndSuffix
	suffix := ""
	if dot := strings.IndexByte(offsetAndSuffix, '.'); dot >= 0 {
		digitsPart = offsetAndSuffix[:dot]
		suffix = offsetAndSuffix[dot+1:]
	}

	if !isDecimalDigits(slaveStr) {
		return 0, 0, 0, "", fmt.Errorf("address %q has invalid slave id %q", s, slaveStr)
	}
	slave64, err := strconv.ParseUint(slaveStr, 10, 8)
	if err != nil {
		return 0, 0, 0, "", fmt.Errorf("address %q has invalid slave id: %w", s, err)
	}

	if !isDecimalDigits(digitsPart) {
		return 0, 0, 0, "", fmt.Errorf("address %q has invalid offset %q", s, digitsPart)
	}
	offset64, err := strconv.ParseUint(digitsPart, 10, 32)
	if err != nil || offset64 > 65536 {
		return 0, 0, 0, "", fmt.Errorf("address %q has offset out of range 0..65536", s)
	}

	return uint8(slave64), a, uint32(offset64), suffix, nil
}

func isDecimalDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
