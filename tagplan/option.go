package tagplan

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseOption decodes the trailing type-option suffix of a textual address
// (the part after the '.' that follows "slave!area_digit offset", see address.go)
// into a discriminated Option record. It is the "shared option parser"
// collaborator of spec §4.4/§6: every Point carries the same Option shape,
// and the Write Packer and area/type validation in Compile only read the
// field selected by Kind.
//
// Grammar (case-sensitive, no surrounding whitespace):
//
//	""                 -> OptionNone
//	"B" digits          -> OptionBit,     BitIndex
//	"S" digits encoding  -> OptionString,  StringLength + StringEncoding ('H'|'L'|'D'|'E')
//	"Y" digits           -> OptionBytes,   BytesLength
//	"E32=" word          -> OptionValue32, explicit Endianness32 ('ABCD'|'CDAB'|'BADC'|'DCBA')
//	"E64=" word          -> OptionValue64, explicit Endianness64 ('LL'|'BB'|'LB'|'BL')
//
// Parsing is strict: any unrecognized prefix or trailing garbage after the
// numeric/word field is rejected rather than silently truncated.
func ParseOption(suffix string) (Option, error) {
	if suffix == "" {
		return Option{Kind: OptionNone}, nil
	}

	switch suffix[0] {
	case 'B':
		n, err := strconv.ParseUint(suffix[1:], 10, 8)
		if err != nil {
			return Option{}, fmt.Errorf("invalid bit option %q: %w", suffix, err)
		}
		return Option{Kind: OptionBit, BitIndex: uint8(n)}, nil

	case 'S':
		if len(suffix) < 2 {
			return Option{}, fmt.Errorf("invalid string option %q", suffix)
		}
		digits := suffix[1 : len(suffix)-1]
		encChar := suffix[len(suffix)-1]
		n, err := strconv.Atoi(digits)
		if err != nil {
			return Option{}, fmt.Errorf("invalid string option %q: %w", suffix, err)
		}
		enc, err := parseStringEncoding(encChar)
		if err != nil {
			return Option{}, fmt.Errorf("invalid string option %q: %w", suffix, err)
		}
		return Option{Kind: OptionString, StringLength: n, StringEncoding: enc}, nil

	case 'Y':
		n, err := strconv.Atoi(suffix[1:])
		if err != nil {
			return Option{}, fmt.Errorf("invalid bytes option %q: %w", suffix, err)
		}
		return Option{Kind: OptionBytes, BytesLength: n}, nil

	case 'E':
		eq := strings.IndexByte(suffix, '=')
		if eq < 0 {
			return Option{}, fmt.Errorf("invalid endianness option %q", suffix)
		}
		switch suffix[:eq] {
		case "E32":
			e, err := parseEndianness32(suffix[eq+1:])
			if err != nil {
				return Option{}, fmt.Errorf("invalid endianness option %q: %w", suffix, err)
			}
			return Option{Kind: OptionValue32, Value32Endianness: e, Value32IsDefault: false}, nil
		case "E64":
			e, err := parseEndianness64(suffix[eq+1:])
			if err != nil {
				return Option{}, fmt.Errorf("invalid endianness option %q: %w", suffix, err)
			}
			return Option{Kind: OptionValue64, Value64Endianness: e, Value64IsDefault: false}, nil
		default:
			return Option{}, fmt.Errorf("invalid endianness option %q", suffix)
		}

	default:
		return Option{}, fmt.Errorf("unrecognized option suffix %q", suffix)
	}
}

func parseStringEncoding(c byte) (StringEncoding, error) {
	switch c {
	case 'H':
		return StringH, nil
	case 'L':
		return StringL, nil
	case 'D':
		return StringD, nil
	case 'E':
		return StringE, nil
	default:
		return 0, fmt.Errorf("unknown string encoding %q", c)
	}
}

func parseEndianness32(word string) (Endianness32, error) {
	switch word {
	case "ABCD":
		return ABCD, nil
	case "CDAB":
		return CDAB, nil
	case "BADC":
		return BADC, nil
	case "DCBA":
		return DCBA, nil
	default:
		return 0, fmt.Errorf("unknown 32-bit endianness %q", word)
	}
}

func parseEndianness64(word string) (Endianness64, error) {
	switch word {
	case "LL":
		return LL, nil
	case "BB":
		return BB, nil
	case "LB":
		return LB, nil
	case "BL":
		return BL, nil
	default:
		return 0, fmt.Errorf("unknown 64-bit endianness %q", word)
	}
}
