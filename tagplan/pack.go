package tagplan

import (
	"encoding/binary"
	"fmt"
	"math"
)

// PackWriteCmds fills the Payload and NByte fields of each WriteCmd
// produced by CoalesceWrite (spec §4.3). endian32/endian64 are the
// run-level defaults consulted when a point's own option defers
// ("is_default").
func PackWriteCmds(cmds []WriteCmd, endian32 Endianness32, endian64 Endianness64) error {
	for i := range cmds {
		if err := packOne(&cmds[i], endian32, endian64); err != nil {
			return err
		}
	}
	return nil
}

func packOne(cmd *WriteCmd, endian32 Endianness32, endian64 Endianness64) error {
	if cmd.Area.IsBitAddressed() {
		return packCoils(cmd)
	}
	return packRegisters(cmd, endian32, endian64)
}

// packRegisters writes each member point's encoded value into the run's
// zero-initialized payload at its byte offset (spec §4.3). NByte is set
// to 2*NRegister per the WriteCmd invariant (spec §3).
func packRegisters(cmd *WriteCmd, endian32 Endianness32, endian64 Endianness64) error {
	payload := make([]byte, 2*int(cmd.NRegister))
	for _, wp := range cmd.Tags {
		b, err := encodeValue(wp.Value, wp.Type, wp.Option, endian32, endian64)
		if err != nil {
			return fmt.Errorf("tagplan: pack tag %q: %w", wp.Name, err)
		}
		offset := 2 * int(wp.StartAddress-cmd.StartAddress)
		if offset < 0 || offset+len(b) > len(payload) {
			return fmt.Errorf("tagplan: pack tag %q: value overruns run payload", wp.Name)
		}
		copy(payload[offset:], b)
	}
	cmd.Payload = payload
	cmd.NByte = len(payload)
	return nil
}

// packCoils bit-packs each member point's low value bit into the run's
// payload, one bit per member in run (sorted) iteration order (spec
// §4.3). NByte is ceil(k/8) per the WriteCmd invariant (spec §3).
func packCoils(cmd *WriteCmd) error {
	k := len(cmd.Tags)
	payload := make([]byte, ceilDiv(k, 8))
	for i, wp := range cmd.Tags {
		if wp.Value.Bit&1 != 0 {
			payload[i/8] |= 1 << uint(i%8)
		}
	}
	cmd.Payload = payload
	cmd.NByte = len(payload)
	return nil
}

// encodeValue returns the wire-ready bytes for a single point's value:
// network byte order, with the declared endianness permutation already
// applied for 32-/64-bit scalars.
func encodeValue(v Value, t ScalarType, opt Option, endian32 Endianness32, endian64 Endianness64) ([]byte, error) {
	switch t {
	case Int16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, uint16(v.I16))
		return b, nil
	case Uint16:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, v.U16)
		return b, nil
	case Word:
		b := make([]byte, 2)
		binary.BigEndian.PutUint16(b, v.Word)
		return b, nil

	case Int32, Uint32, Float, DWord, Time, DateTime:
		var raw uint32
		switch t {
		case Int32:
			raw = uint32(v.I32)
		case Uint32:
			raw = v.U32
		case Float:
			raw = math.Float32bits(v.F32)
		case DWord:
			raw = v.DWord
		case Time:
			raw = v.Time
		case DateTime:
			raw = v.DTime
		}
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, raw)
		e := endian32
		if opt.Kind == OptionValue32 && !opt.Value32IsDefault {
			e = opt.Value32Endianness
		}
		apply32(b, e)
		return b, nil

	case Int64, Uint64, Double, LWord:
		var raw uint64
		switch t {
		case Int64:
			raw = uint64(v.I64)
		case Uint64:
			raw = v.U64
		case Double:
			raw = math.Float64bits(v.F64)
		case LWord:
			raw = v.LWord
		}
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, raw)
		e := endian64
		if opt.Kind == OptionValue64 && !opt.Value64IsDefault {
			e = opt.Value64Endianness
		}
		apply64(b, e)
		return b, nil

	case String:
		return encodeString(v.Raw, opt), nil

	case Bytes:
		b := make([]byte, len(v.Raw))
		copy(b, v.Raw)
		return b, nil

	case Bit:
		return []byte{v.Bit}, nil
	case Bool:
		if v.Bool {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case Int8:
		return []byte{byte(v.I8)}, nil
	case Uint8:
		return []byte{v.U8}, nil
	case Ptr:
		return []byte{v.Ptr}, nil

	default:
		return nil, fmt.Errorf("type %s is not writable", t)
	}
}

// encodeString applies the register-pair byte swap for StringL encoding;
// H, D and E write the raw bytes verbatim (spec §4.3).
func encodeString(raw []byte, opt Option) []byte {
	b := make([]byte, len(raw))
	copy(b, raw)
	if opt.StringEncoding == StringL {
		for i := 0; i+1 < len(b); i += 2 {
			b[i], b[i+1] = b[i+1], b[i]
		}
	}
	return b
}

// PointByteWidth returns the number of payload bytes a single point would
// contribute if packed on its own. It is a standalone helper (spec's
// SUPPLEMENTED FEATURES note) rather than inlined into packRegisters,
// because the gateway's metrics layer needs identical per-point byte
// accounting for payload-size histograms.
func PointByteWidth(t ScalarType, opt Option) int {
	switch t {
	case Bit, Bool, Int8, Uint8, Ptr:
		return 1
	case Int16, Uint16, Word:
		return 2
	case Int32, Uint32, Float, DWord, Time, DateTime:
		return 4
	case Int64, Uint64, Double, LWord:
		return 8
	case String:
		return opt.StringLength
	case Bytes:
		return opt.BytesLength
	default:
		return 0
	}
}
