// Package tagplan is the Modbus tag-planning core: it compiles a catalog of
// textual tag addresses into typed points, coalesces them into the minimum
// number of on-wire read/write commands that fit a PDU byte budget, and
// packs write values into byte-accurate register/coil payloads.
//
// The package is purely functional: Compile, CoalesceRead, CoalesceWrite and
// PackWriteCmds take their inputs (including the PDU byte budget) as
// explicit arguments and hold no package-level mutable state, so concurrent
// callers with different budgets never interfere with one another.
package tagplan

import "fmt"

// Area is one of the four Modbus address spaces.
type Area uint8

const (
	// AreaCoil addresses a read/write single-bit output. Area digit '0'.
	AreaCoil Area = iota
	// AreaDiscreteInput addresses a read-only single-bit input. Area digit '1'.
	AreaDiscreteInput
	// AreaInputRegister addresses a read-only 16-bit word. Area digit '3'.
	AreaInputRegister
	// AreaHoldRegister addresses a read/write 16-bit word. Area digit '4'.
	AreaHoldRegister
)

func (a Area) String() string {
	switch a {
	case AreaCoil:
		return "coil"
	case AreaDiscreteInput:
		return "discrete_input"
	case AreaInputRegister:
		return "input_register"
	case AreaHoldRegister:
		return "hold_register"
	default:
		return fmt.Sprintf("area(%d)", uint8(a))
	}
}

// IsBitAddressed reports whether the area is bit-addressed (coil / discrete
// input) as opposed to register (16-bit word) addressed.
func (a Area) IsBitAddressed() bool {
	return a == AreaCoil || a == AreaDiscreteInput
}

// IsReadOnly reports whether the area never accepts a write attribute.
func (a Area) IsReadOnly() bool {
	return a == AreaDiscreteInput || a == AreaInputRegister
}

// ScalarType is the closed set of value types a point may carry.
type ScalarType uint8

const (
	Bit ScalarType = iota
	Bool
	Int8
	Uint8
	Int16
	Uint16
	Word
	Int32
	Uint32
	Float
	DWord
	Time
	DateTime
	Int64
	Uint64
	Double
	LWord
	String
	Bytes
	Ptr
)

func (t ScalarType) String() string {
	switch t {
	case Bit:
		return "BIT"
	case Bool:
		return "BOOL"
	case Int8:
		return "INT8"
	case Uint8:
		return "UINT8"
	case Int16:
		return "INT16"
	case Uint16:
		return "UINT16"
	case Word:
		return "WORD"
	case Int32:
		return "INT32"
	case Uint32:
		return "UINT32"
	case Float:
		return "FLOAT"
	case DWord:
		return "DWORD"
	case Time:
		return "TIME"
	case DateTime:
		return "DATETIME"
	case Int64:
		return "INT64"
	case Uint64:
		return "UINT64"
	case Double:
		return "DOUBLE"
	case LWord:
		return "LWORD"
	case String:
		return "STRING"
	case Bytes:
		return "BYTES"
	case Ptr:
		return "PTR"
	default:
		return fmt.Sprintf("ScalarType(%d)", uint8(t))
	}
}

// is32Bit / is64Bit classify the scalar types whose on-wire width is a
// multiple of a 32- or 64-bit word and whose serialization therefore
// consults the run's endianness selector.
func (t ScalarType) is32Bit() bool {
	switch t {
	case Int32, Uint32, Float, DWord, Time, DateTime:
		return true
	default:
		return false
	}
}

func (t ScalarType) is64Bit() bool {
	switch t {
	case Int64, Uint64, Double, LWord:
		return true
	default:
		return false
	}
}

// AddressBase is the catalog's textual-offset convention.
type AddressBase uint8

const (
	// Base0 means addresses in the catalog are already 0-based.
	Base0 AddressBase = 0
	// Base1 means addresses in the catalog are 1-based and are
	// decremented on compile.
	Base1 AddressBase = 1
)

// Attribute is a bitmask of the capabilities requested for a tag.
type Attribute uint8

const (
	// AttrRead marks a tag as readable.
	AttrRead Attribute = 1 << iota
	// AttrWrite marks a tag as writable.
	AttrWrite
)

func (a Attribute) Writable() bool { return a&AttrWrite != 0 }
func (a Attribute) Readable() bool { return a&AttrRead != 0 }

// StringEncoding selects how a STRING type's register pairs are laid out.
type StringEncoding uint8

const (
	StringH StringEncoding = iota // high byte first, verbatim
	StringL                       // low/high bytes swapped per register
	StringD                       // verbatim, one byte per register position D
	StringE                       // verbatim, one byte per register position E
)

func (e StringEncoding) String() string {
	switch e {
	case StringH:
		return "H"
	case StringL:
		return "L"
	case StringD:
		return "D"
	case StringE:
		return "E"
	default:
		return "?"
	}
}

// Endianness32 is the byte/word permutation applied to a 32-bit scalar
// before it is written in network byte order.
type Endianness32 uint8

const (
	ABCD Endianness32 = iota
	CDAB
	BADC
	DCBA
)

func (e Endianness32) String() string {
	switch e {
	case ABCD:
		return "ABCD"
	case CDAB:
		return "CDAB"
	case BADC:
		return "BADC"
	case DCBA:
		return "DCBA"
	default:
		return "?"
	}
}

// Endianness64 is the word permutation applied to a 64-bit scalar before
// it is written in network byte order.
type Endianness64 uint8

const (
	LL Endianness64 = iota
	BB
	LB
	BL
)

func (e Endianness64) String() string {
	switch e {
	case LL:
		return "LL"
	case BB:
		return "BB"
	case LB:
		return "LB"
	case BL:
		return "BL"
	default:
		return "?"
	}
}

// OptionKind discriminates which field of Option is populated.
type OptionKind uint8

const (
	OptionNone OptionKind = iota
	OptionBit
	OptionString
	OptionBytes
	OptionValue32
	OptionValue64
)

// Option is the discriminated sub-data a compiled Point may carry,
// populated by the shared address-suffix parser (see option.go). Exactly
// one field is meaningful, selected by Kind; the Write Packer only reads
// the field matching the Point's Type.
type Option struct {
	Kind OptionKind

	BitIndex uint8 // coils: 0..=7, register BIT: 0..=15

	StringLength   int
	StringEncoding StringEncoding

	BytesLength int

	Value32Endianness Endianness32
	Value32IsDefault  bool

	Value64Endianness Endianness64
	Value64IsDefault  bool
}

// Point is a compiled, typed descriptor of one addressable datum.
type Point struct {
	SlaveID      uint8
	Area         Area
	StartAddress uint16
	NRegister    uint16
	Type         ScalarType
	Option       Option
	Name         string
}

// Value is a tagged union over the scalar types a WritePoint may carry.
// Only the field matching Kind is meaningful. Raw holds the verbatim byte
// buffer for STRING/BYTES payloads.
type Value struct {
	Kind ScalarType

	Bit   uint8 // low bit significant, coils and register BIT
	Bool  bool
	I8    int8
	U8    uint8
	Ptr   uint8 // opaque 1-byte payload for PTR
	I16   int16
	U16   uint16
	Word  uint16
	I32   int32
	U32   uint32
	F32   float32
	DWord uint32
	Time  uint32
	DTime uint32
	I64   int64
	U64   uint64
	F64   float64
	LWord uint64
	Raw   []byte // STRING / BYTES
}

// WritePoint is a Point carrying the value to be written.
type WritePoint struct {
	Point
	Value Value
}

// ReadCmd is one coalesced read request: all Tags share SlaveID and Area;
// StartAddress is the minimum tag start and StartAddress+NRegister is the
// maximum tag.start+tag.n_register.
type ReadCmd struct {
	SlaveID      uint8
	Area         Area
	StartAddress uint16
	NRegister    uint16
	Tags         []Point
}

// WriteCmd is a ReadCmd plus the packed on-wire payload.
type WriteCmd struct {
	SlaveID      uint8
	Area         Area
	StartAddress uint16
	NRegister    uint16
	NByte        int
	Payload      []byte
	Tags         []WritePoint
}
