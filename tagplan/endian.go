package tagplan

// apply32 permutes a 4-byte big-endian-encoded 32-bit value in place
// according to e. The transform name spells the output byte order in
// terms of the natural (ABCD) order: e.g. CDAB places the original C,D
// bytes first, then A,B. Each transform is its own inverse (spec §8,
// property 8; verified by *_test.go's involution checks).
func apply32(b []byte, e Endianness32) {
	switch e {
	case ABCD:
		// identity
	case CDAB:
		b[0], b[1], b[2], b[3] = b[2], b[3], b[0], b[1]
	case BADC:
		b[0], b[1] = b[1], b[0]
		b[2], b[3] = b[3], b[2]
	case DCBA:
		b[0], b[1], b[2], b[3] = b[3], b[2], b[1], b[0]
	}
}

// apply64 permutes an 8-byte big-endian-encoded 64-bit value in place
// according to e (spec §4.3). Like apply32, every case is an involution.
func apply64(b []byte, e Endianness64) {
	switch e {
	case LL:
		// identity
	case BB:
		for i, j := 0, 7; i < j; i, j = i+1, j-1 {
			b[i], b[j] = b[j], b[i]
		}
	case LB:
		var tmp [4]byte
		copy(tmp[:], b[0:4])
		copy(b[0:4], b[4:8])
		copy(b[4:8], tmp[:])
	case BL:
		reverse4(b[0:4])
		reverse4(b[4:8])
	}
}

func reverse4(b []byte) {
	b[0], b[3] = b[3], b[0]
	b[1], b[2] = b[2], b[1]
}
