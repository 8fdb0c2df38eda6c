// Initial hash value of FIPS PUB 180-4
// https://nvlpubs.nist.gov/nistpubs/FIPS/NIST.FIPS.180-4.pdf#page=20
package sha

import "encoding/binary"

// IVSize is the size of the SHA-512 initial hash value in bytes.
const IVSize = 64

// Initial hash value, section 5.3.5
// These are the first 64 bits of the fractional parts of the square roots
// of the first eight primes
var h0_512 = [8]uint64{
	0x6a09e667f3bcc908, 0xbb67ae8584caa73b, 0x3c6ef372fe94f82b, 0xa54ff53a5f1d36f1,
	0x510e527fade682d1, 0x9b05688c2b3e6c1f, 0x1f83d9abfb41bd6b, 0x5be0cd19137e2179,
}

// IV512 returns the SHA-512 initial hash value as 64 bytes.
// Each word is written big-endian, so the most significant bit is stored
// in the left-most bit position, e.g. 6a09e667f3bcc908 -> 6a 09 e6 67 ...
func IV512() []byte {
	out := make([]byte, IVSize)
	for i, w := range h0_512 {
		binary.BigEndian.PutUint64(out[i*8:], w)
	}
	return out
}
