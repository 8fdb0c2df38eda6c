package param

import (
	"fmt"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// Ciphersuite describes how a ciphersuite identifier maps bytes to PixelG1.
type Ciphersuite struct {
	ID    uint8
	Suite string
	DST   string

	hashToPixelG1 func(msg, dst []byte) (bls12381.G2Affine, error)
}

// paramDSTPrefix || "CS0x-with-" || suite is the hash to curve DST of each ciphersuite.
const paramDSTPrefix = "PIXEL-PARAM-V01-"

var ciphersuites = [...]Ciphersuite{
	newCiphersuite(0, "BLS12381G2_XMD:SHA-256_SSWU_RO_", bls12381.HashToG2),
	newCiphersuite(1, "BLS12381G2_XMD:SHA-256_SSWU_NU_", bls12381.EncodeToG2),
}

func newCiphersuite(id uint8, suite string, m func(msg, dst []byte) (bls12381.G2Affine, error)) Ciphersuite {
	return Ciphersuite{
		ID:            id,
		Suite:         suite,
		DST:           fmt.Sprintf("%sCS%02x-with-%s", paramDSTPrefix, id, suite),
		hashToPixelG1: m,
	}
}

// ValidCiphersuites returns the ciphersuite whitelist.
func ValidCiphersuites() []uint8 {
	ids := make([]uint8, len(ciphersuites))
	for i := range ciphersuites {
		ids[i] = ciphersuites[i].ID
	}
	return ids
}

// IsValidCiphersuite reports whether id belongs to the ciphersuite whitelist.
func IsValidCiphersuite(id uint8) bool {
	return int(id) < len(ciphersuites)
}

// LookupCiphersuite returns the ciphersuite registered for id.
func LookupCiphersuite(id uint8) (Ciphersuite, error) {
	if !IsValidCiphersuite(id) {
		return Ciphersuite{}, fmt.Errorf("%w: %d", ErrInvalidCiphersuite, id)
	}
	return ciphersuites[id], nil
}

// HashToCurve maps msg to a PixelG1 element.
//
// Procedure:
//  1. Q = hash_to_curve(msg, DST) over BLS12-381 G2
//  2. if Q is the identity, return INVALID
//  3. return Q
func (cs Ciphersuite) HashToCurve(msg []byte) (PixelG1, error) {
	q, err := cs.hashToPixelG1(msg, []byte(cs.DST))
	if err != nil {
		return PixelG1{}, fmt.Errorf("%w: %v", ErrHashToCurve, err)
	}
	if q.IsInfinity() {
		return PixelG1{}, fmt.Errorf("%w: resulted in infinity", ErrHashToCurve)
	}
	return q, nil
}
