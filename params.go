// Package param derives and serializes the public parameters of the Pixel
// forward-secure signature scheme.
//
// By default the groups are switched so that public keys lie in the smaller
// group: PixelG1 is BLS12-381 G2 and PixelG2 is BLS12-381 G1.
package param

import (
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"sync"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/hyperledger/aries-framework-go/component/log"
	"golang.org/x/crypto/hkdf"

	"github.com/Iscaraca/pixelparam/internal/hash/sha"
)

// LoggerModule is the log module name used by this package.
const LoggerModule = "pixel-param"

var logger = log.New(LoggerModule)

// PixelG1 is the group holding h and the h list (BLS12-381 G2).
type PixelG1 = bls12381.G2Affine

// PixelG2 is the group holding the generator g2 (BLS12-381 G1).
type PixelG2 = bls12381.G1Affine

// g2Gen is the PixelG2 generator, i.e. the BLS12-381 G1 generator.
var (
	_, _, g2Gen, _ = bls12381.Generators()
)

// PubParam holds the public parameter:
//   - g2: the generator of PixelG2
//   - h: a PixelG1 element
//   - hlist: depth+1 PixelG1 elements h_0, h_1, ..., h_d
//
// A PubParam is never modified after construction and is safe for concurrent use.
type PubParam struct {
	depth       int
	ciphersuite uint8
	g2          PixelG2
	h           PixelG1
	hlist       []PixelG1
}

// New derives the public parameter from a seed and a ciphersuite id.
//
// Inputs:
//   - seed, an octet string of at least 32 bytes.
//   - ciphersuite, an identifier from the ciphersuite whitelist.
//
// Procedure:
//  1. if length(seed) < 32, return INVALID
//  2. if ciphersuite is not supported, return INVALID
//  3. m = HKDF-Extract(DOM_SEP_PARAM_GEN, seed)
//  4. g2 = generator of PixelG2
//  5. t = HKDF-Expand(m, "H2G_h", 32); h = hash_to_curve(t, ciphersuite)
//  6. for i in (0, ..., d):
//     t = HKDF-Expand(m, "H2G_h" || I2OSP(i, 1), 32); h_i = hash_to_curve(t, ciphersuite)
//  7. return (d, ciphersuite, g2, h, (h_0, ..., h_d))
func New(seed []byte, ciphersuite uint8) (*PubParam, error) {
	return derive(seed, ciphersuite, ConstD)
}

func derive(seed []byte, ciphersuite uint8, depth int) (*PubParam, error) {
	// 1. make sure we have enough entropy
	if len(seed) < SeedMinLength {
		return nil, fmt.Errorf("%w: got %d bytes, need at least %d", ErrSeedTooShort, len(seed), SeedMinLength)
	}

	// 2. make sure the ciphersuite is valid
	cs, err := LookupCiphersuite(ciphersuite)
	if err != nil {
		return nil, err
	}

	// the index of h_i is encoded in a single byte
	if depth < 0 || depth > 255 {
		return nil, fmt.Errorf("INVALID: depth %d does not fit in one byte", depth)
	}

	// 3. m = HKDF-Extract(DOM_SEP_PARAM_GEN, seed)
	prk := hkdf.Extract(sha512.New, seed, []byte(DomSepParamGen))

	// 5. h
	h, err := expandToG1(prk, []byte(H2GInfo), cs)
	if err != nil {
		return nil, fmt.Errorf("derive h: %w", err)
	}

	// 6. h_0, ..., h_d
	hlist := make([]PixelG1, depth+1)
	for i := 0; i <= depth; i++ {
		hlist[i], err = expandToG1(prk, hInfo(i), cs)
		if err != nil {
			return nil, fmt.Errorf("derive h_%d: %w", i, err)
		}
	}

	logger.Debugf("derived public parameter: ciphersuite %d, depth %d", ciphersuite, depth)

	// 7. format the output
	return &PubParam{
		depth:       depth,
		ciphersuite: ciphersuite,
		g2:          g2Gen,
		h:           h,
		hlist:       hlist,
	}, nil
}

// hInfo returns the HKDF info of h_i: "H2G_h" || I2OSP(i, 1).
func hInfo(i int) []byte {
	return append([]byte(H2GInfo), byte(i))
}

// expandToG1 computes hash_to_curve(HKDF-Expand(prk, info, 32), ciphersuite).
func expandToG1(prk, info []byte, cs Ciphersuite) (PixelG1, error) {
	t := make([]byte, HKDFOutputLen)
	if _, err := io.ReadFull(hkdf.Expand(sha512.New, prk, info), t); err != nil {
		// 32 bytes are far below the HKDF-SHA512 limit, so this is a bug
		logger.Errorf("HKDF-Expand failed for info %x: %v", info, err)
		return PixelG1{}, fmt.Errorf("%w: %v", ErrInternalKDF, err)
	}
	return cs.HashToCurve(t)
}

// DefaultSeed returns the seed of the default public parameter: the SHA-512
// initial hash value, see FIPS 180-4 section 5.3.5.
func DefaultSeed() []byte {
	return sha.IV512()
}

var defaultParam = sync.OnceValue(func() *PubParam {
	pp, err := New(DefaultSeed(), 0)
	if err != nil {
		panic(fmt.Sprintf("pixel-param: default public parameter: %v", err))
	}
	return pp
})

// Default returns the public parameter derived from DefaultSeed with
// ciphersuite 0. It is computed once and shared.
func Default() *PubParam {
	return defaultParam()
}

// Ciphersuite returns the ciphersuite id.
func (pp *PubParam) Ciphersuite() uint8 {
	return pp.ciphersuite
}

// Depth returns the depth of the time tree.
func (pp *PubParam) Depth() int {
	return pp.depth
}

// G2 returns the PixelG2 generator.
func (pp *PubParam) G2() PixelG2 {
	return pp.g2
}

// H returns h.
func (pp *PubParam) H() PixelG1 {
	return pp.h
}

// HList returns a copy of h_0, ..., h_d.
func (pp *PubParam) HList() []PixelG1 {
	out := make([]PixelG1, len(pp.hlist))
	copy(out, pp.hlist)
	return out
}

// Size returns the length of the serialized public parameter, i.e. of the blob
// |ciphersuite id| depth | g2 | h | h_0 | ... | h_d |
// where ciphersuite id and depth take one byte each.
func Size(compressed bool, depth int) int {
	g1Size, g2Size := bls12381.SizeOfG2AffineUncompressed, bls12381.SizeOfG1AffineUncompressed
	if compressed {
		g1Size, g2Size = bls12381.SizeOfG2AffineCompressed, bls12381.SizeOfG1AffineCompressed
	}
	// g2, then h and the depth+1 elements of the h list
	return headerLen + g2Size + (depth+2)*g1Size
}

// Size returns the storage requirement of pp.
func (pp *PubParam) Size(compressed bool) int {
	return Size(compressed, pp.depth)
}

// Equal compares two public parameters field by field.
func (pp *PubParam) Equal(other *PubParam) bool {
	if pp == nil || other == nil {
		return pp == other
	}
	if pp.depth != other.depth || len(pp.hlist) != len(other.hlist) {
		return false
	}
	for i := range pp.hlist {
		if !pp.hlist[i].Equal(&other.hlist[i]) {
			return false
		}
	}
	return pp.ciphersuite == other.ciphersuite && pp.g2.Equal(&other.g2) && pp.h.Equal(&other.h)
}

// Validate checks the structure of pp: a whitelisted ciphersuite, the system
// depth, depth+1 list elements, the canonical g2 and no identity elements.
func (pp *PubParam) Validate() error {
	if !IsValidCiphersuite(pp.ciphersuite) {
		return fmt.Errorf("%w: %d", ErrInvalidCiphersuite, pp.ciphersuite)
	}
	if pp.depth != ConstD {
		return fmt.Errorf("%w: got %d, expected %d", ErrDepthMismatch, pp.depth, ConstD)
	}
	if len(pp.hlist) != pp.depth+1 {
		return fmt.Errorf("INVALID: h list has %d elements, expected %d", len(pp.hlist), pp.depth+1)
	}
	if !pp.g2.Equal(&g2Gen) {
		return fmt.Errorf("%w: g2 is not the PixelG2 generator", ErrMalformedPoint)
	}
	if pp.h.IsInfinity() {
		return fmt.Errorf("%w: h is the identity", ErrMalformedPoint)
	}
	for i := range pp.hlist {
		if pp.hlist[i].IsInfinity() {
			return fmt.Errorf("%w: h_%d is the identity", ErrMalformedPoint, i)
		}
	}
	return nil
}

// String dumps pp for debugging, one compressed element per line.
func (pp *PubParam) String() string {
	var sb strings.Builder
	g2 := pp.g2.Bytes()
	h := pp.h.Bytes()

	sb.WriteString("================================\n")
	sb.WriteString("==========Public Parameter======\n")
	fmt.Fprintf(&sb, "depth: %d\n", pp.depth)
	fmt.Fprintf(&sb, "ciphersuite: %d\n", pp.ciphersuite)
	fmt.Fprintf(&sb, "g2 : %s\n", hex.EncodeToString(g2[:]))
	fmt.Fprintf(&sb, "h  : %s\n", hex.EncodeToString(h[:]))
	for i := range pp.hlist {
		hi := pp.hlist[i].Bytes()
		fmt.Fprintf(&sb, "hlist: h%d: %s\n", i, hex.EncodeToString(hi[:]))
	}
	sb.WriteString("================================\n")
	return sb.String()
}
