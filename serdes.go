package param

import (
	"bytes"
	"fmt"
	"io"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// The encoding of group elements follows the zcash convention: the most
// significant bit of the first byte is set for compressed points and clear
// for uncompressed ones, so a point can be read without external context.
const compressedFlag = 0x80

// ================================================================
// Group element serialization

// pointSetter is implemented by *PixelG1 and *PixelG2.
type pointSetter interface {
	SetBytes(buf []byte) (int, error)
}

// PointToOctetsG1 converts a PixelG1 point to octets, compressed or not.
func PointToOctetsG1(p *PixelG1, compressed bool) []byte {
	if compressed {
		b := p.Bytes()
		return b[:]
	}
	b := p.RawBytes()
	return b[:]
}

// PointToOctetsG2 converts a PixelG2 point to octets, compressed or not.
func PointToOctetsG2(p *PixelG2, compressed bool) []byte {
	if compressed {
		b := p.Bytes()
		return b[:]
	}
	b := p.RawBytes()
	return b[:]
}

// SerializeG1 writes a PixelG1 point to w.
func SerializeG1(w io.Writer, p *PixelG1, compressed bool) error {
	_, err := w.Write(PointToOctetsG1(p, compressed))
	return err
}

// SerializeG2 writes a PixelG2 point to w.
func SerializeG2(w io.Writer, p *PixelG2, compressed bool) error {
	_, err := w.Write(PointToOctetsG2(p, compressed))
	return err
}

// DeserializeG1 reads a PixelG1 point from r and reports whether it was compressed.
func DeserializeG1(r io.Reader) (PixelG1, bool, error) {
	var p PixelG1
	compressed, err := readPoint(r, &p, bls12381.SizeOfG2AffineCompressed, bls12381.SizeOfG2AffineUncompressed)
	return p, compressed, err
}

// DeserializeG2 reads a PixelG2 point from r and reports whether it was compressed.
func DeserializeG2(r io.Reader) (PixelG2, bool, error) {
	var p PixelG2
	compressed, err := readPoint(r, &p, bls12381.SizeOfG1AffineCompressed, bls12381.SizeOfG1AffineUncompressed)
	return p, compressed, err
}

// readPoint decodes one point into p.
//
// Procedure:
//  1. read compressedSize bytes
//  2. if the first bit is 1, decode them as a compressed point
//  3. otherwise read the remaining uncompressedSize - compressedSize bytes
//     and decode the whole buffer as an uncompressed point
//
// Decoding rejects points off the curve, outside the subgroup, and invalid
// flag combinations.
func readPoint(r io.Reader, p pointSetter, compressedSize, uncompressedSize int) (bool, error) {
	buf := make([]byte, uncompressedSize)
	if _, err := io.ReadFull(r, buf[:compressedSize]); err != nil {
		return false, err
	}

	compressed := buf[0]&compressedFlag == compressedFlag
	if compressed {
		buf = buf[:compressedSize]
	} else {
		// read the next uncompressed - compressed size
		if _, err := io.ReadFull(r, buf[compressedSize:]); err != nil {
			return false, err
		}
	}

	if _, err := p.SetBytes(buf); err != nil {
		return false, fmt.Errorf("%w: %v", ErrMalformedPoint, err)
	}
	return compressed, nil
}

// ================================================================
// Public parameter serialization

// Bytes converts the public parameter into a blob:
//
// `|ciphersuite id| depth | g2 | h | hlist |` => bytes
//
// Every point uses the same compression. It returns an error if the
// ciphersuite id is invalid.
func (pp *PubParam) Bytes(compressed bool) ([]byte, error) {
	// check the cipher suite id
	if !IsValidCiphersuite(pp.ciphersuite) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCiphersuite, pp.ciphersuite)
	}

	buf := make([]byte, 0, pp.Size(compressed))

	// first byte is the ciphersuite id, second byte is the time depth
	buf = append(buf, pp.ciphersuite, byte(pp.depth))

	buf = append(buf, PointToOctetsG2(&pp.g2, compressed)...)
	buf = append(buf, PointToOctetsG1(&pp.h, compressed)...)
	for i := range pp.hlist {
		buf = append(buf, PointToOctetsG1(&pp.hlist[i], compressed)...)
	}
	return buf, nil
}

// Serialize writes the blob of pp to w.
func (pp *PubParam) Serialize(w io.Writer, compressed bool) error {
	buf, err := pp.Bytes(compressed)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write public parameter: %w", err)
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler with uncompressed points.
func (pp *PubParam) MarshalBinary() ([]byte, error) {
	return pp.Bytes(false)
}

// Deserialize reads a public parameter blob from r:
//
// bytes => `|ciphersuite id| depth | g2 | h | hlist |`
//
// It also reports whether the points were compressed. All points of the blob
// must share the same compression. Decoding is stricter than a curve point
// check: g2 must be the PixelG2 generator and no element may be the identity.
func Deserialize(r io.Reader) (*PubParam, bool, error) {
	pp, compressed, err := deserialize(r)
	if err != nil {
		logger.Debugf("deserialize public parameter: %v", err)
		return nil, false, err
	}
	return pp, compressed, nil
}

func deserialize(r io.Reader) (*PubParam, bool, error) {
	// header stores the id and the depth
	var header [headerLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, false, fmt.Errorf("read header: %w", err)
	}
	ciphersuite, depth := header[0], int(header[1])

	if depth != ConstD {
		return nil, false, fmt.Errorf("%w: got %d, expected %d", ErrDepthMismatch, depth, ConstD)
	}

	// check the ciphersuite id in the blob
	if !IsValidCiphersuite(ciphersuite) {
		return nil, false, fmt.Errorf("%w: %d", ErrInvalidCiphersuite, ciphersuite)
	}

	// read into g2; its flag fixes the compression of the whole blob
	g2, compressed, err := DeserializeG2(r)
	if err != nil {
		return nil, false, fmt.Errorf("read g2: %w", err)
	}

	// read into h
	h, c, err := DeserializeG1(r)
	if err != nil {
		return nil, false, fmt.Errorf("read h: %w", err)
	}
	if c != compressed {
		return nil, false, fmt.Errorf("%w: h", ErrInconsistentCompression)
	}

	// read into hlist
	hlist := make([]PixelG1, depth+1)
	for i := range hlist {
		hlist[i], c, err = DeserializeG1(r)
		if err != nil {
			return nil, false, fmt.Errorf("read h_%d: %w", i, err)
		}
		if c != compressed {
			return nil, false, fmt.Errorf("%w: h_%d", ErrInconsistentCompression, i)
		}
	}

	pp := &PubParam{
		depth:       depth,
		ciphersuite: ciphersuite,
		g2:          g2,
		h:           h,
		hlist:       hlist,
	}
	if err := pp.Validate(); err != nil {
		return nil, false, err
	}
	return pp, compressed, nil
}

// FromBytes decodes a public parameter blob that must be consumed entirely.
func FromBytes(b []byte) (*PubParam, bool, error) {
	r := bytes.NewReader(b)
	pp, compressed, err := Deserialize(r)
	if err != nil {
		return nil, false, err
	}
	if r.Len() != 0 {
		return nil, false, fmt.Errorf("INVALID: %d trailing bytes after public parameter", r.Len())
	}
	return pp, compressed, nil
}
