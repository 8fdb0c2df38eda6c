package param_test

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	param "github.com/Iscaraca/pixelparam"
)

var update = flag.Bool("update", false, "rewrite the known answer test file in testdata")

const (
	// BLS12-381 G1 generator, zcash encoding
	g1GenCompressedHex   = "97f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb"
	g1GenUncompressedHex = "17f1d3a73197d7942695638c4fa9ac0fc3688c4f9774b905a14e3a3f171bac586c55e83ff97a1aeffb3af00adb22c6bb" +
		"08b3f481e3aaa0f1a09e30ed741d8ae4fcf5e095d5d00af600db18cb2c04b3edd03cc744a2888ae40caa232946c5e7e1"

	katFile = "kat_go.txt"

	// SHA-256 of the uncompressed default parameter (6626 bytes)
	katSHA256Hex = "d48a10979e916f825124698e938c42c6c56798a448724011db735f03b7e0d7ac"
)

func TestParamSerialization(t *testing.T) {
	pp := param.Default()

	for _, tc := range []struct {
		name       string
		compressed bool
		length     int
	}{
		{"compressed", true, param.PPLenCompressed},
		{"uncompressed", false, param.PPLenUncompressed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// serialize a public parameter into buffer
			var buf bytes.Buffer
			require.NoError(t, pp.Serialize(&buf, tc.compressed))
			assert.Equal(t, tc.length, buf.Len(), "length of blob is incorrect")
			assert.Equal(t, pp.Size(tc.compressed), buf.Len())

			// deserialize a buffer into public parameter
			recovered, compressed, err := param.Deserialize(&buf)
			require.NoError(t, err)
			assert.Equal(t, tc.compressed, compressed)
			assert.True(t, pp.Equal(recovered), "public parameters do not match")
			assert.Zero(t, buf.Len(), "Deserialize must consume exactly one blob")
		})
	}
}

func TestParamSerializationCiphersuiteOne(t *testing.T) {
	pp, err := param.New(bytes.Repeat([]byte{0xa5}, 48), 1)
	require.NoError(t, err)

	for _, compressed := range []bool{true, false} {
		blob, err := pp.Bytes(compressed)
		require.NoError(t, err)
		assert.Equal(t, byte(1), blob[0])

		recovered, c, err := param.FromBytes(blob)
		require.NoError(t, err)
		assert.Equal(t, compressed, c)
		assert.True(t, pp.Equal(recovered))
	}
}

func TestEqualityIndependentOfCompression(t *testing.T) {
	pp := param.Default()

	compressedBlob, err := pp.Bytes(true)
	require.NoError(t, err)
	uncompressedBlob, err := pp.Bytes(false)
	require.NoError(t, err)

	a, _, err := param.FromBytes(compressedBlob)
	require.NoError(t, err)
	b, _, err := param.FromBytes(uncompressedBlob)
	require.NoError(t, err)
	assert.True(t, a.Equal(b))
}

func TestMarshalBinary(t *testing.T) {
	pp := param.Default()
	got, err := pp.MarshalBinary()
	require.NoError(t, err)
	want, err := pp.Bytes(false)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestKnownHeader(t *testing.T) {
	pp := param.Default()

	blob, err := pp.Bytes(false)
	require.NoError(t, err)
	assert.Equal(t, "0020"+g1GenUncompressedHex, hex.EncodeToString(blob[:2+bls12381.SizeOfG1AffineUncompressed]))

	blob, err = pp.Bytes(true)
	require.NoError(t, err)
	assert.Equal(t, "0020"+g1GenCompressedHex, hex.EncodeToString(blob[:2+bls12381.SizeOfG1AffineCompressed]))
}

// TestKnownAnswer pins the uncompressed default parameter by its SHA-256
// and compares it with testdata/kat_go.txt when the fixture is present.
// Run with -update to rewrite the fixture after a deliberate format change.
func TestKnownAnswer(t *testing.T) {
	blob, err := param.Default().Bytes(false)
	require.NoError(t, err)
	require.Len(t, blob, param.PPLenUncompressed)

	digest := sha256.Sum256(blob)
	require.Equal(t, katSHA256Hex, hex.EncodeToString(digest[:]), "known answer test mismatch")

	path := filepath.Join("testdata", katFile)
	if *update {
		require.NoError(t, os.MkdirAll("testdata", 0o755))
		require.NoError(t, os.WriteFile(path, blob, 0o644))
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		t.Logf("%s not found, run go test -update to create it", path)
		return
	}
	require.NoError(t, err)
	assert.Equal(t, want, blob, "known answer test mismatch")
}

func TestDeserializeDepthMismatch(t *testing.T) {
	blob, err := param.Default().Bytes(true)
	require.NoError(t, err)

	for _, d := range []byte{0, 31, 33, 0xff} {
		tampered := bytes.Clone(blob)
		tampered[1] = d
		_, _, err := param.FromBytes(tampered)
		assert.ErrorIs(t, err, param.ErrDepthMismatch, "depth %d", d)
	}
}

func TestDeserializeInvalidCiphersuite(t *testing.T) {
	blob, err := param.Default().Bytes(false)
	require.NoError(t, err)

	for _, cs := range []byte{2, 3, 0x80, 0xff} {
		tampered := bytes.Clone(blob)
		tampered[0] = cs
		_, _, err := param.FromBytes(tampered)
		assert.ErrorIs(t, err, param.ErrInvalidCiphersuite, "ciphersuite %d", cs)
	}
}

// mixedBlob encodes pp with every point compressed except the one at index
// flip, counted over (g2, h, h_0, ..., h_d).
func mixedBlob(pp *param.PubParam, flip int) []byte {
	g2, h, hlist := pp.G2(), pp.H(), pp.HList()

	blob := []byte{pp.Ciphersuite(), byte(pp.Depth())}
	blob = append(blob, param.PointToOctetsG2(&g2, flip != 0)...)
	blob = append(blob, param.PointToOctetsG1(&h, flip != 1)...)
	for i := range hlist {
		blob = append(blob, param.PointToOctetsG1(&hlist[i], flip != i+2)...)
	}
	return blob
}

func TestDeserializeInconsistentCompression(t *testing.T) {
	pp := param.Default()

	// sanity check: no flipped point gives a valid compressed blob
	recovered, compressed, err := param.FromBytes(mixedBlob(pp, -1))
	require.NoError(t, err)
	require.True(t, compressed)
	require.True(t, pp.Equal(recovered))

	for _, flip := range []int{0, 1, 2, 10, param.ConstD + 2} {
		_, _, err := param.FromBytes(mixedBlob(pp, flip))
		assert.ErrorIs(t, err, param.ErrInconsistentCompression, "flipped point %d", flip)
	}
}

func TestDeserializeTruncated(t *testing.T) {
	blob, err := param.Default().Bytes(false)
	require.NoError(t, err)

	for _, n := range []int{0, 1, 2, 50, 98, 99, 2 + 96 + 191, len(blob) - 1} {
		_, _, err := param.FromBytes(blob[:n])
		assert.Error(t, err, "blob truncated to %d bytes", n)
	}
}

func TestFromBytesTrailing(t *testing.T) {
	blob, err := param.Default().Bytes(true)
	require.NoError(t, err)

	_, _, err = param.FromBytes(append(blob, 0))
	assert.Error(t, err)

	// Deserialize itself leaves the rest of the stream alone
	r := bytes.NewReader(append(blob, 0xde, 0xad))
	_, _, err = param.Deserialize(r)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestDeserializeMalformedPoint(t *testing.T) {
	compressedBlob, err := param.Default().Bytes(true)
	require.NoError(t, err)
	uncompressedBlob, err := param.Default().Bytes(false)
	require.NoError(t, err)

	hOffsetCompressed := 2 + bls12381.SizeOfG1AffineCompressed
	hOffsetUncompressed := 2 + bls12381.SizeOfG1AffineUncompressed

	for _, tc := range []struct {
		name   string
		blob   []byte
		offset int
		mutate func(b byte) byte
	}{
		// 0b111 and 0b001 are invalid flag combinations
		{"compressed g2 bad mask", compressedBlob, 2, func(b byte) byte { return b | 0xe0 }},
		{"uncompressed g2 bad mask", uncompressedBlob, 2, func(b byte) byte { return b&0x1f | 0x20 }},
		{"compressed h bad x", compressedBlob, hOffsetCompressed + 40, func(b byte) byte { return b ^ 0x01 }},
		{"uncompressed h bad y", uncompressedBlob, hOffsetUncompressed + 150, func(b byte) byte { return b ^ 0x01 }},
		{"uncompressed g2 bad y", uncompressedBlob, 2 + 60, func(b byte) byte { return b ^ 0x04 }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tampered := bytes.Clone(tc.blob)
			tampered[tc.offset] = tc.mutate(tampered[tc.offset])

			_, _, err := param.FromBytes(tampered)
			assert.ErrorIs(t, err, param.ErrMalformedPoint)
		})
	}
}

func TestDeserializeRejectsWrongGenerator(t *testing.T) {
	pp := param.Default()
	blob, err := pp.Bytes(true)
	require.NoError(t, err)

	_, _, gen, _ := bls12381.Generators()
	var twice bls12381.G1Affine
	twice.ScalarMultiplication(&gen, big.NewInt(2))
	copy(blob[2:], param.PointToOctetsG2(&twice, true))

	_, _, err = param.FromBytes(blob)
	assert.ErrorIs(t, err, param.ErrMalformedPoint)
}

func TestDeserializeRejectsIdentity(t *testing.T) {
	blob, err := param.Default().Bytes(true)
	require.NoError(t, err)

	// compressed infinity: flags 0b110 followed by zeroes
	var identity bls12381.G2Affine
	h := param.PointToOctetsG1(&identity, true)
	require.Equal(t, byte(0xc0), h[0])
	copy(blob[2+bls12381.SizeOfG1AffineCompressed:], h)

	_, _, err = param.FromBytes(blob)
	assert.ErrorIs(t, err, param.ErrMalformedPoint)
}

func TestPointRoundTrip(t *testing.T) {
	pp := param.Default()
	g2, h := pp.G2(), pp.H()

	for _, compressed := range []bool{true, false} {
		var buf bytes.Buffer
		require.NoError(t, param.SerializeG2(&buf, &g2, compressed))
		require.NoError(t, param.SerializeG1(&buf, &h, compressed))

		gotG2, c, err := param.DeserializeG2(&buf)
		require.NoError(t, err)
		assert.Equal(t, compressed, c)
		assert.True(t, gotG2.Equal(&g2))

		gotH, c, err := param.DeserializeG1(&buf)
		require.NoError(t, err)
		assert.Equal(t, compressed, c)
		assert.True(t, gotH.Equal(&h))
		assert.Zero(t, buf.Len())
	}

	// each point carries its own flag
	var buf bytes.Buffer
	require.NoError(t, param.SerializeG1(&buf, &h, true))
	require.NoError(t, param.SerializeG1(&buf, &h, false))
	_, c1, err := param.DeserializeG1(&buf)
	require.NoError(t, err)
	_, c2, err := param.DeserializeG1(&buf)
	require.NoError(t, err)
	assert.True(t, c1)
	assert.False(t, c2)
}

func TestConcurrentDecode(t *testing.T) {
	pp := param.Default()
	blob, err := pp.Bytes(true)
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			recovered, _, err := param.FromBytes(blob)
			if err != nil {
				return err
			}
			if !pp.Equal(recovered) {
				return errors.New("decoded parameter differs")
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}
