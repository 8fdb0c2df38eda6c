package param

import "errors"

// Errors returned by derivation and decoding. Callers match them with errors.Is;
// I/O failures are wrapped around the underlying reader or writer error instead.
var (
	ErrSeedTooShort            = errors.New("INVALID: the seed length is too short")
	ErrInvalidCiphersuite      = errors.New("INVALID: invalid ciphersuite ID")
	ErrInternalKDF             = errors.New("internal: error getting output from HKDF")
	ErrHashToCurve             = errors.New("internal: hash_to_curve failed")
	ErrMalformedPoint          = errors.New("INVALID: malformed group element")
	ErrInconsistentCompression = errors.New("INVALID: points mix compressed and uncompressed encodings")
	ErrDepthMismatch           = errors.New("INVALID: the depth doesn't match")
)
