package param

const (
	// ConstD is the depth of the time tree. It fixes the maximum time stamp
	// to 2^ConstD - 1 and the length of the h list to ConstD + 1.
	// The depth is written as a single byte, so it must stay below 256.
	ConstD = 32

	// SeedMinLength is the minimum number of seed bytes accepted by New.
	SeedMinLength = 32

	// DomSepParamGen is the HKDF salt used to extract the seed.
	DomSepParamGen = "Pixel public parameter generation"

	// H2GInfo is the HKDF info label for h; h_i appends the single octet i.
	H2GInfo = "H2G_h"

	// HKDFOutputLen is the number of bytes expanded per group element.
	HKDFOutputLen = 32

	// headerLen covers the ciphersuite id byte and the depth byte.
	headerLen = 2
)

// Blob lengths for ConstD. They are pinned by the known answer test.
const (
	// PPLenCompressed is the length of a compressed public parameter blob.
	PPLenCompressed = 3314
	// PPLenUncompressed is the length of an uncompressed public parameter blob.
	PPLenUncompressed = 6626
)
