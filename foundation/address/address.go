// Package address converts between human readable bech32m chain addresses
// and the raw 32 byte puzzle hashes the full node works with.
package address

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

// HashLength is the number of bytes in a puzzle hash.
const HashLength = 32

// DefaultPrefix is the human readable part used by mainnet addresses.
const DefaultPrefix = "rol"

// ErrInvalidAddress is returned for any address that can't be decoded into
// a puzzle hash: bad checksum, wrong encoding variant, wrong length or
// wrong prefix.
var ErrInvalidAddress = errors.New("invalid address")

// PuzzleHash is the on chain identity behind an address.
type PuzzleHash [HashLength]byte

// Codec decodes and encodes addresses for a single network prefix.
type Codec struct {
	Prefix string
}

// New constructs a codec for the specified prefix. An empty prefix accepts
// addresses for any network on decode.
func New(prefix string) Codec {
	return Codec{Prefix: prefix}
}

// Decode converts the address into its puzzle hash.
func (c Codec) Decode(addr string) (PuzzleHash, error) {
	hrp, hash, err := Decode(addr)
	if err != nil {
		return PuzzleHash{}, err
	}

	if c.Prefix != "" && hrp != c.Prefix {
		return PuzzleHash{}, fmt.Errorf("%w: prefix %q, expected %q", ErrInvalidAddress, hrp, c.Prefix)
	}

	return hash, nil
}

// Encode converts the puzzle hash into an address using the codec prefix.
func (c Codec) Encode(hash PuzzleHash) (string, error) {
	return Encode(c.Prefix, hash)
}

// Decode converts a bech32m address into its prefix and puzzle hash.
func Decode(addr string) (string, PuzzleHash, error) {
	hrp, data, version, err := bech32.DecodeGeneric(addr)
	if err != nil {
		return "", PuzzleHash{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if version != bech32.VersionM {
		return "", PuzzleHash{}, fmt.Errorf("%w: not bech32m encoded", ErrInvalidAddress)
	}

	decoded, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", PuzzleHash{}, fmt.Errorf("%w: %s", ErrInvalidAddress, err)
	}

	if len(decoded) != HashLength {
		return "", PuzzleHash{}, fmt.Errorf("%w: decoded length %d", ErrInvalidAddress, len(decoded))
	}

	var hash PuzzleHash
	copy(hash[:], decoded)

	return hrp, hash, nil
}

// Encode converts the puzzle hash into a bech32m address with the prefix.
func Encode(prefix string, hash PuzzleHash) (string, error) {
	if prefix == "" {
		return "", errors.New("address prefix required")
	}

	conv, err := bech32.ConvertBits(hash[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("converting bits: %w", err)
	}

	addr, err := bech32.EncodeM(prefix, conv)
	if err != nil {
		return "", fmt.Errorf("encoding address: %w", err)
	}

	return addr, nil
}

// Hex returns the lower case hex form of the hash without a 0x prefix.
func (h PuzzleHash) Hex() string {
	return fmt.Sprintf("%x", h[:])
}

// String implements the fmt.Stringer interface.
func (h PuzzleHash) String() string {
	return "0x" + h.Hex()
}
