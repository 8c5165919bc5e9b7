// Package chain provides the primitive chain types shared by the full node
// client and the spend bundle codec, along with their JSON and binary forms.
package chain

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Bytes32Length is the size of hashes and identifiers on chain.
const Bytes32Length = 32

// Bytes32 is a fixed length chain identifier such as a puzzle hash or
// coin name.
type Bytes32 [Bytes32Length]byte

// Hex returns the lower case hex form without a 0x prefix.
func (b Bytes32) Hex() string {
	return strings.TrimPrefix(hexutil.Encode(b[:]), "0x")
}

// String returns the 0x prefixed hex form.
func (b Bytes32) String() string {
	return hexutil.Encode(b[:])
}

// MarshalJSON encodes the value as a 0x prefixed hex string, the form the
// full node expects.
func (b Bytes32) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (b *Bytes32) UnmarshalJSON(data []byte) error {
	var raw Bytes
	if err := raw.UnmarshalJSON(data); err != nil {
		return err
	}
	if len(raw) != Bytes32Length {
		return fmt.Errorf("expected %d bytes, got %d", Bytes32Length, len(raw))
	}
	copy(b[:], raw)
	return nil
}

// Bytes is a variable length byte string carried as hex in JSON.
type Bytes []byte

// MarshalJSON encodes the value as a 0x prefixed hex string.
func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(hexutil.Encode(b))
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("hex string expected: %w", err)
	}

	dec, err := DecodeHex(s)
	if err != nil {
		return err
	}
	*b = dec
	return nil
}

// DecodeHex decodes a hex string where the 0x prefix is optional.
func DecodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	b, err := hexutil.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return b, nil
}

// Coin is an unspent output like unit of value tied to a puzzle hash.
type Coin struct {
	ParentCoinInfo Bytes32 `json:"parent_coin_info"`
	PuzzleHash     Bytes32 `json:"puzzle_hash"`
	Amount         uint64  `json:"amount"`
}

// Bytes returns the canonical serialized form of the coin.
func (c Coin) Bytes() []byte {
	b := make([]byte, 0, 2*Bytes32Length+8)
	b = append(b, c.ParentCoinInfo[:]...)
	b = append(b, c.PuzzleHash[:]...)
	return binary.BigEndian.AppendUint64(b, c.Amount)
}

// CoinRecord wraps a coin with the chain metadata reported by the node.
type CoinRecord struct {
	Coin                Coin   `json:"coin"`
	ConfirmedBlockIndex uint32 `json:"confirmed_block_index"`
	SpentBlockIndex     uint32 `json:"spent_block_index"`
	Spent               bool   `json:"spent"`
	Coinbase            bool   `json:"coinbase"`
	Timestamp           uint64 `json:"timestamp"`
}
