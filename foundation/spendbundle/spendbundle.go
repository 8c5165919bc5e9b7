// Package spendbundle parses spend bundles submitted by wallets and computes
// their canonical identifier. The bundle itself is opaque to the gateway and
// is forwarded to the full node in the form it was received.
package spendbundle

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pecanrolls/rolls-gateway/foundation/chain"
)

// SignatureLength is the size of a serialized BLS G2 element.
const SignatureLength = 96

// CoinSpend is a coin along with the puzzle and solution that spends it.
type CoinSpend struct {
	Coin         chain.Coin  `json:"coin"`
	PuzzleReveal chain.Bytes `json:"puzzle_reveal"`
	Solution     chain.Bytes `json:"solution"`
}

// SpendBundle is a set of coin spends with their aggregated signature.
type SpendBundle struct {
	CoinSpends          []CoinSpend `json:"coin_spends"`
	AggregatedSignature chain.Bytes `json:"aggregated_signature"`
}

// document is the JSON shape of a bundle. Older wallets name the spends
// coin_solutions, newer ones coin_spends.
type document struct {
	CoinSpends          *[]CoinSpend `json:"coin_spends"`
	CoinSolutions       *[]CoinSpend `json:"coin_solutions"`
	AggregatedSignature *chain.Bytes `json:"aggregated_signature"`
}

// Parse decodes and validates the JSON form of a spend bundle.
func Parse(data []byte) (SpendBundle, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return SpendBundle{}, fmt.Errorf("decoding spend bundle: %w", err)
	}

	var sb SpendBundle
	switch {
	case doc.CoinSpends != nil && doc.CoinSolutions != nil:
		return SpendBundle{}, errors.New("spend bundle has both coin_spends and coin_solutions")
	case doc.CoinSpends != nil:
		sb.CoinSpends = *doc.CoinSpends
	case doc.CoinSolutions != nil:
		sb.CoinSpends = *doc.CoinSolutions
	default:
		return SpendBundle{}, errors.New("spend bundle missing coin_spends")
	}

	if doc.AggregatedSignature == nil {
		return SpendBundle{}, errors.New("spend bundle missing aggregated_signature")
	}
	if len(*doc.AggregatedSignature) != SignatureLength {
		return SpendBundle{}, fmt.Errorf("aggregated_signature must be %d bytes, got %d", SignatureLength, len(*doc.AggregatedSignature))
	}
	sb.AggregatedSignature = *doc.AggregatedSignature

	for i, cs := range sb.CoinSpends {
		if len(cs.PuzzleReveal) == 0 {
			return SpendBundle{}, fmt.Errorf("coin spend %d: empty puzzle_reveal", i)
		}
		if len(cs.Solution) == 0 {
			return SpendBundle{}, fmt.Errorf("coin spend %d: empty solution", i)
		}
	}

	return sb, nil
}

// Bytes returns the canonical streamed form of the bundle: a big endian
// uint32 count of spends, each spend as coin, puzzle and solution, followed
// by the signature. Programs are self delimiting and carry no length prefix.
func (sb SpendBundle) Bytes() []byte {
	var b []byte
	b = binary.BigEndian.AppendUint32(b, uint32(len(sb.CoinSpends)))
	for _, cs := range sb.CoinSpends {
		b = append(b, cs.Coin.Bytes()...)
		b = append(b, cs.PuzzleReveal...)
		b = append(b, cs.Solution...)
	}
	return append(b, sb.AggregatedSignature...)
}

// Name returns the canonical identifier of the bundle, the sha256 of its
// streamed form.
func (sb SpendBundle) Name() chain.Bytes32 {
	return chain.Bytes32(sha256.Sum256(sb.Bytes()))
}

// String implements the fmt.Stringer interface for logging.
func (sb SpendBundle) String() string {
	return fmt.Sprintf("SpendBundle{name: %s, spends: %d}", sb.Name(), len(sb.CoinSpends))
}
