package coin

import (
	"strconv"

	"github.com/holiman/uint256"
	"github.com/pecanrolls/rolls-gateway/foundation/chain"
)

// UTXO is an unspent coin as presented to clients. Amounts are decimal
// strings so no precision is lost crossing JSON.
type UTXO struct {
	ParentCoinInfo string `json:"parent_coin_info"`
	PuzzleHash     string `json:"puzzle_hash"`
	Amount         string `json:"amount"`
}

func toUTXO(c chain.Coin) UTXO {
	return UTXO{
		ParentCoinInfo: c.ParentCoinInfo.Hex(),
		PuzzleHash:     c.PuzzleHash.Hex(),
		Amount:         strconv.FormatUint(c.Amount, 10),
	}
}

// Balance is the spendable amount held by an address.
type Balance struct {
	Amount Amount `json:"amount"`
}

// Amount is an arbitrary precision non negative integer that encodes as a
// JSON integer literal, never a float.
type Amount struct {
	v uint256.Int
}

// NewAmount constructs an amount from the value.
func NewAmount(v *uint256.Int) Amount {
	var a Amount
	a.v.Set(v)
	return a
}

// Uint256 returns a copy of the amount.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

// String returns the decimal form of the amount.
func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalJSON implements the json.Marshaler interface.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.v.Dec()), nil
}

// UnmarshalJSON accepts the amount as a JSON integer or a decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if uq, err := strconv.Unquote(s); err == nil {
		s = uq
	}

	v, err := uint256.FromDecimal(s)
	if err != nil {
		return err
	}
	a.v.Set(v)
	return nil
}

// Submission is the outcome of pushing a spend bundle to the node.
type Submission struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// Token describes an asset the gateway can report on.
type Token struct {
	Chain      string `json:"chain"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	Symbol     string `json:"symbol"`
	Decimals   int    `json:"decimals"`
	LogoURL    string `json:"logo_url"`
	IsVerified bool   `json:"is_verified"`
	IsCore     bool   `json:"is_core"`
}

var defaultTokens = []Token{
	{
		Chain:      "rolls",
		ID:         "rolls",
		Name:       "ROLLS",
		Symbol:     "ROLLS",
		Decimals:   12,
		LogoURL:    "https://pecanrolls.net/images/rolls-spinning-512.gif",
		IsVerified: true,
		IsCore:     true,
	},
}
