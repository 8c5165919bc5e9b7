// Package coin provides the core business API for coin queries, transaction
// submission and RPC pass-through against the full node.
package coin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/holiman/uint256"
	"github.com/pecanrolls/rolls-gateway/business/sys/cache"
	"github.com/pecanrolls/rolls-gateway/foundation/address"
	"github.com/pecanrolls/rolls-gateway/foundation/chain"
	"github.com/pecanrolls/rolls-gateway/foundation/fullnode"
	"github.com/pecanrolls/rolls-gateway/foundation/spendbundle"
	"go.uber.org/zap"
)

// AllowAllMethods in the allowed method list lets every RPC through.
const AllowAllMethods = "*"

// DefaultRPCMethods are the read only node RPCs the pass-through accepts
// when nothing else is configured.
var DefaultRPCMethods = []string{
	"get_additions_and_removals",
	"get_all_mempool_items",
	"get_all_mempool_tx_ids",
	"get_block",
	"get_block_record",
	"get_block_record_by_height",
	"get_block_records",
	"get_blockchain_state",
	"get_blocks",
	"get_coin_record_by_name",
	"get_coin_records_by_parent_ids",
	"get_coin_records_by_puzzle_hash",
	"get_coin_records_by_puzzle_hashes",
	"get_mempool_item_by_tx_id",
	"get_network_info",
	"get_network_space",
	"get_puzzle_and_solution",
	"get_unfinished_block_headers",
}

// Node is the set of full node calls the core depends on.
type Node interface {
	CoinRecordsByPuzzleHash(ctx context.Context, puzzleHash [32]byte, includeSpent bool) ([]chain.CoinRecord, error)
	PushTx(ctx context.Context, spendBundle json.RawMessage) (fullnode.PushTxResponse, error)
	Post(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error)
}

// Config holds the dependencies and settings for the core.
type Config struct {
	Log            *zap.SugaredLogger
	Node           Node
	Codec          address.Codec
	CacheTTL       time.Duration
	AllowedMethods []string
}

// Core manages the set of API's for coin access.
type Core struct {
	log      *zap.SugaredLogger
	node     Node
	codec    address.Codec
	utxos    *cache.Cache[[]UTXO]
	balances *cache.Cache[Balance]
	allowAll bool
	allowed  map[string]struct{}
}

// NewCore constructs a core for coin api access.
func NewCore(cfg Config) *Core {
	methods := cfg.AllowedMethods
	if methods == nil {
		methods = DefaultRPCMethods
	}

	c := Core{
		log:      cfg.Log,
		node:     cfg.Node,
		codec:    cfg.Codec,
		utxos:    cache.New[[]UTXO]("utxos", cfg.CacheTTL),
		balances: cache.New[Balance]("balance", cfg.CacheTTL),
		allowed:  make(map[string]struct{}, len(methods)),
	}

	for _, method := range methods {
		if method == AllowAllMethods {
			c.allowAll = true
			continue
		}
		c.allowed[method] = struct{}{}
	}

	return &c
}

// Start runs the background cleanup of expired cache entries.
func (c *Core) Start() {
	go c.utxos.Start()
	go c.balances.Start()
}

// Stop ends the background cleanup started by Start.
func (c *Core) Stop() {
	c.utxos.Stop()
	c.balances.Stop()
}

// QueryUTXOs returns the unspent coins locked to the address.
func (c *Core) QueryUTXOs(ctx context.Context, addr string) ([]UTXO, error) {
	ph, err := c.decode(addr)
	if err != nil {
		return nil, err
	}

	return c.utxos.Get(ctx, "utxos:"+addr, func(ctx context.Context) ([]UTXO, error) {
		records, err := c.unspent(ctx, ph)
		if err != nil {
			return nil, err
		}

		utxos := make([]UTXO, len(records))
		for i, rec := range records {
			utxos[i] = toUTXO(rec.Coin)
		}

		return utxos, nil
	})
}

// QueryBalance returns the sum of the unspent coins locked to the address.
func (c *Core) QueryBalance(ctx context.Context, addr string) (Balance, error) {
	ph, err := c.decode(addr)
	if err != nil {
		return Balance{}, err
	}

	return c.balances.Get(ctx, "balance:"+addr, func(ctx context.Context) (Balance, error) {
		records, err := c.unspent(ctx, ph)
		if err != nil {
			return Balance{}, err
		}

		var total uint256.Int
		for _, rec := range records {
			if _, overflow := total.AddOverflow(&total, uint256.NewInt(rec.Coin.Amount)); overflow {
				return Balance{}, fmt.Errorf("balance overflow for %s", ph)
			}
		}

		return Balance{Amount: NewAmount(&total)}, nil
	})
}

// SubmitTransaction validates the shape of the spend bundle and pushes it to
// the node as it was received.
func (c *Core) SubmitTransaction(ctx context.Context, raw json.RawMessage) (Submission, error) {
	sb, err := spendbundle.Parse(raw)
	if err != nil {
		return Submission{}, &ParseError{Err: err}
	}

	resp, err := c.node.PushTx(ctx, raw)
	if err != nil {
		var re *fullnode.ResponseError
		if errors.As(err, &re) {
			c.log.Warnw("sendtx", "spend_bundle", string(raw), "name", sb.Name().Hex(), "ERROR", re.Message)
			return Submission{}, &ValidationError{Message: re.Message}
		}
		return Submission{}, &UpstreamError{Op: "push_tx", Err: err}
	}

	sub := Submission{
		Status: resp.Status,
		ID:     sb.Name().Hex(),
	}

	return sub, nil
}

// RPC forwards the call to the node and returns its answer untouched.
func (c *Core) RPC(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if !c.Allowed(method) {
		return nil, ErrMethodNotAllowed
	}

	resp, err := c.node.Post(ctx, method, params)
	if err != nil {
		return nil, &UpstreamError{Op: method, Err: err}
	}

	return resp, nil
}

// Allowed reports whether the pass-through accepts the method.
func (c *Core) Allowed(method string) bool {
	if c.allowAll {
		return true
	}
	_, exists := c.allowed[method]
	return exists
}

// Tokens returns the catalog of tokens the gateway serves.
func (c *Core) Tokens() []Token {
	tokens := make([]Token, len(defaultTokens))
	copy(tokens, defaultTokens)
	return tokens
}

// =============================================================================

// decode converts the address, hiding the codec's reason from the caller.
func (c *Core) decode(addr string) (address.PuzzleHash, error) {
	ph, err := c.codec.Decode(addr)
	if err != nil {
		c.log.Debugw("decode address", "address", addr, "ERROR", err)
		return address.PuzzleHash{}, ErrInvalidAddress
	}

	return ph, nil
}

// unspent returns the coin records for the puzzle hash that are not spent.
func (c *Core) unspent(ctx context.Context, ph address.PuzzleHash) ([]chain.CoinRecord, error) {
	records, err := c.node.CoinRecordsByPuzzleHash(ctx, ph, true)
	if err != nil {
		return nil, &UpstreamError{Op: "get_coin_records_by_puzzle_hash", Err: err}
	}

	unspent := make([]chain.CoinRecord, 0, len(records))
	for _, rec := range records {
		if rec.Spent {
			continue
		}
		unspent = append(unspent, rec)
	}

	return unspent, nil
}
