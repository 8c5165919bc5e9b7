package fullnode

import (
	"encoding/json"

	"github.com/pecanrolls/rolls-gateway/foundation/chain"
)

// Coin and CoinRecord are the chain types reported by the node.
type (
	Coin       = chain.Coin
	CoinRecord = chain.CoinRecord
)

// BlockchainState is the subset of the node's chain state the gateway
// reports on.
type BlockchainState struct {
	Peak *struct {
		HeaderHash chain.Bytes32 `json:"header_hash"`
		Height     uint32        `json:"height"`
	} `json:"peak"`
	Sync struct {
		SyncMode           bool   `json:"sync_mode"`
		Synced             bool   `json:"synced"`
		SyncTipHeight      uint32 `json:"sync_tip_height"`
		SyncProgressHeight uint32 `json:"sync_progress_height"`
	} `json:"sync"`
	Difficulty  uint64      `json:"difficulty"`
	Space       json.Number `json:"space"`
	MempoolSize int         `json:"mempool_size"`
}

// PushTxResponse is the node's answer to a submitted spend bundle.
type PushTxResponse struct {
	Status string `json:"status"`
}

// envelope carries the fields every node response shares.
type envelope struct {
	Success bool            `json:"success"`
	Error   json.RawMessage `json:"error"`
}

func (e envelope) message() string {
	var s string
	if err := json.Unmarshal(e.Error, &s); err == nil {
		return s
	}
	if len(e.Error) > 0 {
		return string(e.Error)
	}
	return "request failed"
}
