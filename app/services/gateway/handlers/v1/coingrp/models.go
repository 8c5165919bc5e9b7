package coingrp

import "encoding/json"

type addressQuery struct {
	Address string `query:"address" validate:"required"`
}

type sendTxRequest struct {
	SpendBundle json.RawMessage `json:"spend_bundle" validate:"required"`
}

type rpcRequest struct {
	Method string          `json:"method" validate:"required,rpcmethod"`
	Params json.RawMessage `json:"params"`
}
