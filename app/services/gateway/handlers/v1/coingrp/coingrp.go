// Package coingrp maintains the group of handlers for coin access.
package coingrp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/pecanrolls/rolls-gateway/business/core/coin"
	"github.com/pecanrolls/rolls-gateway/business/sys/validate"
	"github.com/pecanrolls/rolls-gateway/business/web/errs"
	"github.com/pecanrolls/rolls-gateway/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of coin endpoints.
type Handlers struct {
	Log  *zap.SugaredLogger
	Coin *coin.Core
}

// QueryUTXOs returns the unspent coins for the address.
func (h Handlers) QueryUTXOs(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	q := addressQuery{
		Address: web.Query(r, "address"),
	}
	if err := validate.Check(q); err != nil {
		return err
	}

	utxos, err := h.Coin.QueryUTXOs(ctx, q.Address)
	if err != nil {
		return h.toWebError(ctx, err)
	}

	return web.Respond(ctx, w, utxos, http.StatusOK)
}

// QueryBalance returns the spendable balance for the address.
func (h Handlers) QueryBalance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	q := addressQuery{
		Address: web.Query(r, "address"),
	}
	if err := validate.Check(q); err != nil {
		return err
	}

	bal, err := h.Coin.QueryBalance(ctx, q.Address)
	if err != nil {
		return h.toWebError(ctx, err)
	}

	return web.Respond(ctx, w, bal, http.StatusOK)
}

// SendTransaction pushes a spend bundle to the full node.
func (h Handlers) SendTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req sendTxRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	h.Log.Infow("sendtx", "traceid", web.GetTraceID(ctx), "size", len(req.SpendBundle))

	sub, err := h.Coin.SubmitTransaction(ctx, req.SpendBundle)
	if err != nil {
		return h.toWebError(ctx, err)
	}

	return web.Respond(ctx, w, sub, http.StatusOK)
}

// RPC passes a call through to the full node and relays its answer.
func (h Handlers) RPC(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var req rpcRequest
	if err := web.Decode(r, &req); err != nil {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	if err := validate.Check(req); err != nil {
		return err
	}

	params := bytes.TrimSpace(req.Params)
	if len(params) > 0 && params[0] != '{' && !bytes.Equal(params, []byte("null")) {
		return errs.New("params must be an object", http.StatusBadRequest)
	}

	resp, err := h.Coin.RPC(ctx, req.Method, params)
	if err != nil {
		return h.toWebError(ctx, err)
	}

	return web.RespondRaw(ctx, w, resp, http.StatusOK)
}

// Tokens returns the token catalog.
func (h Handlers) Tokens(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.Coin.Tokens(), http.StatusOK)
}

// toWebError maps core errors onto the status they are reported with.
func (h Handlers) toWebError(ctx context.Context, err error) error {
	var pe *coin.ParseError
	var ve *coin.ValidationError
	var ue *coin.UpstreamError

	switch {
	case errors.Is(err, coin.ErrInvalidAddress):
		return errs.NewTrusted(err, http.StatusBadRequest)

	case errors.As(err, &pe):
		return errs.NewTrusted(pe, http.StatusBadRequest)

	case errors.As(err, &ve):
		return errs.NewTrusted(ve, http.StatusBadRequest)

	case errors.Is(err, coin.ErrMethodNotAllowed):
		return errs.NewTrusted(err, http.StatusForbidden)

	case errors.As(err, &ue):
		h.Log.Errorw("upstream", "traceid", web.GetTraceID(ctx), "op", ue.Op, "ERROR", ue.Err)
		return errs.New("full node unavailable", http.StatusBadGateway)
	}

	return err
}
