// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/pecanrolls/rolls-gateway/app/services/gateway/handlers/v1/coingrp"
	"github.com/pecanrolls/rolls-gateway/business/core/coin"
	"github.com/pecanrolls/rolls-gateway/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log  *zap.SugaredLogger
	Coin *coin.Core
}

// Routes binds all the version 1 routes.
func Routes(app *web.App, cfg Config) {
	cgh := coingrp.Handlers{
		Log:  cfg.Log,
		Coin: cfg.Coin,
	}

	app.Handle(http.MethodGet, version, "/utxos", cgh.QueryUTXOs)
	app.Handle(http.MethodGet, version, "/balance", cgh.QueryBalance)
	app.Handle(http.MethodPost, version, "/sendtx", cgh.SendTransaction)
	app.Handle(http.MethodPost, version, "/rolls_rpc", cgh.RPC)
	app.Handle(http.MethodGet, version, "/tokens", cgh.Tokens)
}
