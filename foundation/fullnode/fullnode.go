// Package fullnode provides a client for the full node RPC server. The node
// speaks JSON over mutually authenticated HTTPS where every RPC is a POST to
// /<method> and every response carries a success flag.
package fullnode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// DefaultRequestTimeout bounds every call when no timeout is configured.
const DefaultRequestTimeout = 10 * time.Second

// maxResponseSize bounds the size of a node response body.
const maxResponseSize = 64 << 20

// ErrClosed is returned for calls made after Close.
var ErrClosed = errors.New("full node client closed")

// Config holds the settings required to reach the node.
type Config struct {
	Host           string
	Port           int
	CACertPath     string
	CertPath       string
	KeyPath        string
	RequestTimeout time.Duration
}

// Observer receives the outcome of every RPC call.
type Observer func(method string, took time.Duration, err error)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client, skipping certificate loading.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithObserver registers a function called after every RPC call.
func WithObserver(obs Observer) Option {
	return func(c *Client) {
		c.observe = obs
	}
}

// Client is a long lived handle to the full node. It is safe for concurrent
// use and shares one pooled transport across calls.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	observe Observer

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// New constructs a client for the node described by the config.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Host == "" || cfg.Port == 0 {
		return nil, &ConnectionError{Op: "create", Err: errors.New("host and port required")}
	}

	c := Client{
		baseURL: "https://" + net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)) + "/",
		timeout: cfg.RequestTimeout,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultRequestTimeout
	}

	for _, opt := range opts {
		opt(&c)
	}

	if c.http == nil {
		tlsConfig, err := loadTLS(cfg.CACertPath, cfg.CertPath, cfg.KeyPath)
		if err != nil {
			return nil, &ConnectionError{Op: "create", Err: err}
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = tlsConfig
		transport.MaxIdleConnsPerHost = 32

		c.http = &http.Client{Transport: transport}
	}

	return &c, nil
}

// URL returns the base URL of the node RPC server.
func (c *Client) URL() string {
	return c.baseURL
}

// Close stops the client from accepting new calls and waits for calls in
// flight to complete before releasing idle connections.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.inflight.Wait()
	c.http.CloseIdleConnections()
}

// BlockchainState returns the node's view of the chain. It is used as a
// health probe.
func (c *Client) BlockchainState(ctx context.Context) (BlockchainState, error) {
	var resp struct {
		BlockchainState BlockchainState `json:"blockchain_state"`
	}
	if err := c.call(ctx, "get_blockchain_state", struct{}{}, &resp); err != nil {
		return BlockchainState{}, err
	}

	return resp.BlockchainState, nil
}

// CoinRecordsByPuzzleHash returns the coin records locked to the puzzle hash.
func (c *Client) CoinRecordsByPuzzleHash(ctx context.Context, puzzleHash [32]byte, includeSpent bool) ([]CoinRecord, error) {
	req := struct {
		PuzzleHash        string `json:"puzzle_hash"`
		IncludeSpentCoins bool   `json:"include_spent_coins"`
	}{
		PuzzleHash:        fmt.Sprintf("0x%x", puzzleHash[:]),
		IncludeSpentCoins: includeSpent,
	}

	var resp struct {
		CoinRecords []CoinRecord `json:"coin_records"`
	}
	if err := c.call(ctx, "get_coin_records_by_puzzle_hash", req, &resp); err != nil {
		return nil, err
	}

	return resp.CoinRecords, nil
}

// PushTx submits the spend bundle to the node's mempool. The bundle is sent
// exactly as provided.
func (c *Client) PushTx(ctx context.Context, spendBundle json.RawMessage) (PushTxResponse, error) {
	req := struct {
		SpendBundle json.RawMessage `json:"spend_bundle"`
	}{
		SpendBundle: spendBundle,
	}

	var resp PushTxResponse
	if err := c.call(ctx, "push_tx", req, &resp); err != nil {
		return PushTxResponse{}, err
	}

	return resp, nil
}

// Post sends params to the named RPC and returns the node's JSON response
// untouched, whatever its success flag says.
func (c *Client) Post(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, error) {
	if len(params) == 0 || string(params) == "null" {
		params = json.RawMessage("{}")
	}

	var body json.RawMessage
	err := c.do(ctx, method, params, func(data []byte) error {
		if !json.Valid(data) {
			return errors.New("response is not JSON")
		}
		body = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	return body, nil
}

// call performs the RPC and decodes a successful response into resp.
func (c *Client) call(ctx context.Context, method string, req any, resp any) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding %s request: %w", method, err)
	}

	return c.do(ctx, method, data, func(data []byte) error {
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		if !env.Success {
			return &ResponseError{Method: method, Message: env.message()}
		}

		if err := json.Unmarshal(data, resp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})
}

// do posts the body to the method path and hands the response to decode.
func (c *Client) do(ctx context.Context, method string, body []byte, decode func([]byte) error) (err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.inflight.Add(1)
	c.mu.Unlock()
	defer c.inflight.Done()

	start := time.Now()
	defer func() {
		if c.observe != nil {
			c.observe(method, time.Since(start), err)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+method, bytes.NewReader(body))
	if err != nil {
		return &ConnectionError{Op: method, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectionError{Op: method, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return &ConnectionError{Op: method, Err: fmt.Errorf("reading response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ConnectionError{Op: method, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status: %s", resp.Status)}
	}

	if err := decode(data); err != nil {
		var re *ResponseError
		if errors.As(err, &re) {
			return err
		}
		return &ConnectionError{Op: method, Err: err}
	}

	return nil
}
