package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/lib/logger/sl"
)

// RPCClient talks JSON-RPC to the chain. Every call walks the configured
// endpoints in order, so a transient failure on the primary falls back to the
// next one instead of surfacing.
type RPCClient struct {
	endpoints []string
	client    *http.Client
	log       *slog.Logger
	requestID int64
}

func NewRPCClient(endpoints []string, log *slog.Logger) *RPCClient {
	return &RPCClient{
		endpoints: endpoints,
		client:    &http.Client{Timeout: 10 * time.Second},
		log:       log,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	const op = "chain.rpc.call"

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      atomic.AddInt64(&c.requestID, 1),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var lastErr error

	for _, endpoint := range c.endpoints {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			c.log.Warn("rpc endpoint failed, trying next",
				sl.String("endpoint", endpoint), sl.Err(err))

			lastErr = err

			continue
		}

		var rpcResp rpcResponse

		err = json.NewDecoder(resp.Body).Decode(&rpcResp)
		resp.Body.Close()

		if err != nil {
			c.log.Warn("rpc response decode failed, trying next",
				sl.String("endpoint", endpoint), sl.Err(err))

			lastErr = err

			continue
		}

		if rpcResp.Error != nil {
			return fmt.Errorf("%s: rpc error %d: %s", op, rpcResp.Error.Code, rpcResp.Error.Message)
		}

		if result != nil {
			if err = json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		return nil
	}

	return fmt.Errorf("%s: %w: %v", op, ErrAllEndpointsDown, lastErr)
}

// PublicSeed fetches the latest blockhash and slot. It implements SeedSource
// and never substitutes a weaker source on failure.
func (c *RPCClient) PublicSeed(ctx context.Context) (PublicSeed, error) {
	const op = "chain.rpc.PublicSeed"

	var result struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}

	err := c.call(ctx, "getLatestBlockhash", []interface{}{
		map[string]string{"commitment": "confirmed"},
	}, &result)
	if err != nil {
		return PublicSeed{}, fmt.Errorf("%s: %w: %v", op, ErrSeedUnavailable, err)
	}

	if result.Value.Blockhash == "" {
		return PublicSeed{}, fmt.Errorf("%s: %w: empty blockhash", op, ErrSeedUnavailable)
	}

	return PublicSeed{
		Blockhash: result.Value.Blockhash,
		Slot:      result.Context.Slot,
	}, nil
}

func (c *RPCClient) ConfirmTransfer(ctx context.Context, reference string) (TransferStatus, error) {
	const op = "chain.rpc.ConfirmTransfer"

	var result struct {
		Value []*struct {
			ConfirmationStatus string      `json:"confirmationStatus"`
			Err                interface{} `json:"err"`
		} `json:"value"`
	}

	err := c.call(ctx, "getSignatureStatuses", []interface{}{
		[]string{reference},
		map[string]bool{"searchTransactionHistory": true},
	}, &result)
	if err != nil {
		return TransferPending, fmt.Errorf("%s: %w", op, err)
	}

	if len(result.Value) == 0 || result.Value[0] == nil {
		return TransferPending, nil
	}

	status := result.Value[0]

	if status.Err != nil {
		return TransferFailed, nil
	}

	switch status.ConfirmationStatus {
	case "confirmed", "finalized":
		return TransferConfirmed, nil
	default:
		return TransferPending, nil
	}
}

// SubmitTransfer exists to complete the Ledger interface; the node cannot
// sign for anyone, so transfers must arrive pre-signed from the owning
// wallet (or through a signing transport).
func (c *RPCClient) SubmitTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	const op = "chain.rpc.SubmitTransfer"

	return "", fmt.Errorf("%s: no key for %s, transfers must be submitted by the owning wallet", op, from)
}

func (c *RPCClient) Balance(ctx context.Context, address string) (int64, error) {
	const op = "chain.rpc.Balance"

	var result struct {
		Value int64 `json:"value"`
	}

	err := c.call(ctx, "getBalance", []interface{}{address}, &result)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return result.Value, nil
}

// SendRawTransaction submits a signed, serialized transaction and returns its
// signature.
func (c *RPCClient) SendRawTransaction(ctx context.Context, base64Tx string) (string, error) {
	const op = "chain.rpc.SendRawTransaction"

	var signature string

	err := c.call(ctx, "sendTransaction", []interface{}{
		base64Tx,
		map[string]string{"encoding": "base64"},
	}, &signature)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signature, nil
}
