package chain

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/mr-tron/base58"
)

// LocalSignerTransport pays out with a locally held house key: it builds the
// transfer, signs it and submits through the RPC client.
type LocalSignerTransport struct {
	key          ed25519.PrivateKey
	houseAddress string
	rpc          *RPCClient
}

func NewLocalSignerTransport(keyPath, houseAddress string, rpc *RPCClient) (*LocalSignerTransport, error) {
	const op = "chain.transport.NewLocalSignerTransport"

	raw, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var keyBytes []byte

	if err = json.Unmarshal(raw, &keyBytes); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(keyBytes) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("%s: keyfile must hold a %d-byte keypair", op, ed25519.PrivateKeySize)
	}

	return &LocalSignerTransport{
		key:          ed25519.PrivateKey(keyBytes),
		houseAddress: houseAddress,
		rpc:          rpc,
	}, nil
}

func (t *LocalSignerTransport) SendPayout(ctx context.Context, to string, lamports int64) (string, error) {
	const op = "chain.transport.LocalSignerTransport.SendPayout"

	seed, err := t.rpc.PublicSeed(ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	tx, err := buildTransferTx(t.key, t.houseAddress, to, seed.Blockhash, lamports)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	signature, err := t.rpc.SendRawTransaction(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signature, nil
}

// SubmitTransfer lets the local signer double as the house side of the Ledger
// interface; it refuses to move funds from any account it does not hold the
// key for.
func (t *LocalSignerTransport) SubmitTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	const op = "chain.transport.LocalSignerTransport.SubmitTransfer"

	if from != t.houseAddress {
		return "", fmt.Errorf("%s: no key for %s", op, from)
	}

	return t.SendPayout(ctx, to, lamports)
}

// Address derives the public address from the loaded keypair, used at
// startup to cross-check configuration.
func (t *LocalSignerTransport) Address() string {
	return base58.Encode(t.key.Public().(ed25519.PublicKey))
}

// RemoteAPITransport delegates payouts to a payout API that holds the house
// key elsewhere.
type RemoteAPITransport struct {
	url    string
	client *http.Client
}

func NewRemoteAPITransport(url string) *RemoteAPITransport {
	return &RemoteAPITransport{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type remotePayoutRequest struct {
	PlayerWallet string `json:"playerWallet"`
	Amount       int64  `json:"amount"`
}

type remotePayoutResponse struct {
	Success   bool   `json:"success"`
	Signature string `json:"signature"`
	Error     string `json:"error"`
}

func (t *RemoteAPITransport) SendPayout(ctx context.Context, to string, lamports int64) (string, error) {
	const op = "chain.transport.RemoteAPITransport.SendPayout"

	body, err := json.Marshal(remotePayoutRequest{
		PlayerWallet: to,
		Amount:       lamports,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	var payoutResp remotePayoutResponse

	if err = json.NewDecoder(resp.Body).Decode(&payoutResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !payoutResp.Success {
		return "", fmt.Errorf("%s: remote payout rejected: %s", op, payoutResp.Error)
	}

	return payoutResp.Signature, nil
}
