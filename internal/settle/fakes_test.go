package settle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/xbtlex/solana-casino/internal/chain"
	"github.com/xbtlex/solana-casino/internal/config"
	"github.com/xbtlex/solana-casino/internal/event"
	"github.com/xbtlex/solana-casino/internal/http-server/model"
	"github.com/xbtlex/solana-casino/internal/metrics"
	"github.com/xbtlex/solana-casino/internal/repository"
)

var errNotFound = errors.New("not found")

type memWagerStore struct {
	mu     sync.Mutex
	nextID int64
	wagers map[uuid.UUID]model.Wager
}

func newMemWagerStore() *memWagerStore {
	return &memWagerStore{wagers: make(map[uuid.UUID]model.Wager)}
}

func (s *memWagerStore) SaveWager(wager model.Wager) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	wager.ID = s.nextID
	s.wagers[wager.UUID] = wager

	return wager.ID, nil
}

func (s *memWagerStore) FindWagerByUUID(wagerUUID uuid.UUID) (*model.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wager, ok := s.wagers[wagerUUID]
	if !ok {
		return nil, errNotFound
	}

	return &wager, nil
}

func (s *memWagerStore) UpdateWagerStatus(wagerUUID uuid.UUID, status model.WagerStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wager, ok := s.wagers[wagerUUID]
	if !ok {
		return errNotFound
	}

	wager.Status = status
	s.wagers[wagerUUID] = wager

	return nil
}

func (s *memWagerStore) MarkEscrowConfirmed(wagerUUID uuid.UUID, escrowRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wager, ok := s.wagers[wagerUUID]
	if !ok {
		return errNotFound
	}

	wager.Status = model.WagerEscrowConfirmed
	wager.EscrowRef = escrowRef
	s.wagers[wagerUUID] = wager

	return nil
}

func (s *memWagerStore) SaveResult(wagerUUID uuid.UUID, status model.WagerStatus, resultJSON string, multiplier float64, payout int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wager, ok := s.wagers[wagerUUID]
	if !ok {
		return errNotFound
	}

	wager.Status = status
	wager.ResultJSON = resultJSON
	wager.Multiplier = multiplier
	wager.Payout = payout
	s.wagers[wagerUUID] = wager

	return nil
}

func (s *memWagerStore) ListUnsettled() ([]model.Wager, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Wager

	for _, wager := range s.wagers {
		switch wager.Status {
		case model.WagerCreated, model.WagerEscrowPending,
			model.WagerEscrowConfirmed, model.WagerResolving,
			model.WagerResolvedWin, model.WagerPayoutPending, model.WagerPayoutFailed:
			out = append(out, wager)
		}
	}

	return out, nil
}

type memPayoutLedger struct {
	mu      sync.Mutex
	nextID  int64
	records map[uuid.UUID]model.PayoutRecord
}

func newMemPayoutLedger() *memPayoutLedger {
	return &memPayoutLedger{records: make(map[uuid.UUID]model.PayoutRecord)}
}

func (l *memPayoutLedger) RecordPending(wagerUUID uuid.UUID, amount int64) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	// Mirrors the unique key on wager_uuid.
	if _, ok := l.records[wagerUUID]; ok {
		return 0, errors.New("duplicate payout record")
	}

	l.nextID++
	l.records[wagerUUID] = model.PayoutRecord{
		ID:        l.nextID,
		WagerUUID: wagerUUID,
		Amount:    amount,
		Status:    model.PayoutPending,
	}

	return l.nextID, nil
}

func (l *memPayoutLedger) MarkSent(wagerUUID uuid.UUID, transferRef string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[wagerUUID]
	if !ok {
		return errNotFound
	}

	record.Status = model.PayoutSent
	record.TransferRef = transferRef
	record.Attempts++
	l.records[wagerUUID] = record

	return nil
}

func (l *memPayoutLedger) MarkConfirmed(wagerUUID uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[wagerUUID]
	if !ok {
		return errNotFound
	}

	record.Status = model.PayoutConfirmed
	l.records[wagerUUID] = record

	return nil
}

func (l *memPayoutLedger) MarkFailed(wagerUUID uuid.UUID, reason string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[wagerUUID]
	if !ok {
		return errNotFound
	}

	record.Status = model.PayoutFailed
	record.FailReason = reason
	l.records[wagerUUID] = record

	return nil
}

func (l *memPayoutLedger) FindByWagerUUID(wagerUUID uuid.UUID) (*model.PayoutRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	record, ok := l.records[wagerUUID]
	if !ok {
		return nil, errNotFound
	}

	return &record, nil
}

func (l *memPayoutLedger) ListUnresolved() ([]model.PayoutRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []model.PayoutRecord

	for _, record := range l.records {
		if record.Status != model.PayoutConfirmed {
			out = append(out, record)
		}
	}

	return out, nil
}

type memJackpotLedger struct {
	mu    sync.Mutex
	pools map[config.Game]model.JackpotPool
}

func newMemJackpotLedger() *memJackpotLedger {
	pools := make(map[config.Game]model.JackpotPool)

	for game, cfg := range config.GameConfigs {
		if cfg.JackpotRate > 0 {
			pools[game] = model.JackpotPool{Game: game, Pool: cfg.JackpotSeed, SeedValue: cfg.JackpotSeed}
		}
	}

	return &memJackpotLedger{pools: pools}
}

func (l *memJackpotLedger) GetPool(game config.Game) (*model.JackpotPool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[game]
	if !ok {
		return nil, errNotFound
	}

	return &pool, nil
}

func (l *memJackpotLedger) AddToPool(game config.Game, amount int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[game]
	if !ok {
		return errNotFound
	}

	pool.Pool += amount
	l.pools[game] = pool

	return nil
}

func (l *memJackpotLedger) PayAndReset(game config.Game) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	pool, ok := l.pools[game]
	if !ok {
		return 0, errNotFound
	}

	paid := pool.Pool
	pool.Pool = pool.SeedValue
	l.pools[game] = pool

	return paid, nil
}

type memProofStore struct {
	mu     sync.Mutex
	proofs []model.FairnessProof
}

func (s *memProofStore) SaveProof(proof model.FairnessProof) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirrors the unique key on wager_uuid.
	for _, p := range s.proofs {
		if p.WagerUUID == proof.WagerUUID {
			return 0, fmt.Errorf("duplicate proof for wager %s", proof.WagerUUID)
		}
	}

	s.proofs = append(s.proofs, proof)

	return int64(len(s.proofs)), nil
}

func (s *memProofStore) FindProofByWagerUUID(wagerUUID uuid.UUID) (*model.FairnessProof, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.proofs {
		if s.proofs[i].WagerUUID == wagerUUID {
			proof := s.proofs[i]

			return &proof, nil
		}
	}

	return nil, repository.ErrProofNotFound
}

type custodyEntry struct {
	wagerUUID   string
	balanceType config.BalanceType
	amount      int64
}

type memCustodyLog struct {
	mu      sync.Mutex
	entries []custodyEntry
}

func (l *memCustodyLog) RecordTransaction(wagerUUID string, balanceType config.BalanceType, amount int64, game config.Game, details string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, custodyEntry{wagerUUID: wagerUUID, balanceType: balanceType, amount: amount})

	return nil
}

type stubSeedSource struct {
	mu    sync.Mutex
	seed  chain.PublicSeed
	err   error
	calls int
}

func (s *stubSeedSource) PublicSeed(ctx context.Context) (chain.PublicSeed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++

	if s.err != nil {
		return chain.PublicSeed{}, s.err
	}

	return s.seed, nil
}

func (s *stubSeedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls
}

// stubLedger reports a per-reference transfer status, falling back to a
// default for references it has not been told about.
type stubLedger struct {
	mu       sync.Mutex
	statuses map[string]chain.TransferStatus
	fallback chain.TransferStatus
	balance  int64
}

func newStubLedger(fallback chain.TransferStatus, balance int64) *stubLedger {
	return &stubLedger{
		statuses: make(map[string]chain.TransferStatus),
		fallback: fallback,
		balance:  balance,
	}
}

func (l *stubLedger) setStatus(reference string, status chain.TransferStatus) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.statuses[reference] = status
}

func (l *stubLedger) SubmitTransfer(ctx context.Context, from, to string, lamports int64) (string, error) {
	return "", errors.New("house never submits escrow transfers")
}

func (l *stubLedger) ConfirmTransfer(ctx context.Context, reference string) (chain.TransferStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if status, ok := l.statuses[reference]; ok {
		return status, nil
	}

	return l.fallback, nil
}

func (l *stubLedger) Balance(ctx context.Context, address string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balance, nil
}

func (l *stubLedger) setBalance(balance int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance = balance
}

// stubTransport fails the first `failures` sends, then succeeds and registers
// the transfer as confirmed with the ledger.
type stubTransport struct {
	mu       sync.Mutex
	ledger   *stubLedger
	failures int
	sends    int
}

func (t *stubTransport) SendPayout(ctx context.Context, to string, lamports int64) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.sends++

	if t.sends <= t.failures {
		return "", errors.New("rpc node unavailable")
	}

	reference := fmt.Sprintf("payout-ref-%d", t.sends)

	t.ledger.setStatus(reference, chain.TransferConfirmed)

	return reference, nil
}

func (t *stubTransport) sendCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.sends
}

type memPublisher struct {
	mu       sync.Mutex
	messages []event.Message
}

func (p *memPublisher) TriggerEvent(m event.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, m)

	return nil
}

func (p *memPublisher) events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		names = append(names, m.Event)
	}

	return names
}

type testEnv struct {
	co        *Coordinator
	wagers    *memWagerStore
	payouts   *memPayoutLedger
	jackpots  *memJackpotLedger
	proofs    *memProofStore
	custody   *memCustodyLog
	seeds     *stubSeedSource
	ledger    *stubLedger
	transport *stubTransport
	pub       *memPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Settlement{
		EscrowWindow:        100 * time.Millisecond,
		ConfirmPollInterval: time.Millisecond,
		PayoutMaxAttempts:   3,
		PayoutBackoffBase:   time.Millisecond,
	}

	env := &testEnv{
		wagers:   newMemWagerStore(),
		payouts:  newMemPayoutLedger(),
		jackpots: newMemJackpotLedger(),
		proofs:   &memProofStore{},
		custody:  &memCustodyLog{},
		seeds: &stubSeedSource{seed: chain.PublicSeed{
			Blockhash: "9sHcv6xwn9YkB8nxTUGKDwPwNnmqVp5oLXZPG3XNhsWf",
			Slot:      284215991,
		}},
		ledger: newStubLedger(chain.TransferConfirmed, 100_000_000_000),
		pub:    &memPublisher{},
	}
	env.transport = &stubTransport{ledger: env.ledger}

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	env.co = NewCoordinator(log, cfg,
		env.wagers, env.payouts, env.jackpots, env.proofs, env.custody,
		env.seeds, env.ledger, env.transport,
		"HouseAddr1111111111111111111111111111111111",
		env.pub, metrics.New(prometheus.NewRegistry()))

	return env
}

func (e *testEnv) addWager(t *testing.T, game config.Game, params string, status model.WagerStatus, stake, payout int64) *model.Wager {
	t.Helper()

	sig := "escrow-sig-" + uuid.NewString()

	wager := model.Wager{
		UUID:          uuid.New(),
		PlayerAddress: "Player1111111111111111111111111111111111111",
		Game:          game,
		Params:        params,
		Stake:         stake,
		Nonce:         "6e6f6e63652d31",
		Status:        status,
		EscrowSig:     sig,
		EscrowRef:     sig,
		Multiplier:    2.0,
		Payout:        payout,
		CreatedAt:     time.Now(),
	}

	id, err := e.wagers.SaveWager(wager)
	require.NoError(t, err)

	wager.ID = id

	return &wager
}

func (e *testEnv) wagerStatus(t *testing.T, wagerUUID uuid.UUID) model.WagerStatus {
	t.Helper()

	wager, err := e.wagers.FindWagerByUUID(wagerUUID)
	require.NoError(t, err)

	return wager.Status
}
