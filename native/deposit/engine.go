package deposit

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"depositledger/core/events"
	"depositledger/core/types"
)

var (
	errNilState  = errors.New("deposit engine: state not configured")
	errNilPolicy = errors.New("deposit engine: token policy not configured")
)

type depositEvent struct {
	evt *types.Event
}

func (e depositEvent) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e depositEvent) Event() *types.Event { return e.evt }

// Engine bridges caller identity, persisted account records and the
// external token-transfer system. Every entry point performs a full
// load-mutate-persist cycle on a local copy of the caller's record and
// writes back exactly once; a failed precondition or invariant check aborts
// the call with nothing persisted.
//
// The engine performs no locking of its own. The hosting environment is
// expected to serialize entry-point invocations, which makes each call's
// read-modify-write cycle atomic by construction.
type Engine struct {
	state     Storage
	policy    TokenPolicy
	transfers TransferRequester
	emitter   events.Emitter
	byteCost  *big.Int
}

// NewEngine creates a deposit engine with no-op collaborators. Callers wire
// state, policy, transfers and the byte-cost rate before use.
func NewEngine() *Engine {
	return &Engine{
		transfers: NoopTransferRequester{},
		emitter:   events.NoopEmitter{},
		byteCost:  big.NewInt(0),
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state Storage) { e.state = state }

// SetPolicy configures the global token whitelist consulted by the deposit
// path.
func (e *Engine) SetPolicy(policy TokenPolicy) { e.policy = policy }

// SetTransfers configures the outbound transfer collaborator. Passing nil
// resets it to a no-op implementation.
func (e *Engine) SetTransfers(transfers TransferRequester) {
	if transfers == nil {
		e.transfers = NoopTransferRequester{}
		return
	}
	e.transfers = transfers
}

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetStorageByteCost configures the host-supplied price of one persisted
// byte. Passing nil resets the rate to zero, which makes storage free.
func (e *Engine) SetStorageByteCost(cost *big.Int) {
	if cost == nil {
		e.byteCost = big.NewInt(0)
		return
	}
	e.byteCost = new(big.Int).Set(cost)
}

func (e *Engine) emit(event *types.Event) {
	if e == nil || e.emitter == nil || event == nil {
		return
	}
	e.emitter.Emit(depositEvent{evt: event})
}

func (e *Engine) loadAccount(account string) (*AccountDeposit, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	var stored storedAccountDeposit
	ok, err := e.state.KVGet(accountKey(account), &stored)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotRegistered, account)
	}
	return fromStoredAccount(&stored)
}

func (e *Engine) storeAccount(account string, record *AccountDeposit) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	return e.state.KVPut(accountKey(account), toStoredAccount(record))
}

func normalizeAccount(account string) (string, error) {
	trimmed := strings.TrimSpace(account)
	if trimmed == "" {
		return "", fmt.Errorf("deposit: account required")
	}
	if len(trimmed) > maxAccountLength {
		return "", fmt.Errorf("deposit: account exceeds %d characters", maxAccountLength)
	}
	return trimmed, nil
}

func normalizeToken(token string) (string, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return "", fmt.Errorf("deposit: token required")
	}
	return trimmed, nil
}

// RegisterAccount creates a ledger record for the account with the supplied
// storage deposit, or adds the amount to an existing record. It is used by
// the inbound deposit path once the native top-up has already been received
// by the host, so it never fails on ledger state.
func (e *Engine) RegisterAccount(account string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	normalized, err := normalizeAccount(account)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	record, err := e.loadAccount(normalized)
	if errors.Is(err, ErrNotRegistered) {
		record = NewAccountDeposit()
	} else if err != nil {
		return err
	}
	record.Amount = new(big.Int).Add(record.Amount, amount)
	if err := e.storeAccount(normalized, record); err != nil {
		return err
	}
	e.emit(NewAccountRegisteredEvent(normalized, amount, record.Amount))
	return nil
}

// Deposit records an inbound token transfer for the account. The token must
// be globally whitelisted or already registered on the account; whitelisted
// tokens self-register on first deposit, subject to the storage solvency
// check.
func (e *Engine) Deposit(account, token string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if e.policy == nil {
		return errNilPolicy
	}
	normalized, err := normalizeAccount(account)
	if err != nil {
		return err
	}
	tokenID, err := normalizeToken(token)
	if err != nil {
		return err
	}
	record, err := e.loadAccount(normalized)
	if err != nil {
		return err
	}
	if !e.policy.IsWhitelisted(tokenID) && !record.Registered(tokenID) {
		return fmt.Errorf("%w: %s", ErrTokenNotWhitelisted, tokenID)
	}
	if err := record.Credit(tokenID, amount, e.byteCost); err != nil {
		return err
	}
	if err := e.storeAccount(normalized, record); err != nil {
		return err
	}
	e.emit(NewDepositedEvent(normalized, tokenID, amount, record.Balance(tokenID)))
	return nil
}

// DepositBalance returns the account's current balance of the given token.
// A missing account or unregistered token reads as zero.
func (e *Engine) DepositBalance(account, token string) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, errNilState
	}
	normalized, err := normalizeAccount(account)
	if err != nil {
		return nil, err
	}
	tokenID, err := normalizeToken(token)
	if err != nil {
		return nil, err
	}
	record, err := e.loadAccount(normalized)
	if errors.Is(err, ErrNotRegistered) {
		return big.NewInt(0), nil
	}
	if err != nil {
		return nil, err
	}
	return record.Balance(tokenID), nil
}

// StorageBalance returns the account's total prepaid storage deposit and
// the headroom left after the current footprint.
func (e *Engine) StorageBalance(account string) (total, available *big.Int, err error) {
	if e == nil || e.state == nil {
		return nil, nil, errNilState
	}
	normalized, err := normalizeAccount(account)
	if err != nil {
		return nil, nil, err
	}
	record, err := e.loadAccount(normalized)
	if err != nil {
		return nil, nil, err
	}
	return new(big.Int).Set(record.Amount), record.StorageAvailable(e.byteCost), nil
}

// RegisterTokens registers each token for the caller in the order given.
// The first failure aborts the whole batch; the single write-back at the
// end means no partial application is ever persisted.
func (e *Engine) RegisterTokens(caller string, tokens []string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	normalized, err := normalizeAccount(caller)
	if err != nil {
		return err
	}
	record, err := e.loadAccount(normalized)
	if err != nil {
		return err
	}
	registered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		tokenID, err := normalizeToken(token)
		if err != nil {
			return err
		}
		if err := record.Register(tokenID, e.byteCost); err != nil {
			return err
		}
		registered = append(registered, tokenID)
	}
	if err := e.storeAccount(normalized, record); err != nil {
		return err
	}
	e.emit(NewTokensRegisteredEvent(normalized, registered))
	return nil
}

// UnregisterTokens removes each token key for the caller. Every balance in
// the batch must be exactly zero; the first failure aborts the call with
// nothing persisted.
func (e *Engine) UnregisterTokens(caller string, tokens []string) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	normalized, err := normalizeAccount(caller)
	if err != nil {
		return err
	}
	record, err := e.loadAccount(normalized)
	if err != nil {
		return err
	}
	unregistered := make([]string, 0, len(tokens))
	for _, token := range tokens {
		tokenID, err := normalizeToken(token)
		if err != nil {
			return err
		}
		if err := record.Unregister(tokenID); err != nil {
			return err
		}
		unregistered = append(unregistered, tokenID)
	}
	if err := e.storeAccount(normalized, record); err != nil {
		return err
	}
	e.emit(NewTokensUnregisteredEvent(normalized, unregistered))
	return nil
}

// Withdraw debits the caller's token balance, optionally unregisters the
// token, persists the record and then requests the outbound transfer. The
// caller must attach exactly one unit of the native token as a
// single-intent confirmation.
//
// The ledger entry is committed before the transfer request leaves the
// engine; the external transfer is not transactionally linked to the debit
// and a downstream transfer failure does not roll it back.
func (e *Engine) Withdraw(caller, token string, amount *big.Int, unregister bool, attached *big.Int) error {
	if e == nil || e.state == nil {
		return errNilState
	}
	if attached == nil || attached.Cmp(big.NewInt(1)) != 0 {
		return ErrConfirmationRequired
	}
	normalized, err := normalizeAccount(caller)
	if err != nil {
		return err
	}
	tokenID, err := normalizeToken(token)
	if err != nil {
		return err
	}
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	record, err := e.loadAccount(normalized)
	if err != nil {
		return err
	}
	if err := record.Debit(tokenID, amount); err != nil {
		return err
	}
	if unregister {
		if err := record.Unregister(tokenID); err != nil {
			return err
		}
	}
	if err := e.storeAccount(normalized, record); err != nil {
		return err
	}
	e.transfers.RequestTransfer(normalized, tokenID, amount)
	e.emit(NewWithdrawnEvent(normalized, tokenID, amount, unregister))
	return nil
}
