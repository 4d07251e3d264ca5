package deposit

import (
	"fmt"
	"math/big"
)

// Storage pricing mirrors the fixed on-chain record layout: a base record
// sized for the longest permitted account identifier plus one slot per
// registered token. Charged bytes are multiplied by the host-supplied
// per-byte rate at evaluation time, never cached.
const (
	maxAccountLength      = 64
	minAccountRecordBytes = maxAccountLength + 16 + 4
	tokenRecordBytes      = maxAccountLength + 16
)

// AccountDeposit tracks one account's prepaid storage and per-token
// balances inside the custodial ledger. Presence of a token key, even with
// a zero value, means the token is registered for the account.
type AccountDeposit struct {
	// Amount is the native storage deposit the account has committed to
	// pay for its own persisted footprint.
	Amount *big.Int
	// Tokens maps token identifier to deposited balance.
	Tokens map[string]*big.Int
}

// NewAccountDeposit returns an empty record with a zero storage deposit.
func NewAccountDeposit() *AccountDeposit {
	return &AccountDeposit{
		Amount: big.NewInt(0),
		Tokens: make(map[string]*big.Int),
	}
}

// Clone returns a deep copy to avoid callers mutating shared pointers.
func (a *AccountDeposit) Clone() *AccountDeposit {
	if a == nil {
		return nil
	}
	clone := &AccountDeposit{
		Amount: big.NewInt(0),
		Tokens: make(map[string]*big.Int, len(a.Tokens)),
	}
	if a.Amount != nil {
		clone.Amount = new(big.Int).Set(a.Amount)
	}
	for token, balance := range a.Tokens {
		if balance == nil {
			balance = big.NewInt(0)
		}
		clone.Tokens[token] = new(big.Int).Set(balance)
	}
	return clone
}

// Registered reports whether the token is a registered key on the account.
func (a *AccountDeposit) Registered(token string) bool {
	_, ok := a.Tokens[token]
	return ok
}

// Balance returns the deposited balance of the given token, zero when the
// token is not registered.
func (a *AccountDeposit) Balance(token string) *big.Int {
	if balance, ok := a.Tokens[token]; ok && balance != nil {
		return new(big.Int).Set(balance)
	}
	return big.NewInt(0)
}

// StorageUsage returns the storage cost of persisting this record at the
// supplied per-byte rate. Recomputed from the record shape on every call.
func (a *AccountDeposit) StorageUsage(byteCost *big.Int) *big.Int {
	return usageFor(len(a.Tokens), byteCost)
}

// StorageAvailable returns the headroom between the prepaid storage deposit
// and the current footprint. The result can be negative for a record that
// was never persisted; a persisted record always satisfies the solvency
// check.
func (a *AccountDeposit) StorageAvailable(byteCost *big.Int) *big.Int {
	amount := a.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	return new(big.Int).Sub(amount, a.StorageUsage(byteCost))
}

// MinStorageUsage returns the smallest possible record footprint, i.e. the
// cost of an account with no registered tokens.
func MinStorageUsage(byteCost *big.Int) *big.Int {
	return usageFor(0, byteCost)
}

func usageFor(tokens int, byteCost *big.Int) *big.Int {
	if byteCost == nil {
		byteCost = big.NewInt(0)
	}
	chargedBytes := new(big.Int).SetInt64(int64(minAccountRecordBytes + tokens*tokenRecordBytes))
	return chargedBytes.Mul(chargedBytes, byteCost)
}

// Credit adds amount to the balance of the given token, implicitly
// registering the token when absent. Fails with ErrInsufficientStorage when
// the resulting footprint would exceed the prepaid storage deposit; the
// record is left unchanged on failure.
func (a *AccountDeposit) Credit(token string, amount, byteCost *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	prev, registered := a.Tokens[token]
	slots := len(a.Tokens)
	if !registered {
		prev = big.NewInt(0)
		slots++
	}
	if a.solvencyShortfall(slots, byteCost) {
		return fmt.Errorf("%w: %s", ErrInsufficientStorage, token)
	}
	if prev == nil {
		prev = big.NewInt(0)
	}
	a.Tokens[token] = new(big.Int).Add(prev, amount)
	return nil
}

// Debit subtracts amount from the balance of the given token. The token
// must be registered and the balance must cover the amount; the key remains
// registered even when the balance reaches zero.
func (a *AccountDeposit) Debit(token string, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	balance, ok := a.Tokens[token]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, token)
	}
	a.Tokens[token] = new(big.Int).Sub(balance, amount)
	return nil
}

// Register inserts the token with a zero balance when absent. Registering
// an already-registered token leaves its balance untouched. Fails with
// ErrInsufficientStorage when the additional slot is not covered by the
// prepaid storage deposit; the record is left unchanged on failure.
func (a *AccountDeposit) Register(token string, byteCost *big.Int) error {
	if _, ok := a.Tokens[token]; ok {
		return nil
	}
	if a.solvencyShortfall(len(a.Tokens)+1, byteCost) {
		return fmt.Errorf("%w: %s", ErrInsufficientStorage, token)
	}
	a.Tokens[token] = big.NewInt(0)
	return nil
}

// Unregister removes the token key. The balance must be exactly zero.
// Removing a key shrinks the footprint, so the solvency check cannot fail
// here.
func (a *AccountDeposit) Unregister(token string) error {
	balance, ok := a.Tokens[token]
	if ok && balance != nil && balance.Sign() != 0 {
		return fmt.Errorf("%w: %s", ErrNonZeroUnregister, token)
	}
	delete(a.Tokens, token)
	return nil
}

func (a *AccountDeposit) solvencyShortfall(slots int, byteCost *big.Int) bool {
	amount := a.Amount
	if amount == nil {
		amount = big.NewInt(0)
	}
	return usageFor(slots, byteCost).Cmp(amount) > 0
}
