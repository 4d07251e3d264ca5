package deposit

import (
	"math/big"
	"strconv"
	"strings"

	"depositledger/core/types"
)

const (
	EventTypeAccountRegistered  = "deposit.account_registered"
	EventTypeDeposited          = "deposit.deposited"
	EventTypeTokensRegistered   = "deposit.tokens_registered"
	EventTypeTokensUnregistered = "deposit.tokens_unregistered"
	EventTypeWithdrawn          = "deposit.withdrawn"
)

// NewAccountRegisteredEvent returns the canonical payload emitted when an
// account is created or tops up its storage deposit.
func NewAccountRegisteredEvent(account string, amount, total *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeAccountRegistered,
		Attributes: map[string]string{
			"account": account,
			"amount":  amountString(amount),
			"total":   amountString(total),
		},
	}
}

// NewDepositedEvent returns the canonical payload emitted after a token
// credit has been persisted.
func NewDepositedEvent(account, token string, amount, balance *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeDeposited,
		Attributes: map[string]string{
			"account": account,
			"token":   token,
			"amount":  amountString(amount),
			"balance": amountString(balance),
		},
	}
}

// NewTokensRegisteredEvent returns the payload for a successful token
// registration batch.
func NewTokensRegisteredEvent(account string, tokens []string) *types.Event {
	return &types.Event{
		Type: EventTypeTokensRegistered,
		Attributes: map[string]string{
			"account": account,
			"tokens":  strings.Join(tokens, ","),
		},
	}
}

// NewTokensUnregisteredEvent returns the payload for a successful token
// unregistration batch.
func NewTokensUnregisteredEvent(account string, tokens []string) *types.Event {
	return &types.Event{
		Type: EventTypeTokensUnregistered,
		Attributes: map[string]string{
			"account": account,
			"tokens":  strings.Join(tokens, ","),
		},
	}
}

// NewWithdrawnEvent returns the payload emitted once a withdrawal has been
// committed and the outbound transfer requested.
func NewWithdrawnEvent(account, token string, amount *big.Int, unregistered bool) *types.Event {
	return &types.Event{
		Type: EventTypeWithdrawn,
		Attributes: map[string]string{
			"account":      account,
			"token":        token,
			"amount":       amountString(amount),
			"unregistered": strconv.FormatBool(unregistered),
		},
	}
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}
