package deposit

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Storage abstracts the subset of state manager functionality required by
// the deposit engine.
type Storage interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

// storedAccountDeposit is the wire form of an account record. Token
// balances are flattened into a symbol-sorted pair list so the RLP encoding
// stays stable regardless of map iteration order, and amounts travel as
// decimal strings.
type storedAccountDeposit struct {
	Amount string
	Tokens []storedTokenBalance
}

type storedTokenBalance struct {
	Token  string
	Amount string
}

func toStoredAccount(record *AccountDeposit) storedAccountDeposit {
	stored := storedAccountDeposit{Amount: "0"}
	if record == nil {
		return stored
	}
	if record.Amount != nil {
		stored.Amount = record.Amount.String()
	}
	if len(record.Tokens) > 0 {
		stored.Tokens = make([]storedTokenBalance, 0, len(record.Tokens))
		for token, balance := range record.Tokens {
			amount := "0"
			if balance != nil {
				amount = balance.String()
			}
			stored.Tokens = append(stored.Tokens, storedTokenBalance{Token: token, Amount: amount})
		}
		sort.Slice(stored.Tokens, func(i, j int) bool {
			return stored.Tokens[i].Token < stored.Tokens[j].Token
		})
	}
	return stored
}

func fromStoredAccount(stored *storedAccountDeposit) (*AccountDeposit, error) {
	if stored == nil {
		return nil, fmt.Errorf("deposit: nil stored record")
	}
	amount, err := parseAmount(stored.Amount)
	if err != nil {
		return nil, fmt.Errorf("deposit: storage deposit: %w", err)
	}
	record := &AccountDeposit{
		Amount: amount,
		Tokens: make(map[string]*big.Int, len(stored.Tokens)),
	}
	for _, entry := range stored.Tokens {
		token := strings.TrimSpace(entry.Token)
		if token == "" {
			continue
		}
		balance, err := parseAmount(entry.Amount)
		if err != nil {
			return nil, fmt.Errorf("deposit: balance of %s: %w", token, err)
		}
		record.Tokens[token] = balance
	}
	return record, nil
}

func parseAmount(value string) (*big.Int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return big.NewInt(0), nil
	}
	amount, ok := new(big.Int).SetString(trimmed, 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer amount %q", value)
	}
	if amount.Sign() < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}
	return amount, nil
}
