package deposit

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
)

func TestStoredAccountEncodingIsStable(t *testing.T) {
	first := NewAccountDeposit()
	first.Amount = big.NewInt(500)
	first.Tokens["b.token"] = big.NewInt(2)
	first.Tokens["a.token"] = big.NewInt(1)
	first.Tokens["c.token"] = big.NewInt(0)

	second := NewAccountDeposit()
	second.Amount = big.NewInt(500)
	second.Tokens["c.token"] = big.NewInt(0)
	second.Tokens["a.token"] = big.NewInt(1)
	second.Tokens["b.token"] = big.NewInt(2)

	encodedFirst, err := rlp.EncodeToBytes(toStoredAccount(first))
	if err != nil {
		t.Fatalf("encode first: %v", err)
	}
	encodedSecond, err := rlp.EncodeToBytes(toStoredAccount(second))
	if err != nil {
		t.Fatalf("encode second: %v", err)
	}
	if !bytes.Equal(encodedFirst, encodedSecond) {
		t.Fatal("equal records encoded differently")
	}
}

func TestStoredAccountRoundTrip(t *testing.T) {
	record := NewAccountDeposit()
	record.Amount = big.NewInt(1234)
	record.Tokens["usdc.token"] = big.NewInt(99)
	record.Tokens["dai.token"] = big.NewInt(0)

	stored := toStoredAccount(record)
	restored, err := fromStoredAccount(&stored)
	if err != nil {
		t.Fatalf("from stored: %v", err)
	}
	if restored.Amount.Cmp(record.Amount) != 0 {
		t.Fatalf("storage deposit %s, want %s", restored.Amount, record.Amount)
	}
	if len(restored.Tokens) != 2 {
		t.Fatalf("restored %d tokens, want 2", len(restored.Tokens))
	}
	if !restored.Registered("dai.token") {
		t.Fatal("zero-balance token lost its registration")
	}
	if restored.Balance("usdc.token").Cmp(big.NewInt(99)) != 0 {
		t.Fatalf("balance %s, want 99", restored.Balance("usdc.token"))
	}
}

func TestFromStoredAccountRejectsCorruptAmounts(t *testing.T) {
	stored := storedAccountDeposit{Amount: "not-a-number"}
	if _, err := fromStoredAccount(&stored); err == nil {
		t.Fatal("expected error for corrupt storage deposit")
	}
	stored = storedAccountDeposit{
		Amount: "1",
		Tokens: []storedTokenBalance{{Token: "x.token", Amount: "-5"}},
	}
	if _, err := fromStoredAccount(&stored); err == nil {
		t.Fatal("expected error for negative balance")
	}
}
