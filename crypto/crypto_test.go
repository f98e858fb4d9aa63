package crypto

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/ahwlsqja/eth-mempool/types"
)

func testTx() *types.DynamicFeeTx {
	to := types.BytesToAddress([]byte{0x01, 0x02})
	return &types.DynamicFeeTx{
		ChainID:   1,
		Nonce:     3,
		GasTipCap: uint256.NewInt(1_000_000_000),
		GasFeeCap: uint256.NewInt(20_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     uint256.NewInt(100),
		R:         new(uint256.Int),
		S:         new(uint256.Int),
	}
}

func TestSignAndRecover(t *testing.T) {
	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	tx := testTx()
	if err := key.SignTx(tx); err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	if tx.V > 1 {
		t.Fatalf("recovery id out of range: %d", tx.V)
	}
	if tx.R.IsZero() || tx.S.IsZero() {
		t.Fatalf("signature values not set")
	}

	sender, err := RecoverSender(tx)
	if err != nil {
		t.Fatalf("RecoverSender failed: %v", err)
	}
	if sender != key.Address() {
		t.Errorf("recovered %s, want %s", sender, key.Address())
	}
}

func TestRecoverSender_WrongSigner(t *testing.T) {
	alice, _ := GenerateKey()
	bob, _ := GenerateKey()

	tx := testTx()
	if err := alice.SignTx(tx); err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	sender, err := RecoverSender(tx)
	if err != nil {
		t.Fatalf("RecoverSender failed: %v", err)
	}
	if sender == bob.Address() {
		t.Errorf("recovered bob's address from alice's signature")
	}
}

func TestRecoverSender_TamperedPayload(t *testing.T) {
	key, _ := GenerateKey()
	tx := testTx()
	if err := key.SignTx(tx); err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}

	// Changing any signed field must break recovery to the original sender.
	tx.Nonce++
	sender, err := RecoverSender(tx)
	if err == nil && sender == key.Address() {
		t.Errorf("tampered transaction still recovers to signer")
	}
}

func TestRecoverSender_BadRecoveryID(t *testing.T) {
	key, _ := GenerateKey()
	tx := testTx()
	if err := key.SignTx(tx); err != nil {
		t.Fatalf("SignTx failed: %v", err)
	}
	tx.V = 2
	if _, err := RecoverSender(tx); err == nil {
		t.Errorf("recovery id 2 accepted")
	}
}

func TestPubkeyToAddress_Deterministic(t *testing.T) {
	key, _ := GenerateKey()
	if key.Address() != key.Address() {
		t.Errorf("address derivation not deterministic")
	}
	other, _ := GenerateKey()
	if key.Address() == other.Address() {
		t.Errorf("distinct keys share an address")
	}
}
