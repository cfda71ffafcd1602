package token

import (
	"math/big"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"

	"github.com/factorline/receivables-registry/common"
)

// hardhat account 0
const (
	testPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testMnemonic   = "test test test test test test test test test test test junk"
)

func signAuth(t *testing.T, domain DomainData, auth Authorization) []byte {
	key, err := crypto.HexToECDSA(testPrivateKey)
	assert.Nil(t, err)

	digest, err := AuthorizationDigest(domain, auth)
	assert.Nil(t, err)

	signature, err := crypto.Sign(digest, key)
	assert.Nil(t, err)
	return signature
}

func testOwner() ethcommon.Address {
	key, _ := crypto.HexToECDSA(testPrivateKey)
	return crypto.PubkeyToAddress(key.PublicKey)
}

func TestPermit(t *testing.T) {
	t.Run("Grants Allowance And Consumes Nonce", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		signature := signAuth(t, l.Domain(), auth)

		err := l.Permit(auth, signature)

		assert.Nil(t, err)
		assert.Equal(t, big.NewInt(100), l.Allowance(owner, minter))
		assert.Equal(t, big.NewInt(1), l.NonceOf(owner))
	})

	t.Run("Accepts Legacy Recovery Id", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		signature := signAuth(t, l.Domain(), auth)
		signature[64] += 27

		err := l.Permit(auth, signature)

		assert.Nil(t, err)
	})

	t.Run("Replay Rejected", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		signature := signAuth(t, l.Domain(), auth)

		assert.Nil(t, l.Permit(auth, signature))

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrNonceMismatch)
		assert.Equal(t, big.NewInt(1), l.NonceOf(owner))
	})

	t.Run("Expired Deadline", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		auth.Deadline = time.Now().Add(-time.Minute)
		signature := signAuth(t, l.Domain(), auth)

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrAuthorizationExpired)
		assert.Equal(t, new(big.Int), l.NonceOf(owner))
	})

	t.Run("Signer Mismatch", func(t *testing.T) {
		l, _ := newTestLedger()
		auth := testAuthorization(other, 0)
		signature := signAuth(t, l.Domain(), auth)

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrSignerMismatch)
	})

	t.Run("Tampered Message", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		signature := signAuth(t, l.Domain(), auth)

		auth.Amount = big.NewInt(1000000)

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrSignerMismatch)
	})

	t.Run("Wrong Domain", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		otherDomain := NewDomainData(1, contract)
		signature := signAuth(t, otherDomain, auth)

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrSignerMismatch)
	})

	t.Run("Invalid Signature Length", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)

		err := l.Permit(auth, []byte{0x01, 0x02})

		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Invalid Recovery Id", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		auth := testAuthorization(owner, 0)
		signature := signAuth(t, l.Domain(), auth)
		signature[64] = 9

		err := l.Permit(auth, signature)

		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("Stale Nonce", func(t *testing.T) {
		l, _ := newTestLedger()
		owner := testOwner()
		first := testAuthorization(owner, 0)
		assert.Nil(t, l.Permit(first, signAuth(t, l.Domain(), first)))

		stale := testAuthorization(owner, 0)
		stale.Amount = big.NewInt(50)

		err := l.Permit(stale, signAuth(t, l.Domain(), stale))

		assert.ErrorIs(t, err, ErrNonceMismatch)
	})

	t.Run("Zero Address", func(t *testing.T) {
		l, _ := newTestLedger()
		auth := testAuthorization(ethcommon.Address{}, 0)

		err := l.Permit(auth, make([]byte, crypto.SignatureLength))

		assert.ErrorIs(t, err, ErrZeroAddress)
	})

	t.Run("Nil Nonce", func(t *testing.T) {
		l, _ := newTestLedger()
		auth := testAuthorization(testOwner(), 0)
		auth.Nonce = nil

		err := l.Permit(auth, make([]byte, crypto.SignatureLength))

		assert.ErrorIs(t, err, ErrNonceMismatch)
	})
}

func TestSignAuthorization(t *testing.T) {
	signer, err := common.NewMnemonicSigner(testMnemonic)
	assert.Nil(t, err)

	l, _ := newTestLedger()
	owner := signer.EthAddress()
	assert.Equal(t, testOwner(), owner)

	auth := testAuthorization(owner, 0)
	signature, err := SignAuthorization(signer, l.Domain(), auth)
	assert.Nil(t, err)

	err = l.Permit(auth, signature)

	assert.Nil(t, err)
	assert.Equal(t, big.NewInt(100), l.Allowance(owner, minter))
}
