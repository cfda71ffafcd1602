package token

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/factorline/receivables-registry/common"
)

var (
	ErrAuthorizationExpired = errors.New("token: authorization expired")
	ErrNonceMismatch        = errors.New("token: nonce mismatch")
	ErrSignerMismatch       = errors.New("token: signer does not match owner")
	ErrInvalidSignature     = errors.New("token: invalid signature")
)

const primaryType = "Permit"

var typesStandard = apitypes.Types{
	"EIP712Domain": {
		{
			Name: "name",
			Type: "string",
		},
		{
			Name: "version",
			Type: "string",
		},
		{
			Name: "chainId",
			Type: "uint256",
		},
		{
			Name: "verifyingContract",
			Type: "address",
		},
	},
	"Permit": {
		{
			Name: "owner",
			Type: "address",
		},
		{
			Name: "spender",
			Type: "address",
		},
		{
			Name: "value",
			Type: "uint256",
		},
		{
			Name: "nonce",
			Type: "uint256",
		},
		{
			Name: "deadline",
			Type: "uint256",
		},
	},
}

type DomainData struct {
	Name              string
	Version           string
	ChainId           *big.Int
	VerifyingContract ethcommon.Address
}

func NewDomainData(chainId int64, verifyingContract ethcommon.Address) DomainData {
	return DomainData{
		Name:              "ClaimToken",
		Version:           "1",
		ChainId:           big.NewInt(chainId),
		VerifyingContract: verifyingContract,
	}
}

// Authorization is a structured, domain-separated, time-bounded grant of a
// one-time spend allowance. Nonce must equal the owner's current counter at
// verification time.
type Authorization struct {
	Owner    ethcommon.Address
	Spender  ethcommon.Address
	Amount   *big.Int
	Nonce    *big.Int
	Deadline time.Time
}

func buildTypedData(domain DomainData, auth Authorization) apitypes.TypedData {
	message := apitypes.TypedDataMessage{
		"owner":    auth.Owner.String(),
		"spender":  auth.Spender.String(),
		"value":    auth.Amount.String(),
		"nonce":    auth.Nonce.String(),
		"deadline": new(big.Int).SetInt64(auth.Deadline.Unix()).String(),
	}

	return apitypes.TypedData{
		Types:       typesStandard,
		PrimaryType: primaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              domain.Name,
			Version:           domain.Version,
			ChainId:           math.NewHexOrDecimal256(domain.ChainId.Int64()),
			VerifyingContract: domain.VerifyingContract.String(),
		},
		Message: message,
	}
}

// AuthorizationDigest returns the canonical typed-data hash a signature over
// auth must commit to.
func AuthorizationDigest(domain DomainData, auth Authorization) ([]byte, error) {
	typedData := buildTypedData(domain, auth)

	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, err
	}

	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, err
	}

	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256(rawData), nil
}

// SignAuthorization produces a signature over auth accepted by Permit.
func SignAuthorization(signer common.Signer, domain DomainData, auth Authorization) ([]byte, error) {
	digest, err := AuthorizationDigest(domain, auth)
	if err != nil {
		return nil, err
	}
	return signer.EthSign(digest)
}

func (l *Ledger) Domain() DomainData {
	return l.domain
}

// DomainSeparator returns the hash of the ledger's signing domain.
func (l *Ledger) DomainSeparator() (ethcommon.Hash, error) {
	typedData := buildTypedData(l.domain, Authorization{Amount: new(big.Int), Nonce: new(big.Int)})
	separator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return ethcommon.Hash{}, err
	}
	return ethcommon.BytesToHash(separator), nil
}

// Permit verifies a delegated authorization and, on success, grants the
// spender the authorized allowance and increments the owner's nonce so the
// same authorization can never be used twice.
func (l *Ledger) Permit(auth Authorization, signature []byte) error {
	if auth.Owner == (ethcommon.Address{}) || auth.Spender == (ethcommon.Address{}) {
		return ErrZeroAddress
	}
	if auth.Amount == nil || auth.Amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if auth.Nonce == nil {
		return ErrNonceMismatch
	}
	if l.now().After(auth.Deadline) {
		return ErrAuthorizationExpired
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	nonce := l.nonceRef(auth.Owner)
	if nonce.Cmp(auth.Nonce) != 0 {
		return fmt.Errorf("%w: have %s, want %s", ErrNonceMismatch, auth.Nonce.String(), nonce.String())
	}

	recovered, err := recoverSigner(l.domain, auth, signature)
	if err != nil {
		return err
	}
	if recovered != auth.Owner {
		return fmt.Errorf("%w: recovered %s, claimed %s", ErrSignerMismatch, recovered.Hex(), auth.Owner.Hex())
	}

	nonce.Add(nonce, big.NewInt(1))
	l.allowanceRef(auth.Owner, auth.Spender).Set(auth.Amount)
	return nil
}

func recoverSigner(domain DomainData, auth Authorization, signature []byte) (ethcommon.Address, error) {
	if len(signature) != crypto.SignatureLength {
		return ethcommon.Address{}, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(signature))
	}

	digest, err := AuthorizationDigest(domain, auth)
	if err != nil {
		return ethcommon.Address{}, err
	}

	sig := make([]byte, crypto.SignatureLength)
	copy(sig, signature)
	if sig[64] == 27 || sig[64] == 28 {
		sig[64] -= 27
	}
	if sig[64] != 0 && sig[64] != 1 {
		return ethcommon.Address{}, fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, sig[64])
	}

	pubKey, err := crypto.SigToPub(digest, sig)
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pubKey), nil
}
