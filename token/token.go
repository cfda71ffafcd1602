// Package token holds the fungible claim-token ledger. Minting and burning
// are restricted to a single minter (the registry); delegated spending is
// granted through signed, replay-protected authorizations verified against
// an EIP-712 typed-data digest.
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/models"
)

var (
	ErrNotMinter             = errors.New("token: caller is not the minter")
	ErrZeroAddress           = errors.New("token: zero address")
	ErrInvalidAmount         = errors.New("token: invalid amount")
	ErrInsufficientBalance   = errors.New("token: insufficient balance")
	ErrInsufficientAllowance = errors.New("token: insufficient allowance")
)

type Ledger struct {
	mu         sync.RWMutex
	minter     common.Address
	domain     DomainData
	balances   map[common.Address]*big.Int
	nonces     map[common.Address]*big.Int
	allowances map[common.Address]map[common.Address]*big.Int
	sink       models.EventSink

	now func() time.Time
}

// NewLedger creates a claim-token ledger whose mutating operations accept
// only minter as caller. chainId and verifyingContract bind the ledger's
// signing domain.
func NewLedger(minter common.Address, chainId int64, verifyingContract common.Address, sink models.EventSink) *Ledger {
	return &Ledger{
		minter:     minter,
		domain:     NewDomainData(chainId, verifyingContract),
		balances:   make(map[common.Address]*big.Int),
		nonces:     make(map[common.Address]*big.Int),
		allowances: make(map[common.Address]map[common.Address]*big.Int),
		sink:       sink,
		now:        time.Now,
	}
}

func (l *Ledger) Mint(caller common.Address, to common.Address, amount *big.Int) error {
	if caller != l.minter {
		return ErrNotMinter
	}
	if to == (common.Address{}) {
		return ErrZeroAddress
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	l.balanceRef(to).Add(l.balanceRef(to), amount)
	l.mu.Unlock()

	l.emit(models.Event{
		Type:      models.EventClaimMinted,
		Investor:  to.Hex(),
		Amount:    amount.String(),
		CreatedAt: l.now(),
	})
	return nil
}

func (l *Ledger) Burn(caller common.Address, from common.Address, amount *big.Int) error {
	if caller != l.minter {
		return ErrNotMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	balance := l.balanceRef(from)
	if balance.Cmp(amount) < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), balance.String(), amount.String())
	}
	balance.Sub(balance, amount)
	l.mu.Unlock()

	l.emit(models.Event{
		Type:      models.EventClaimBurned,
		Investor:  from.Hex(),
		Amount:    amount.String(),
		CreatedAt: l.now(),
	})
	return nil
}

// BurnFrom burns owner's tokens against a previously granted allowance for
// caller. Balance and allowance are both checked before either is touched,
// so a failed call consumes nothing.
func (l *Ledger) BurnFrom(caller common.Address, owner common.Address, amount *big.Int) error {
	if caller != l.minter {
		return ErrNotMinter
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	l.mu.Lock()
	allowance := l.allowanceRef(owner, caller)
	if allowance.Cmp(amount) < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s allows %s, needs %s", ErrInsufficientAllowance, owner.Hex(), allowance.String(), amount.String())
	}
	balance := l.balanceRef(owner)
	if balance.Cmp(amount) < 0 {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, owner.Hex(), balance.String(), amount.String())
	}
	allowance.Sub(allowance, amount)
	balance.Sub(balance, amount)
	l.mu.Unlock()

	l.emit(models.Event{
		Type:      models.EventClaimBurned,
		Investor:  owner.Hex(),
		Amount:    amount.String(),
		CreatedAt: l.now(),
	})
	return nil
}

// CancelAllowance zeroes owner's allowance for the minter. The registry uses
// it to drop a granted authorization whose redemption could not complete.
func (l *Ledger) CancelAllowance(caller common.Address, owner common.Address) error {
	if caller != l.minter {
		return ErrNotMinter
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowanceRef(owner, caller).SetInt64(0)
	return nil
}

func (l *Ledger) BalanceOf(holder common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	balance, ok := l.balances[holder]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

func (l *Ledger) NonceOf(owner common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	nonce, ok := l.nonces[owner]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(nonce)
}

func (l *Ledger) Allowance(owner common.Address, spender common.Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	spenders, ok := l.allowances[owner]
	if !ok {
		return new(big.Int)
	}
	allowance, ok := spenders[spender]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(allowance)
}

func (l *Ledger) balanceRef(holder common.Address) *big.Int {
	balance, ok := l.balances[holder]
	if !ok {
		balance = new(big.Int)
		l.balances[holder] = balance
	}
	return balance
}

func (l *Ledger) nonceRef(owner common.Address) *big.Int {
	nonce, ok := l.nonces[owner]
	if !ok {
		nonce = new(big.Int)
		l.nonces[owner] = nonce
	}
	return nonce
}

func (l *Ledger) allowanceRef(owner common.Address, spender common.Address) *big.Int {
	spenders, ok := l.allowances[owner]
	if !ok {
		spenders = make(map[common.Address]*big.Int)
		l.allowances[owner] = spenders
	}
	allowance, ok := spenders[spender]
	if !ok {
		allowance = new(big.Int)
		spenders[spender] = allowance
	}
	return allowance
}

func (l *Ledger) emit(event models.Event) {
	if l.sink != nil {
		l.sink.Emit(event)
	}
}
