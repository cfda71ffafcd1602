// Package bank is the settlement-asset accounting the registry runs against.
// It models the behavior of a standard safe-transfer asset: a transfer
// succeeds, fails loudly, or is a no-op only for a zero amount. Holders may
// install a receive hook, which is what lets redemption and funding flows be
// exercised against callers that call back into the registry mid-transfer.
package bank

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Native is the native-currency sentinel asset.
var Native = common.Address{}

var (
	ErrInvalidAmount     = errors.New("bank: invalid amount")
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
	ErrTransferRejected  = errors.New("bank: transfer rejected by recipient")
)

// Hook runs after an incoming transfer has been credited to its installer.
// Returning an error fails the whole transfer.
type Hook func(asset common.Address, from common.Address, amount *big.Int) error

type Bank struct {
	mu       sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int
	hooks    map[common.Address]Hook
}

func New() *Bank {
	return &Bank{
		balances: make(map[common.Address]map[common.Address]*big.Int),
		hooks:    make(map[common.Address]Hook),
	}
}

// Credit funds an account out of thin air. Bootstrap and test use only.
func (b *Bank) Credit(asset common.Address, holder common.Address, amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(asset, holder, amount)
}

func (b *Bank) BalanceOf(asset common.Address, holder common.Address) *big.Int {
	b.mu.Lock()
	defer b.mu.Unlock()
	holders, ok := b.balances[asset]
	if !ok {
		return new(big.Int)
	}
	balance, ok := holders[holder]
	if !ok {
		return new(big.Int)
	}
	return new(big.Int).Set(balance)
}

// SetHook installs a receive hook for holder. A nil hook removes it.
func (b *Bank) SetHook(holder common.Address, hook Hook) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if hook == nil {
		delete(b.hooks, holder)
		return
	}
	b.hooks[holder] = hook
}

// Transfer moves amount of asset from one holder to another. A zero amount
// is a no-op. The recipient's hook, if any, runs after the balances are
// updated; a hook error reverses the movement and fails the call.
func (b *Bank) Transfer(asset common.Address, from common.Address, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if amount.Sign() == 0 {
		return nil
	}

	b.mu.Lock()
	balance := b.balanceRef(asset, from)
	if balance.Cmp(amount) < 0 {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s has %s of %s, needs %s",
			ErrInsufficientFunds, from.Hex(), balance.String(), assetLabel(asset), amount.String())
	}
	balance.Sub(balance, amount)
	b.credit(asset, to, amount)
	hook := b.hooks[to]
	b.mu.Unlock()

	if hook == nil {
		return nil
	}

	// hook runs without the lock so it may call back into the bank
	if err := hook(asset, from, amount); err != nil {
		b.mu.Lock()
		b.balanceRef(asset, to).Sub(b.balanceRef(asset, to), amount)
		b.credit(asset, from, amount)
		b.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrTransferRejected, err)
	}
	return nil
}

func (b *Bank) credit(asset common.Address, holder common.Address, amount *big.Int) {
	b.balanceRef(asset, holder).Add(b.balanceRef(asset, holder), amount)
}

func (b *Bank) balanceRef(asset common.Address, holder common.Address) *big.Int {
	holders, ok := b.balances[asset]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		b.balances[asset] = holders
	}
	balance, ok := holders[holder]
	if !ok {
		balance = new(big.Int)
		holders[holder] = balance
	}
	return balance
}

func assetLabel(asset common.Address) string {
	if asset == Native {
		return "native"
	}
	return asset.Hex()
}
