// Package vault is the custodial holder of settlement assets. Deposits are
// open to any caller; withdrawals are restricted to exactly one trusted
// caller, fixed at construction. The vault carries no per-depositor ledger:
// its state is whatever the underlying asset accounting reports for its
// identity.
package vault

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/bank"
	"github.com/factorline/receivables-registry/models"
)

var (
	ErrNotOwner        = errors.New("vault: caller is not the trusted withdrawer")
	ErrZeroAmount      = errors.New("vault: zero amount")
	ErrValueMismatch   = errors.New("vault: attached value does not match amount")
	ErrUnexpectedValue = errors.New("vault: value attached to asset deposit")
)

type Vault struct {
	address common.Address
	owner   common.Address
	bank    *bank.Bank
	sink    models.EventSink

	now func() time.Time
}

// New creates a vault holding funds under address. owner is the single
// caller allowed to withdraw; it cannot be changed afterwards.
func New(address common.Address, owner common.Address, bk *bank.Bank, sink models.EventSink) *Vault {
	return &Vault{
		address: address,
		owner:   owner,
		bank:    bk,
		sink:    sink,
		now:     time.Now,
	}
}

func (v *Vault) Address() common.Address {
	return v.address
}

// Balance reports the vault's holding of asset per the underlying accounting.
func (v *Vault) Balance(asset common.Address) *big.Int {
	return v.bank.BalanceOf(asset, v.address)
}

// Deposit pulls amount of asset from the depositor into custody. For the
// native sentinel the attached value must equal amount exactly; for a named
// asset no value may be attached.
func (v *Vault) Deposit(from common.Address, asset common.Address, amount *big.Int, value *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	eventType := models.EventVaultDepositAsset
	if asset == bank.Native {
		if value == nil || value.Cmp(amount) != 0 {
			return fmt.Errorf("%w: amount %s", ErrValueMismatch, amount.String())
		}
		eventType = models.EventVaultDepositNative
	} else if value != nil && value.Sign() != 0 {
		return ErrUnexpectedValue
	}

	if err := v.bank.Transfer(asset, from, v.address, amount); err != nil {
		return fmt.Errorf("vault: deposit transfer failed: %w", err)
	}

	v.emit(models.Event{
		Type:      eventType,
		Investor:  from.Hex(),
		Asset:     asset.Hex(),
		Amount:    amount.String(),
		CreatedAt: v.now(),
	})
	return nil
}

// Withdraw pushes amount of asset from custody to the recipient. Only the
// trusted caller may invoke it; a failed push fails the whole call.
func (v *Vault) Withdraw(caller common.Address, asset common.Address, to common.Address, amount *big.Int) error {
	if caller != v.owner {
		return ErrNotOwner
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrZeroAmount
	}

	eventType := models.EventVaultWithdrawAsset
	if asset == bank.Native {
		eventType = models.EventVaultWithdrawNative
	}

	if err := v.bank.Transfer(asset, v.address, to, amount); err != nil {
		return fmt.Errorf("vault: withdraw transfer failed: %w", err)
	}

	v.emit(models.Event{
		Type:      eventType,
		Recipient: to.Hex(),
		Asset:     asset.Hex(),
		Amount:    amount.String(),
		CreatedAt: v.now(),
	})
	return nil
}

func (v *Vault) emit(event models.Event) {
	if v.sink != nil {
		v.sink.Emit(event)
	}
}
