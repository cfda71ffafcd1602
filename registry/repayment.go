package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/bank"
	"github.com/factorline/receivables-registry/models"
)

// Repay pulls a repayment in the batch's settlement asset into custody.
// Repayments pool in the vault; no linkage is kept between a repayment and
// any specific investor.
func (r *Registry) Repay(caller common.Address, batchId string, amount *big.Int) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	asset, err := r.repaymentAsset(caller, batchId, false)
	if err != nil {
		return err
	}

	if err := r.vault.Deposit(caller, asset, amount, nil); err != nil {
		return fmt.Errorf("registry: repayment deposit failed: %w", err)
	}

	r.emitRepayment(batchId, caller, asset, amount)
	return nil
}

// RepayNative is the native-currency form: the attached value is the
// repayment amount.
func (r *Registry) RepayNative(caller common.Address, batchId string, value *big.Int) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if value == nil || value.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if _, err := r.repaymentAsset(caller, batchId, true); err != nil {
		return err
	}

	if err := r.vault.Deposit(caller, bank.Native, value, value); err != nil {
		return fmt.Errorf("registry: repayment deposit failed: %w", err)
	}

	r.emitRepayment(batchId, caller, bank.Native, value)
	return nil
}

func (r *Registry) repaymentAsset(caller common.Address, batchId string, wantNative bool) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[batchId]
	if !ok {
		return common.Address{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	if caller != common.HexToAddress(batch.Payer) {
		return common.Address{}, ErrNotPayer
	}
	if !batch.Issued {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNotIssued, batchId)
	}

	asset := common.HexToAddress(batch.SettlementAsset)
	if wantNative && asset != bank.Native {
		return common.Address{}, fmt.Errorf("%w: %s", ErrAssetSettlement, batchId)
	}
	if !wantNative && asset == bank.Native {
		return common.Address{}, fmt.Errorf("%w: %s", ErrNativeSettlement, batchId)
	}
	return asset, nil
}

func (r *Registry) emitRepayment(batchId string, payer common.Address, asset common.Address, amount *big.Int) {
	r.emit(models.Event{
		Type:      models.EventRepayment,
		BatchId:   batchId,
		Payer:     payer.Hex(),
		Asset:     asset.Hex(),
		Amount:    amount.String(),
		CreatedAt: r.now(),
	})
}
