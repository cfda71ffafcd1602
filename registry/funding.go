package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/bank"
	"github.com/factorline/receivables-registry/models"
)

// FundBatch funds an asset-denominated batch. Half the proceeds go straight
// to the payee and half into the vault, then claim tokens are minted 1:1 to
// the investor. There is no cumulative cap on this path; the native path's
// cap is the only one the ledger enforces.
func (r *Registry) FundBatch(investor common.Address, batchId string, amount *big.Int) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	r.mu.RLock()
	batch, ok := r.batches[batchId]
	if !ok {
		r.mu.RUnlock()
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	issued := batch.Issued
	asset := common.HexToAddress(batch.SettlementAsset)
	payee := common.HexToAddress(batch.Payee)
	r.mu.RUnlock()

	if !issued {
		return fmt.Errorf("%w: %s", ErrNotIssued, batchId)
	}
	if asset == bank.Native {
		return fmt.Errorf("%w: %s", ErrNativeSettlement, batchId)
	}

	// fast-fail before moving anything
	if r.bank.BalanceOf(asset, investor).Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, amount.String())
	}

	payeeShare := new(big.Int).Rsh(amount, 1)
	vaultShare := new(big.Int).Sub(amount, payeeShare)

	if err := r.bank.Transfer(asset, investor, payee, payeeShare); err != nil {
		return fmt.Errorf("registry: funding transfer to payee failed: %w", err)
	}
	if err := r.vault.Deposit(investor, asset, vaultShare, nil); err != nil {
		if reverseErr := r.bank.Transfer(asset, payee, investor, payeeShare); reverseErr != nil {
			log.Error("[REGISTRY] Error reversing payee share after failed deposit: ", reverseErr)
		}
		return fmt.Errorf("registry: funding deposit failed: %w", err)
	}
	if err := r.token.Mint(r.address, investor, amount); err != nil {
		return fmt.Errorf("registry: claim mint failed: %w", err)
	}

	r.emit(models.Event{
		Type:      models.EventBatchFunded,
		BatchId:   batchId,
		Investor:  investor.Hex(),
		Asset:     asset.Hex(),
		Amount:    amount.String(),
		CreatedAt: r.now(),
	})
	return nil
}

// FundBatchNative funds a native-denominated batch with attached value. The
// cumulative cap nativeSold + value <= totalAmount is enforced, and the
// running total is committed before the funds are forwarded so a re-entrant
// callback cannot over-fund the batch.
func (r *Registry) FundBatchNative(investor common.Address, batchId string, value *big.Int) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if value == nil || value.Sign() <= 0 {
		return ErrInvalidAmount
	}

	r.mu.Lock()
	batch, ok := r.batches[batchId]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	if !batch.Issued {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotIssued, batchId)
	}
	if common.HexToAddress(batch.SettlementAsset) != bank.Native {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAssetSettlement, batchId)
	}
	payee := common.HexToAddress(batch.Payee)

	sold := parseAmount(batch.NativeSold)
	total := parseAmount(batch.TotalAmount)
	newSold := new(big.Int).Add(sold, value)
	if newSold.Cmp(total) > 0 {
		r.mu.Unlock()
		return fmt.Errorf("%w: sold %s + %s > total %s", ErrFundingCapExceeded, sold.String(), value.String(), total.String())
	}
	batch.NativeSold = newSold.String()
	r.persistBatch(*batch)
	r.mu.Unlock()

	if err := r.bank.Transfer(bank.Native, investor, payee, value); err != nil {
		r.mu.Lock()
		batch.NativeSold = sold.String()
		r.persistBatch(*batch)
		r.mu.Unlock()
		return fmt.Errorf("registry: native funding transfer failed: %w", err)
	}
	if err := r.token.Mint(r.address, investor, value); err != nil {
		return fmt.Errorf("registry: claim mint failed: %w", err)
	}

	r.emit(models.Event{
		Type:       models.EventBatchFunded,
		BatchId:    batchId,
		Investor:   investor.Hex(),
		Asset:      bank.Native.Hex(),
		Amount:     value.String(),
		NativeSold: newSold.String(),
		CreatedAt:  r.now(),
	})
	return nil
}
