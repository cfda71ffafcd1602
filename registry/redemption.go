package registry

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/models"
	"github.com/factorline/receivables-registry/token"
)

// RedeemDirect burns the caller's claim tokens and releases the matching
// amount of asset from custody to the caller.
func (r *Registry) RedeemDirect(caller common.Address, asset common.Address, amount *big.Int) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if caller == (common.Address{}) {
		return ErrNullCaller
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	if err := r.token.Burn(r.address, caller, amount); err != nil {
		return fmt.Errorf("registry: claim burn failed: %w", err)
	}
	if err := r.vault.Withdraw(r.address, asset, caller, amount); err != nil {
		r.restoreClaim(caller, amount)
		return fmt.Errorf("registry: redemption withdrawal failed: %w", err)
	}

	r.emitRedemption(caller, asset, amount)
	return nil
}

// RedeemWithAuthorization redeems on behalf of owner against a signed,
// replay-protected, time-bounded authorization. Whoever submits the call,
// the custody funds go to the owner, so a relayer can carry the submission
// cost. A consumed authorization cannot be replayed: verification is bound
// to the owner's current nonce, which increments on success.
func (r *Registry) RedeemWithAuthorization(submitter common.Address, owner common.Address, asset common.Address, amount *big.Int, nonce *big.Int, deadline time.Time, signature []byte) error {
	if err := r.enterActive(); err != nil {
		return err
	}
	defer r.exit()

	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	auth := token.Authorization{
		Owner:    owner,
		Spender:  r.address,
		Amount:   amount,
		Nonce:    nonce,
		Deadline: deadline,
	}
	if err := r.token.Permit(auth, signature); err != nil {
		return fmt.Errorf("registry: authorization rejected: %w", err)
	}
	if err := r.token.BurnFrom(r.address, owner, amount); err != nil {
		if cancelErr := r.token.CancelAllowance(r.address, owner); cancelErr != nil {
			log.Error("[REGISTRY] Error cancelling allowance for ", owner.Hex(), ": ", cancelErr)
		}
		return fmt.Errorf("registry: claim burn failed: %w", err)
	}
	if err := r.vault.Withdraw(r.address, asset, owner, amount); err != nil {
		// the nonce stays consumed; the owner must sign a fresh
		// authorization after the tokens are restored
		r.restoreClaim(owner, amount)
		return fmt.Errorf("registry: redemption withdrawal failed: %w", err)
	}

	r.emitRedemption(owner, asset, amount)
	return nil
}

func (r *Registry) restoreClaim(owner common.Address, amount *big.Int) {
	if err := r.token.Mint(r.address, owner, amount); err != nil {
		log.Error("[REGISTRY] Error restoring claim for ", owner.Hex(), ": ", err)
	}
}

func (r *Registry) emitRedemption(investor common.Address, asset common.Address, amount *big.Int) {
	r.emit(models.Event{
		Type:      models.EventRedemption,
		Investor:  investor.Hex(),
		Asset:     asset.Hex(),
		Amount:    amount.String(),
		CreatedAt: r.now(),
	})
}
