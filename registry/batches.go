package registry

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/models"
)

// CreateBatch packages invoices into a single funding unit. TotalAmount is
// the sum of the member amounts at this instant; invalidating a member later
// never changes it.
func (r *Registry) CreateBatch(caller common.Address, batchId string, invoiceNumbers []string, settlementAsset common.Address, minTerm int64, maxTerm int64, interestRate int64) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.batches[batchId]; ok {
		return fmt.Errorf("%w: %s", ErrBatchExists, batchId)
	}
	if minTerm <= 0 || maxTerm <= 0 || minTerm > maxTerm {
		return fmt.Errorf("%w: min %d, max %d", ErrInvalidTerms, minTerm, maxTerm)
	}
	if interestRate <= 0 {
		return ErrInvalidRate
	}
	if len(invoiceNumbers) == 0 {
		return ErrNoInvoices
	}

	var payee, payer string
	total := new(big.Int)
	for i, number := range invoiceNumbers {
		record, ok := r.invoices[number]
		if !ok || !record.Valid {
			return fmt.Errorf("%w: %s", ErrInvoiceNotFound, number)
		}
		if i == 0 {
			payee = record.Payee
			payer = record.Payer
		} else if record.Payee != payee || record.Payer != payer {
			return fmt.Errorf("%w: %s", ErrMixedParties, number)
		}
		total.Add(total, parseAmount(record.Amount))
	}

	now := r.now()
	batch := &models.InvoiceBatch{
		BatchId:         batchId,
		Payee:           payee,
		Payer:           payer,
		SettlementAsset: settlementAsset.Hex(),
		MinTerm:         minTerm,
		MaxTerm:         maxTerm,
		InterestRate:    interestRate,
		TotalAmount:     total.String(),
		IssueDate:       now,
		Packaged:        true,
		Issued:          false,
		InvoiceNumbers:  append([]string{}, invoiceNumbers...),
		NativeSold:      "0",
		Sequence:        r.sequence,
	}
	r.sequence++

	r.batches[batchId] = batch
	payeeAddr := common.HexToAddress(payee)
	r.payeeBatches[payeeAddr] = append(r.payeeBatches[payeeAddr], batchId)

	r.persistBatch(*batch)
	r.emit(models.Event{
		Type:           models.EventBatchCreated,
		BatchId:        batchId,
		Payee:          payee,
		Payer:          payer,
		Asset:          batch.SettlementAsset,
		TotalAmount:    batch.TotalAmount,
		InvoiceNumbers: batch.InvoiceNumbers,
		MinTerm:        minTerm,
		MaxTerm:        maxTerm,
		InterestRate:   interestRate,
		Issued:         false,
		CreatedAt:      now,
	})
	return nil
}

// ConfirmIssuance is the debtor's consent gate: only the batch payer may
// flip it, and nothing can be funded or repaid before it flips.
func (r *Registry) ConfirmIssuance(caller common.Address, batchId string) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	r.mu.Lock()
	defer r.mu.Unlock()

	batch, ok := r.batches[batchId]
	if !ok {
		return fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	if caller != common.HexToAddress(batch.Payer) {
		return ErrNotPayer
	}
	if batch.Issued {
		return fmt.Errorf("%w: %s", ErrAlreadyIssued, batchId)
	}
	batch.Issued = true

	r.persistBatch(*batch)
	r.emit(models.Event{
		Type:      models.EventBatchIssued,
		BatchId:   batchId,
		Payer:     batch.Payer,
		Issued:    true,
		CreatedAt: r.now(),
	})
	return nil
}

func (r *Registry) GetBatch(batchId string) (models.InvoiceBatch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[batchId]
	if !ok {
		return models.InvoiceBatch{}, fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	return *batch, nil
}

// NativeSold reports the cumulative native funding taken by the batch.
func (r *Registry) NativeSold(batchId string) (*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	batch, ok := r.batches[batchId]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBatchNotFound, batchId)
	}
	return parseAmount(batch.NativeSold), nil
}

// ListBatchesForParty returns the batches packaged for a payee, in creation
// order.
func (r *Registry) ListBatchesForParty(party common.Address) []models.InvoiceBatch {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.payeeBatches[party]
	batches := make([]models.InvoiceBatch, 0, len(ids))
	for _, id := range ids {
		if batch, ok := r.batches[id]; ok {
			batches = append(batches, *batch)
		}
	}
	return batches
}
