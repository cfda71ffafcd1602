package registry

import (
	"fmt"
	"math/big"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/models"
)

type InvoiceInput struct {
	InvoiceNumber string
	Payee         common.Address
	Payer         common.Address
	Amount        *big.Int
	DocumentRefs  []string
	DueDate       time.Time
}

// RegisterInvoices registers the whole input set or none of it: any single
// invalid record fails the call before anything is committed.
func (r *Registry) RegisterInvoices(caller common.Address, inputs []InvoiceInput) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool)
	for _, input := range inputs {
		if input.InvoiceNumber == "" {
			return ErrEmptyInvoiceNumber
		}
		if seen[input.InvoiceNumber] {
			return fmt.Errorf("%w: %s", ErrInvoiceExists, input.InvoiceNumber)
		}
		seen[input.InvoiceNumber] = true
		if existing, ok := r.invoices[input.InvoiceNumber]; ok && existing.Valid {
			return fmt.Errorf("%w: %s", ErrInvoiceExists, input.InvoiceNumber)
		}
		if input.Amount == nil || input.Amount.Sign() <= 0 {
			return fmt.Errorf("%w: %s", ErrInvalidAmount, input.InvoiceNumber)
		}
		if !input.DueDate.After(now) {
			return fmt.Errorf("%w: %s", ErrInvalidDueDate, input.InvoiceNumber)
		}
	}

	for _, input := range inputs {
		record := &models.InvoiceRecord{
			InvoiceNumber: input.InvoiceNumber,
			Payee:         input.Payee.Hex(),
			Payer:         input.Payer.Hex(),
			Amount:        input.Amount.String(),
			DocumentRefs:  input.DocumentRefs,
			RegisteredAt:  now,
			DueDate:       input.DueDate,
			Cleared:       false,
			Valid:         true,
			Sequence:      r.sequence,
		}
		r.sequence++

		// a number re-registered over a tombstone keeps its global-order
		// slot, but the party indices must follow the new record
		old, replacing := r.invoices[record.InvoiceNumber]
		r.invoices[record.InvoiceNumber] = record
		if !replacing {
			r.invoiceOrder = append(r.invoiceOrder, record.InvoiceNumber)
			r.payeeInvoices[input.Payee] = append(r.payeeInvoices[input.Payee], record.InvoiceNumber)
			r.payerInvoices[input.Payer] = append(r.payerInvoices[input.Payer], record.InvoiceNumber)
		} else {
			if old.Payee != record.Payee {
				oldPayee := common.HexToAddress(old.Payee)
				r.payeeInvoices[oldPayee] = removeNumber(r.payeeInvoices[oldPayee], record.InvoiceNumber)
				r.payeeInvoices[input.Payee] = append(r.payeeInvoices[input.Payee], record.InvoiceNumber)
			}
			if old.Payer != record.Payer {
				oldPayer := common.HexToAddress(old.Payer)
				r.payerInvoices[oldPayer] = removeNumber(r.payerInvoices[oldPayer], record.InvoiceNumber)
				r.payerInvoices[input.Payer] = append(r.payerInvoices[input.Payer], record.InvoiceNumber)
			}
		}

		r.persistInvoice(*record)
		r.emit(models.Event{
			Type:          models.EventInvoiceRegistered,
			InvoiceNumber: record.InvoiceNumber,
			Payee:         record.Payee,
			Payer:         record.Payer,
			Amount:        record.Amount,
			DocumentRefs:  record.DocumentRefs,
			DueDate:       record.DueDate,
			Valid:         true,
			CreatedAt:     now,
		})
	}
	return nil
}

// Invalidate tombstones an invoice. The record stays in every index; only
// its validity flips.
func (r *Registry) Invalidate(caller common.Address, invoiceNumber string) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()

	if caller != r.admin {
		return ErrNotAdmin
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	record, ok := r.invoices[invoiceNumber]
	if !ok || !record.Valid {
		return fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceNumber)
	}
	record.Valid = false

	r.persistInvoice(*record)
	r.emit(models.Event{
		Type:          models.EventInvoiceInvalidated,
		InvoiceNumber: record.InvoiceNumber,
		Valid:         false,
		CreatedAt:     r.now(),
	})
	return nil
}

// GetInvoice returns the stored record. With enforceValid set it fails with
// not-found for absent or invalidated invoices; with it unset an absent
// invoice comes back as a zero-valued record, letting callers tell "exists
// but invalid" apart from "never existed".
func (r *Registry) GetInvoice(invoiceNumber string, enforceValid bool) (models.InvoiceRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.invoices[invoiceNumber]
	if enforceValid && (!ok || !record.Valid) {
		return models.InvoiceRecord{}, fmt.Errorf("%w: %s", ErrInvoiceNotFound, invoiceNumber)
	}
	if !ok {
		return models.InvoiceRecord{}, nil
	}
	return *record, nil
}

// ListInvoicesForParty returns every invoice in which the party appears as
// payee or payer, in registration order. An invoice naming the party on both
// sides appears once.
func (r *Registry) ListInvoicesForParty(party common.Address) []models.InvoiceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	records := make([]models.InvoiceRecord, 0, len(r.payeeInvoices[party])+len(r.payerInvoices[party]))
	for _, numbers := range [][]string{r.payeeInvoices[party], r.payerInvoices[party]} {
		for _, number := range numbers {
			if seen[number] {
				continue
			}
			seen[number] = true
			if record, ok := r.invoices[number]; ok {
				records = append(records, *record)
			}
		}
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Sequence < records[j].Sequence
	})
	return records
}

func removeNumber(numbers []string, number string) []string {
	out := numbers[:0]
	for _, n := range numbers {
		if n != number {
			out = append(out, n)
		}
	}
	return out
}
