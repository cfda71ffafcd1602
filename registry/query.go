package registry

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/factorline/receivables-registry/models"
)

// Selector picks one query mode. Modes are evaluated in fixed priority:
// exact invoice number, then batch id, then party address (payee or payer,
// not both), then every invoice ever registered.
type Selector struct {
	InvoiceNumber string
	BatchId       string
	Payee         common.Address
	Payer         common.Address
}

// Query returns the selected invoices in order plus their count. With
// enforceValid set, invalidated invoices are dropped and the count reflects
// the filtered length.
func (r *Registry) Query(sel Selector, enforceValid bool) ([]models.InvoiceRecord, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var numbers []string
	switch {
	case sel.InvoiceNumber != "":
		if _, ok := r.invoices[sel.InvoiceNumber]; ok {
			numbers = []string{sel.InvoiceNumber}
		}
	case sel.BatchId != "":
		if batch, ok := r.batches[sel.BatchId]; ok {
			numbers = batch.InvoiceNumbers
		}
	case sel.Payee != (common.Address{}) && sel.Payer != (common.Address{}):
		return nil, 0, ErrAmbiguousSelector
	case sel.Payee != (common.Address{}):
		numbers = r.payeeInvoices[sel.Payee]
	case sel.Payer != (common.Address{}):
		numbers = r.payerInvoices[sel.Payer]
	default:
		numbers = r.invoiceOrder
	}

	records := make([]models.InvoiceRecord, 0, len(numbers))
	for _, number := range numbers {
		record, ok := r.invoices[number]
		if !ok {
			continue
		}
		if enforceValid && !record.Valid {
			continue
		}
		records = append(records, *record)
	}
	return records, len(records), nil
}
