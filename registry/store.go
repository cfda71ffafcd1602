package registry

import (
	"sync"

	"github.com/factorline/receivables-registry/models"
)

// Store mirrors the in-memory ledger for durability. The in-memory state
// stays authoritative; a store failure is logged, not surfaced to the
// caller.
type Store interface {
	SaveInvoice(record models.InvoiceRecord) error
	SaveBatch(batch models.InvoiceBatch) error
}

// MemoryStore keeps the last persisted copy of each record. Test and
// single-process use.
type MemoryStore struct {
	mu       sync.Mutex
	invoices map[string]models.InvoiceRecord
	batches  map[string]models.InvoiceBatch
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		invoices: make(map[string]models.InvoiceRecord),
		batches:  make(map[string]models.InvoiceBatch),
	}
}

func (s *MemoryStore) SaveInvoice(record models.InvoiceRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoices[record.InvoiceNumber] = record
	return nil
}

func (s *MemoryStore) SaveBatch(batch models.InvoiceBatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[batch.BatchId] = batch
	return nil
}

func (s *MemoryStore) Invoice(invoiceNumber string) (models.InvoiceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.invoices[invoiceNumber]
	return record, ok
}

func (s *MemoryStore) Batch(batchId string) (models.InvoiceBatch, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch, ok := s.batches[batchId]
	return batch, ok
}
