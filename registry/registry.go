// Package registry is the receivables-tokenization core: the invoice ledger,
// the batch aggregator, the funding and redemption state machine, and the
// query engine. The registry is the single trusted caller of the vault and
// the single minter of the claim-token ledger; investor and debtor
// authorization all happens here.
package registry

import (
	"math/big"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/bank"
	"github.com/factorline/receivables-registry/models"
	"github.com/factorline/receivables-registry/token"
	"github.com/factorline/receivables-registry/vault"
)

type Config struct {
	// Address is the identity the registry acts under when calling the
	// vault and the claim-token ledger.
	Address common.Address
	// Admin may invalidate invoices and pause/unpause the system.
	Admin common.Address
}

type Registry struct {
	address common.Address
	admin   common.Address

	bank  *bank.Bank
	vault *vault.Vault
	token *token.Ledger
	store Store
	sink  models.EventSink

	// inCall is the call-depth guard: every state-mutating entry point
	// claims it for the duration of the call, so a nested attempt to
	// re-enter from within the same call chain fails immediately.
	inCall atomic.Bool

	mu       sync.RWMutex
	paused   bool
	invoices map[string]*models.InvoiceRecord
	batches  map[string]*models.InvoiceBatch
	// invoiceOrder is the global append-ordered index of every invoice
	// number ever registered; it exists to serve unfiltered list queries
	// and is read with a linear scan.
	invoiceOrder  []string
	payeeInvoices map[common.Address][]string
	payerInvoices map[common.Address][]string
	payeeBatches  map[common.Address][]string
	sequence      int64

	now func() time.Time
}

func New(cfg Config, bk *bank.Bank, vlt *vault.Vault, tok *token.Ledger, store Store, sink models.EventSink) *Registry {
	return &Registry{
		address:       cfg.Address,
		admin:         cfg.Admin,
		bank:          bk,
		vault:         vlt,
		token:         tok,
		store:         store,
		sink:          sink,
		invoices:      make(map[string]*models.InvoiceRecord),
		batches:       make(map[string]*models.InvoiceBatch),
		payeeInvoices: make(map[common.Address][]string),
		payerInvoices: make(map[common.Address][]string),
		payeeBatches:  make(map[common.Address][]string),
		now:           time.Now,
	}
}

func (r *Registry) Address() common.Address {
	return r.address
}

// enter claims the call guard. Funding, repayment and redemption entry
// points use enterActive instead so the pause gate applies to them.
func (r *Registry) enter() error {
	if !r.inCall.CompareAndSwap(false, true) {
		return ErrReentrantCall
	}
	return nil
}

func (r *Registry) enterActive() error {
	if err := r.enter(); err != nil {
		return err
	}
	r.mu.RLock()
	paused := r.paused
	r.mu.RUnlock()
	if paused {
		r.exit()
		return ErrPaused
	}
	return nil
}

func (r *Registry) exit() {
	r.inCall.Store(false)
}

// Pause rejects funding, repayment and redemption until Unpause. Queries
// and the administrative operations stay reachable.
func (r *Registry) Pause(caller common.Address) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()
	if caller != r.admin {
		return ErrNotAdmin
	}

	r.mu.Lock()
	r.paused = true
	r.mu.Unlock()

	log.Info("[REGISTRY] Paused by admin")
	r.emit(models.Event{Type: models.EventPaused, CreatedAt: r.now()})
	return nil
}

func (r *Registry) Unpause(caller common.Address) error {
	if err := r.enter(); err != nil {
		return err
	}
	defer r.exit()
	if caller != r.admin {
		return ErrNotAdmin
	}

	r.mu.Lock()
	r.paused = false
	r.mu.Unlock()

	log.Info("[REGISTRY] Unpaused by admin")
	r.emit(models.Event{Type: models.EventUnpaused, CreatedAt: r.now()})
	return nil
}

func (r *Registry) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// Restore rebuilds the in-memory ledger from persisted records, ordered by
// their registration sequence. It is meant for boot time, before the
// registry starts taking calls.
func (r *Registry) Restore(invoices []models.InvoiceRecord, batches []models.InvoiceBatch) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Sequence < invoices[j].Sequence })
	sort.Slice(batches, func(i, j int) bool { return batches[i].Sequence < batches[j].Sequence })

	for i := range invoices {
		record := invoices[i]
		r.invoices[record.InvoiceNumber] = &record
		r.invoiceOrder = append(r.invoiceOrder, record.InvoiceNumber)
		payee := common.HexToAddress(record.Payee)
		payer := common.HexToAddress(record.Payer)
		r.payeeInvoices[payee] = append(r.payeeInvoices[payee], record.InvoiceNumber)
		r.payerInvoices[payer] = append(r.payerInvoices[payer], record.InvoiceNumber)
		if record.Sequence >= r.sequence {
			r.sequence = record.Sequence + 1
		}
	}
	for i := range batches {
		batch := batches[i]
		r.batches[batch.BatchId] = &batch
		payee := common.HexToAddress(batch.Payee)
		r.payeeBatches[payee] = append(r.payeeBatches[payee], batch.BatchId)
		if batch.Sequence >= r.sequence {
			r.sequence = batch.Sequence + 1
		}
	}

	log.Infof("[REGISTRY] Restored %d invoices and %d batches", len(invoices), len(batches))
}

func (r *Registry) emit(event models.Event) {
	if r.sink != nil {
		r.sink.Emit(event)
	}
}

func (r *Registry) persistInvoice(record models.InvoiceRecord) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveInvoice(record); err != nil {
		log.Error("[REGISTRY] Error saving invoice ", record.InvoiceNumber, ": ", err)
	}
}

func (r *Registry) persistBatch(batch models.InvoiceBatch) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveBatch(batch); err != nil {
		log.Error("[REGISTRY] Error saving batch ", batch.BatchId, ": ", err)
	}
}

// parseAmount reads a stored decimal amount. Stored amounts are written by
// the registry itself, so a parse failure is a programming error.
func parseAmount(s string) *big.Int {
	if s == "" {
		return new(big.Int)
	}
	amount, ok := new(big.Int).SetString(s, 10)
	if !ok {
		log.Error("[REGISTRY] Invalid stored amount: ", s)
		return new(big.Int)
	}
	return amount
}
