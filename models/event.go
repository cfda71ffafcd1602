package models

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionEvents = "events"
)

// types of registry events
const (
	EventInvoiceRegistered   = "invoice_registered"
	EventInvoiceInvalidated  = "invoice_invalidated"
	EventBatchCreated        = "batch_created"
	EventBatchIssued         = "batch_issued"
	EventBatchFunded         = "batch_funded"
	EventRepayment           = "repayment"
	EventRedemption          = "redemption"
	EventClaimMinted         = "claim_minted"
	EventClaimBurned         = "claim_burned"
	EventVaultDepositNative  = "vault_deposit_native"
	EventVaultDepositAsset   = "vault_deposit_asset"
	EventVaultWithdrawNative = "vault_withdraw_native"
	EventVaultWithdrawAsset  = "vault_withdraw_asset"
	EventPaused              = "paused"
	EventUnpaused            = "unpaused"
)

// Event carries the entity key and the post-transition fields of a single
// state transition. The full registry, batch and funding state can be
// rebuilt from the ordered event log alone.
type Event struct {
	Id             *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Type           string              `bson:"type" json:"type"`
	InvoiceNumber  string              `bson:"invoice_number,omitempty" json:"invoice_number,omitempty"`
	BatchId        string              `bson:"batch_id,omitempty" json:"batch_id,omitempty"`
	Payee          string              `bson:"payee,omitempty" json:"payee,omitempty"`
	Payer          string              `bson:"payer,omitempty" json:"payer,omitempty"`
	Investor       string              `bson:"investor,omitempty" json:"investor,omitempty"`
	Recipient      string              `bson:"recipient,omitempty" json:"recipient,omitempty"`
	Asset          string              `bson:"asset,omitempty" json:"asset,omitempty"`
	Amount         string              `bson:"amount,omitempty" json:"amount,omitempty"`
	TotalAmount    string              `bson:"total_amount,omitempty" json:"total_amount,omitempty"`
	NativeSold     string              `bson:"native_sold,omitempty" json:"native_sold,omitempty"`
	InvoiceNumbers []string            `bson:"invoice_numbers,omitempty" json:"invoice_numbers,omitempty"`
	DocumentRefs   []string            `bson:"document_refs,omitempty" json:"document_refs,omitempty"`
	MinTerm        int64               `bson:"min_term,omitempty" json:"min_term,omitempty"`
	MaxTerm        int64               `bson:"max_term,omitempty" json:"max_term,omitempty"`
	InterestRate   int64               `bson:"interest_rate,omitempty" json:"interest_rate,omitempty"`
	DueDate        time.Time           `bson:"due_date,omitempty" json:"due_date,omitempty"`
	Valid          bool                `bson:"valid" json:"valid"`
	Issued         bool                `bson:"issued" json:"issued"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
}

type EventSink interface {
	Emit(event Event)
}

// MemoryEventSink buffers events in order; used in tests and as a default
// sink when no database is configured.
type MemoryEventSink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryEventSink() *MemoryEventSink {
	return &MemoryEventSink{}
}

func (s *MemoryEventSink) Emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *MemoryEventSink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *MemoryEventSink) OfType(eventType string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
