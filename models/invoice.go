package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionInvoices = "invoices"
)

type InvoiceRecord struct {
	Id            *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	InvoiceNumber string              `bson:"invoice_number" json:"invoice_number"`
	Payee         string              `bson:"payee" json:"payee"`
	Payer         string              `bson:"payer" json:"payer"`
	Amount        string              `bson:"amount" json:"amount"`
	DocumentRefs  []string            `bson:"document_refs" json:"document_refs"`
	RegisteredAt  time.Time           `bson:"registered_at" json:"registered_at"`
	DueDate       time.Time           `bson:"due_date" json:"due_date"`
	Cleared       bool                `bson:"cleared" json:"cleared"`
	Valid         bool                `bson:"valid" json:"valid"`
	Sequence      int64               `bson:"sequence" json:"sequence"` // global registration order
}
