package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionBatches = "batches"
)

type InvoiceBatch struct {
	Id              *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	BatchId         string              `bson:"batch_id" json:"batch_id"`
	Payee           string              `bson:"payee" json:"payee"`
	Payer           string              `bson:"payer" json:"payer"`
	SettlementAsset string              `bson:"settlement_asset" json:"settlement_asset"`
	MinTerm         int64               `bson:"min_term" json:"min_term"`
	MaxTerm         int64               `bson:"max_term" json:"max_term"`
	InterestRate    int64               `bson:"interest_rate" json:"interest_rate"` // basis points
	TotalAmount     string              `bson:"total_amount" json:"total_amount"`
	IssueDate       time.Time           `bson:"issue_date" json:"issue_date"`
	Packaged        bool                `bson:"packaged" json:"packaged"`
	Issued          bool                `bson:"issued" json:"issued"`
	InvoiceNumbers  []string            `bson:"invoice_numbers" json:"invoice_numbers"`
	NativeSold      string              `bson:"native_sold" json:"native_sold"`
	Sequence        int64               `bson:"sequence" json:"sequence"`
}
