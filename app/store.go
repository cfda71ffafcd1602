package app

import (
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/factorline/receivables-registry/models"
)

// mongoStore mirrors registry state into mongo. Writes are keyed on the
// natural identifiers so repeated saves of the same record upsert in
// place.
type mongoStore struct{}

func NewMongoStore() *mongoStore {
	return &mongoStore{}
}

func (s *mongoStore) SaveInvoice(record models.InvoiceRecord) error {
	return DB.UpsertOne(
		models.CollectionInvoices,
		bson.M{"invoice_number": record.InvoiceNumber},
		bson.M{"$set": record},
	)
}

func (s *mongoStore) SaveBatch(batch models.InvoiceBatch) error {
	return DB.UpsertOne(
		models.CollectionBatches,
		bson.M{"batch_id": batch.BatchId},
		bson.M{"$set": batch},
	)
}

// MongoEventSink appends lifecycle events to the events collection.
type MongoEventSink struct{}

func NewMongoEventSink() *MongoEventSink {
	return &MongoEventSink{}
}

func (s *MongoEventSink) Emit(event models.Event) {
	err := DB.InsertOne(models.CollectionEvents, event)
	if err != nil {
		log.Error("[EVENTS] Error persisting event: ", err)
	}
}

// LoadState reads all persisted invoices and batches for a boot-time
// restore. Callers hold an exclusive lock across load and restore so two
// instances cannot interleave.
func LoadState() ([]models.InvoiceRecord, []models.InvoiceBatch, error) {
	var invoices []models.InvoiceRecord
	err := DB.FindMany(models.CollectionInvoices, bson.M{}, &invoices)
	if err != nil {
		return nil, nil, err
	}

	var batches []models.InvoiceBatch
	err = DB.FindMany(models.CollectionBatches, bson.M{}, &batches)
	if err != nil {
		return nil, nil, err
	}

	log.Debugf("[STORE] Loaded %d invoices and %d batches", len(invoices), len(batches))
	return invoices, batches, nil
}
