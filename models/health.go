package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionHealthChecks = "healthchecks"
)

type Health struct {
	Id                *primitive.ObjectID `bson:"_id,omitempty"`
	RegistryAddress   string              `bson:"registry_address"`
	AuthorizerAddress string              `bson:"authorizer_address"`
	Hostname          string              `bson:"hostname"`
	Paused            bool                `bson:"paused"`
	CreatedAt         time.Time           `bson:"created_at"`
}
