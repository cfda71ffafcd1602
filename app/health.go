package app

import (
	"os"
	"time"

	"github.com/factorline/receivables-registry/models"
	log "github.com/sirupsen/logrus"
)

type HealthService struct {
	stop              chan bool
	registryAddress   string
	authorizerAddress string
	hostname          string
	paused            func() bool
	interval          time.Duration
}

func (b *HealthService) Stop() {
	log.Debug("[HEALTH] Stopping health")
	b.stop <- true
}

func (b *HealthService) PostHealth() bool {
	log.Debug("[HEALTH] Posting health")
	health := models.Health{
		RegistryAddress:   b.registryAddress,
		AuthorizerAddress: b.authorizerAddress,
		Hostname:          b.hostname,
		Paused:            b.paused(),
		CreatedAt:         time.Now(),
	}

	err := DB.UpsertOne(
		models.CollectionHealthChecks,
		map[string]interface{}{"registry_address": b.registryAddress, "hostname": b.hostname},
		map[string]interface{}{"$set": health},
	)

	if err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}
	return true
}

func (b *HealthService) Start() {
	log.Debug("[HEALTH] Starting health")
	stop := false
	for !stop {
		log.Debug("[HEALTH] Starting health sync")

		b.PostHealth()

		log.Debug("[HEALTH] Finished health sync")
		log.Debug("[HEALTH] Sleeping for ", b.interval)

		select {
		case <-b.stop:
			stop = true
			log.Debug("[HEALTH] Stopped health")
		case <-time.After(b.interval):
		}
	}
}

func NewHealthCheck(registryAddress string, authorizerAddress string, paused func() bool) models.Service {
	log.Debug("[HEALTH] Initializing health")

	hostname, err := os.Hostname()
	if err != nil {
		log.Warn("[HEALTH] Error getting hostname: ", err)
		hostname = "unknown"
	}

	b := &HealthService{
		stop:              make(chan bool),
		interval:          time.Duration(Config.HealthCheck.IntervalMillis) * time.Millisecond,
		registryAddress:   registryAddress,
		authorizerAddress: authorizerAddress,
		hostname:          hostname,
		paused:            paused,
	}

	log.Debug("[HEALTH] Initialized health")

	return b
}
