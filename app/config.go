package app

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/models"
	"gopkg.in/yaml.v2"
)

var (
	Config models.Config
)

func InitConfig(configFile string, envFile string) {
	readConfigFromConfigFile(configFile)
	readConfigFromENV(envFile)
	readSecretsFromGSM()
	validateConfig()
}

func readConfigFromConfigFile(configFile string) bool {
	if configFile == "" {
		return false
	}
	var yamlFile, err = os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &Config)
	if err != nil {
		log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
	}
	return true
}

func validateConfig() {
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}
	if Config.MongoDB.TimeoutMillis == 0 {
		log.Fatal("[CONFIG] MongoDB.TimeoutMillis is required")
	}
	if Config.HealthCheck.IntervalMillis == 0 {
		log.Fatal("[CONFIG] HealthCheck.IntervalMillis is required")
	}
	if Config.Registry.Address == "" {
		log.Fatal("[CONFIG] Registry.Address is required")
	}
	if Config.Registry.Admin == "" {
		log.Fatal("[CONFIG] Registry.Admin is required")
	}
	if Config.Registry.VaultAddress == "" {
		log.Fatal("[CONFIG] Registry.VaultAddress is required")
	}
	if Config.Registry.TokenAddress == "" {
		log.Fatal("[CONFIG] Registry.TokenAddress is required")
	}
	if Config.Registry.ChainId == 0 {
		log.Fatal("[CONFIG] Registry.ChainId is required")
	}
	if Config.Registry.Mnemonic == "" && Config.Registry.GcpKmsKeyName == "" {
		log.Fatal("[CONFIG] One of Registry.Mnemonic and Registry.GcpKmsKeyName is required")
	}
	log.Info("[CONFIG] Config validated")
}
