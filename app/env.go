package app

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	if os.Getenv("MONGODB_URI") != "" {
		Config.MongoDB.URI = os.Getenv("MONGODB_URI")
	}
	if os.Getenv("MONGODB_DATABASE") != "" {
		Config.MongoDB.Database = os.Getenv("MONGODB_DATABASE")
	}
	if os.Getenv("MONGODB_TIMEOUT_MS") != "" {
		timeoutMillis, err := strconv.ParseInt(os.Getenv("MONGODB_TIMEOUT_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing MONGODB_TIMEOUT_MS: ", err.Error())
		} else {
			Config.MongoDB.TimeoutMillis = timeoutMillis
		}
	}

	// registry
	if os.Getenv("REGISTRY_ADDRESS") != "" {
		Config.Registry.Address = os.Getenv("REGISTRY_ADDRESS")
	}
	if os.Getenv("REGISTRY_ADMIN") != "" {
		Config.Registry.Admin = os.Getenv("REGISTRY_ADMIN")
	}
	if os.Getenv("REGISTRY_VAULT_ADDRESS") != "" {
		Config.Registry.VaultAddress = os.Getenv("REGISTRY_VAULT_ADDRESS")
	}
	if os.Getenv("REGISTRY_TOKEN_ADDRESS") != "" {
		Config.Registry.TokenAddress = os.Getenv("REGISTRY_TOKEN_ADDRESS")
	}
	if os.Getenv("REGISTRY_CHAIN_ID") != "" {
		chainId, err := strconv.ParseInt(os.Getenv("REGISTRY_CHAIN_ID"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing REGISTRY_CHAIN_ID: ", err.Error())
		} else {
			Config.Registry.ChainId = chainId
		}
	}
	if os.Getenv("REGISTRY_MNEMONIC") != "" {
		Config.Registry.Mnemonic = os.Getenv("REGISTRY_MNEMONIC")
	}
	if os.Getenv("REGISTRY_GCP_KMS_KEY_NAME") != "" {
		Config.Registry.GcpKmsKeyName = os.Getenv("REGISTRY_GCP_KMS_KEY_NAME")
	}

	// health check
	if Config.HealthCheck.IntervalMillis == 0 {
		intervalMillis, err := strconv.ParseInt(os.Getenv("HEALTH_CHECK_INTERVAL_MS"), 10, 64)
		if err != nil {
			log.Warn("[ENV] Error parsing HEALTH_CHECK_INTERVAL_MS: ", err.Error())
		} else {
			Config.HealthCheck.IntervalMillis = intervalMillis
		}
	}

	// logging
	if Config.Logger.Level == "" {
		logLevel := os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			log.Warn("[ENV] Setting LogLevel to info")
			Config.Logger.Level = "info"
		} else {
			Config.Logger.Level = logLevel
		}
	}

	// google secret manager
	if Config.GoogleSecretManager.Enabled == false {
		enabled, err := strconv.ParseBool(os.Getenv("GOOGLE_SECRET_MANAGER_ENABLED"))
		if err == nil {
			Config.GoogleSecretManager.Enabled = enabled
		}
	}
	if Config.GoogleSecretManager.ProjectId == "" {
		Config.GoogleSecretManager.ProjectId = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if Config.GoogleSecretManager.MongoSecretName == "" {
		Config.GoogleSecretManager.MongoSecretName = os.Getenv("GOOGLE_MONGO_SECRET_NAME")
	}
	if Config.GoogleSecretManager.MnemonicSecretName == "" {
		Config.GoogleSecretManager.MnemonicSecretName = os.Getenv("GOOGLE_MNEMONIC_SECRET_NAME")
	}
}
