package models

type Config struct {
	GoogleSecretManager GoogleSecretManagerConfig `yaml:"google_secret_manager" json:"google_secret_manager"`
	HealthCheck         HealthCheckConfig         `yaml:"health_check" json:"health_check"`
	Logger              LoggerConfig              `yaml:"logger" json:"logger"`
	MongoDB             MongoConfig               `yaml:"mongodb" json:"mongo_db"`
	Registry            RegistryConfig            `yaml:"registry" json:"registry"`
}

type GoogleSecretManagerConfig struct {
	Enabled            bool   `yaml:"enabled" json:"enabled"`
	ProjectId          string `yaml:"project_id" json:"project_id"`
	MongoSecretName    string `yaml:"mongo_secret_name" json:"mongo_secret_name"`
	MnemonicSecretName string `yaml:"mnemonic_secret_name" json:"mnemonic_secret_name"`
}

type HealthCheckConfig struct {
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

type RegistryConfig struct {
	// Address is the identity the registry acts under; it is the single
	// trusted caller of the vault and the single minter of claim tokens.
	Address       string `yaml:"address" json:"address"`
	Admin         string `yaml:"admin" json:"admin"`
	VaultAddress  string `yaml:"vault_address" json:"vault_address"`
	TokenAddress  string `yaml:"token_address" json:"token_address"`
	ChainId       int64  `yaml:"chain_id" json:"chain_id"`
	Mnemonic      string `yaml:"mnemonic" json:"mnemonic"`
	GcpKmsKeyName string `yaml:"gcp_kms_key_name" json:"gcp_kms_key_name"`
}
