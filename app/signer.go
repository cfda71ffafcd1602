package app

import (
	"fmt"

	ethcommon "github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"

	"github.com/factorline/receivables-registry/common"
)

// CreateAuthorizerSigner builds the signer used for delegated redemption
// authorizations, backed by either a BIP-39 mnemonic or a GCP KMS key.
func CreateAuthorizerSigner() (common.Signer, error) {
	config := Config.Registry
	if config.Mnemonic == "" && config.GcpKmsKeyName == "" {
		return nil, fmt.Errorf("both Mnemonic and GcpKmsKeyName are empty")
	}
	if config.Mnemonic != "" {
		return common.NewMnemonicSigner(config.Mnemonic)
	}

	return common.NewGcpKmsSigner(config.GcpKmsKeyName)
}

// GetAuthorizerAddress resolves the signer's address and logs it. The
// signer is destroyed before returning; delegated flows only need the
// address for signature verification.
func GetAuthorizerAddress() (ethcommon.Address, error) {
	signer, err := CreateAuthorizerSigner()
	if err != nil {
		return ethcommon.Address{}, fmt.Errorf("error initializing authorizer signer: %w", err)
	}
	defer signer.Destroy()

	address := signer.EthAddress()
	log.Debugf("[SIGNER] Authorizer address: %s", address.Hex())

	return address, nil
}
