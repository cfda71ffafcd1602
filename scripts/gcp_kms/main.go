package main

import (
	"fmt"
	"log"
	"os"

	"github.com/factorline/receivables-registry/common"
)

// Prints the address and a sample signature for a GCP KMS key, to verify
// the key is usable as the authorizer signer before wiring it into config.
func main() {
	googleKeyName := os.Getenv("GCP_KMS_KEY_NAME")

	fmt.Println("Google KMS Key Name: ", googleKeyName)
	if googleKeyName == "" {
		log.Fatalf("GCP KMS Key Name not set")
	}

	signer, err := common.NewGcpKmsSigner(googleKeyName)
	if err != nil {
		log.Fatalf("failed to create GCP KMS signer: %v", err)
	}
	defer signer.Destroy()

	fmt.Println("Eth Address: ", signer.EthAddress())

	txData := []byte("example transaction data")

	ethSignature, err := signer.EthSign(txData)
	if err != nil {
		log.Fatalf("failed to sign digest: %v", err)
	}
	fmt.Printf("Signature: %x\n", ethSignature)
}
