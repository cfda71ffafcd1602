package app

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	log "github.com/sirupsen/logrus"
)

func accessSecretVersion(client *secretmanager.Client, name string) (string, error) {
	req := &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", Config.GoogleSecretManager.ProjectId, name),
	}

	result, err := client.AccessSecretVersion(context.Background(), req)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(result.Payload.Data)), nil
}

func readSecretsFromGSM() {
	if Config.GoogleSecretManager.Enabled == false {
		log.Debug("[GSM] Google Secret Manager is disabled")
		return
	}

	if Config.GoogleSecretManager.ProjectId == "" {
		log.Fatalf("[GSM] ProjectId is empty")
	}

	ctx := context.Background()
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		log.Fatalf("[GSM] Failed to create secretmanager client: %v", err)
	}
	defer client.Close()

	if Config.MongoDB.URI == "" {
		if Config.GoogleSecretManager.MongoSecretName == "" {
			log.Fatalf("[GSM] Mongo secret name is empty")
		}

		log.Debug("[GSM] Reading mongo uri")
		Config.MongoDB.URI, err = accessSecretVersion(client, Config.GoogleSecretManager.MongoSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access mongo uri: %v", err)
		}
		log.Info("[GSM] Successfully read mongo uri")
	}

	if Config.Registry.Mnemonic == "" && Config.Registry.GcpKmsKeyName == "" {
		if Config.GoogleSecretManager.MnemonicSecretName == "" {
			log.Fatalf("[GSM] Mnemonic secret name is empty")
		}

		log.Debug("[GSM] Reading authorizer mnemonic")
		Config.Registry.Mnemonic, err = accessSecretVersion(client, Config.GoogleSecretManager.MnemonicSecretName)
		if err != nil {
			log.Fatalf("[GSM] Failed to access authorizer mnemonic: %v", err)
		}
		log.Info("[GSM] Successfully read authorizer mnemonic")
	}
}
