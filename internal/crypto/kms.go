// Package crypto encrypts sensitive payment fields before they are stored.
package crypto

import (
	"context"
	"encoding/base64"

	gcpkms "cloud.google.com/go/kms/apiv1"
	"cloud.google.com/go/kms/apiv1/kmspb"

	"github.com/GregMSThompson/patient-payments/internal/errs"
)

// Cipher encrypts and decrypts single field values. Empty values pass through
// unchanged.
type Cipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}

type kms struct {
	client  *gcpkms.KeyManagementClient
	keyName string
}

func NewKMS(client *gcpkms.KeyManagementClient, keyName string) *kms {
	return &kms{client: client, keyName: keyName}
}

// Encrypt encrypts plaintext using the configured KMS key name and returns base64 text.
func (k *kms) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	resp, err := k.client.Encrypt(ctx, &kmspb.EncryptRequest{
		Name:      k.keyName,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to encrypt field", err)
	}
	return base64.StdEncoding.EncodeToString(resp.Ciphertext), nil
}

// Decrypt decrypts base64 ciphertext using the configured KMS key name.
func (k *kms) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if ciphertext == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errs.NewEncryptionError("stored field is not valid ciphertext", err)
	}
	resp, err := k.client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       k.keyName,
		Ciphertext: raw,
	})
	if err != nil {
		return "", errs.NewEncryptionError("failed to decrypt field", err)
	}
	return string(resp.Plaintext), nil
}

type plaintext struct{}

// NewPlaintext returns a Cipher that stores values as given. Used when no
// KMS key is configured and in tests.
func NewPlaintext() Cipher { return plaintext{} }

func (plaintext) Encrypt(_ context.Context, s string) (string, error) { return s, nil }
func (plaintext) Decrypt(_ context.Context, s string) (string, error) { return s, nil }
