package store

import (
	"context"
	"fmt"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/GregMSThompson/patient-payments/internal/errs"
)

// Secrets path
// projects/{project}/secrets/{name}/versions/latest

type secretsStore struct {
	client    *secretmanager.Client
	projectID string
}

func NewSecretsStore(client *secretmanager.Client, projectID string) *secretsStore {
	return &secretsStore{
		client:    client,
		projectID: projectID,
	}
}

// secretName accepts either a bare secret id or a full resource name.
func (s *secretsStore) secretName(name string) string {
	if strings.HasPrefix(name, "projects/") {
		return name
	}
	return fmt.Sprintf("projects/%s/secrets/%s", s.projectID, name)
}

// Latest returns the payload of the newest enabled version of a secret.
func (s *secretsStore) Latest(ctx context.Context, name string) (string, error) {
	res, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("%s/versions/latest", s.secretName(name)),
	})
	if status.Code(err) == codes.NotFound {
		return "", errs.NewNotFoundError("secret not found: " + name)
	}
	if err != nil {
		return "", errs.NewExternalServiceError("secretmanager", "failed to access secret", true, err)
	}
	return strings.TrimSpace(string(res.Payload.Data)), nil
}
