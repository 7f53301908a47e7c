package firebaseclient

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/patient-payments/internal/dto"
)

const provider = "firebase"

type Verifier struct {
	client *auth.Client
}

func NewVerifier(client *auth.Client) *Verifier {
	return &Verifier{client: client}
}

func (v *Verifier) Verify(ctx context.Context, token string) (dto.Identity, error) {
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return dto.Identity{}, err
	}
	return identityFromClaims(tok.UID, tok.Claims), nil
}

func identityFromClaims(uid string, claims map[string]any) dto.Identity {
	id := dto.Identity{UID: uid, Provider: provider}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.DisplayName = name
	}
	return id
}
