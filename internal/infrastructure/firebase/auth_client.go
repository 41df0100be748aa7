package firebase

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/usecase"
	"servicemarket/pkg/errors"
	"servicemarket/pkg/logger"
)

const roleClaim = "role"

// FirebaseAuthClient keeps identities in Firebase Auth. The role travels as a
// custom claim. IssueToken returns a custom token that the client exchanges
// for an ID token through the Firebase SDK; VerifyToken expects that ID token.
type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) CreateIdentity(ctx context.Context, user *entity.User, password string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(user.Email).
		Password(password).
		DisplayName(user.Name)

	record, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("Email already in use")
		}
		return "", err
	}

	if err := f.client.SetCustomUserClaims(ctx, record.UID, map[string]interface{}{roleClaim: string(user.Role)}); err != nil {
		if delErr := f.client.DeleteUser(ctx, record.UID); delErr != nil {
			logger.Error("Failed to roll back firebase user %s: %v", record.UID, delErr)
		}
		return "", fmt.Errorf("set role claim: %w", err)
	}

	return record.UID, nil
}

func (f *FirebaseAuthClient) DeleteIdentity(ctx context.Context, userID string) error {
	return f.client.DeleteUser(ctx, userID)
}

func (f *FirebaseAuthClient) IssueToken(ctx context.Context, userID string, role entity.Role) (string, error) {
	return f.client.CustomTokenWithClaims(ctx, userID, map[string]interface{}{roleClaim: string(role)})
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*usecase.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	role, _ := result.Claims[roleClaim].(string)
	return &usecase.Identity{
		UserID: result.UID,
		Role:   entity.Role(role),
	}, nil
}
