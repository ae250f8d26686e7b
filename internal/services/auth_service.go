package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/napkins/internal/config"
	"github.com/localnerve/napkins/internal/utils"
)

var (
	authClient *authorizer.AuthorizerClient
	authOnce   sync.Once
	authErr    error
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	return authClient != nil
}

// InitAuthorizer initializes the Authorizer client once. redirectURL is
// the public origin of this service.
func InitAuthorizer(ctx context.Context, cfg *config.Config, redirectURL string) error {
	authOnce.Do(func() {
		if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
			authErr = fmt.Errorf("authorizer ping failed: %w", err)
			return
		}

		log.Printf("Initializing Authorizer: authorizerURL=%s, clientID=%s, redirectURL=%s",
			cfg.AuthzURL, cfg.AuthzClientID, redirectURL)

		authClient, authErr = authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
		if authErr != nil {
			authErr = fmt.Errorf("failed to create authorizer client: %w", authErr)
		}
	})
	return authErr
}

// ValidateSession validates a session cookie and returns the user id
func ValidateSession(cookie string) (string, error) {
	if authClient == nil {
		return "", fmt.Errorf("authorizer client not initialized")
	}

	res, err := authClient.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
	})
	if err != nil {
		return "", fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return "", fmt.Errorf("session is not valid")
	}
	return res.User.ID, nil
}
