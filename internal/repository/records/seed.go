package records

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/bayoubeans/coffee-orders/internal/repository"
)

// SeedAdmin creates the configured admin user if the Users collection does
// not hold it yet, so login works against a fresh store. The stored secret
// must already be in the form the configured verifier expects.
func SeedAdmin(ctx context.Context, users *UserRepo, userName, storedSecret string) error {
	if userName == "" || storedSecret == "" {
		return nil
	}

	_, err := users.FetchByName(ctx, userName)
	if err == nil {
		log.Printf("Admin user %s already exists.", userName)
		return nil
	}
	if !errors.Is(err, repository.ErrObjectNotFound) {
		return fmt.Errorf("failed to check admin user: %w", err)
	}

	if err := users.CreateUser(ctx, userName, storedSecret); err != nil {
		return err
	}
	log.Printf("Admin user %s created successfully.", userName)
	return nil
}
