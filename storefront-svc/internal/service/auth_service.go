package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"delivery-storefront/storefront-svc/internal/domain"
)

type AuthService struct {
	catalog CatalogServiceInterface
}

func NewAuthService(catalog CatalogServiceInterface) *AuthService {
	return &AuthService{catalog: catalog}
}

// Login returns the matching user without its password, or nil when no user
// has this email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.PublicUser, error) {
	ds, err := s.catalog.FetchAll(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConnection, err)
	}

	for _, user := range ds.Users {
		if user.Email != email {
			continue
		}
		if !passwordMatches(user.Password, password) {
			continue
		}
		public := user.Public()
		return &public, nil
	}

	log.Info().Str("email", email).Msg("login rejected")
	return nil, nil
}

func passwordMatches(stored, given string) bool {
	if isBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

var _ AuthServiceInterface = (*AuthService)(nil)
