package site

import (
	"context"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/repository"
)

// Dialer exchanges script credentials for an authenticated site handle.
type Dialer interface {
	Dial(ctx context.Context, url string, creds config.Credentials) (repository.SiteRepository, error)
}
