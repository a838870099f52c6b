package site

import (
	"context"
	"errors"
	"log/slog"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/logging"
)

// Connector turns site settings into connected sites.
type Connector struct {
	dialer Dialer
	logger *slog.Logger
}

// NewConnector creates a new connector.
func NewConnector(dialer Dialer, logger *slog.Logger) *Connector {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Connector{dialer: dialer, logger: logger}
}

// Connect consumes cfg's credentials and returns the connected site.
// The credentials are cleared from cfg whether or not the connection succeeds.
func (c *Connector) Connect(ctx context.Context, cfg *config.SiteConfig) (*Site, error) {
	creds := cfg.Credentials
	cfg.Credentials = config.Credentials{}

	if !creds.Complete() {
		return nil, &ConnectError{URL: cfg.URL, Err: ErrMissingCredentials}
	}

	c.logger.Info("connecting", "site", cfg.URL)
	handle, err := c.dialer.Dial(ctx, cfg.URL, creds)
	if err != nil {
		return nil, &ConnectError{URL: cfg.URL, Err: err}
	}

	global, perProject := scopesFromConfig(*cfg)
	return &Site{
		URL:        cfg.URL,
		Handle:     handle,
		Global:     global,
		PerProject: perProject,
	}, nil
}

// ConnectAll connects every site in settings order. Sites that fail to connect
// are left out of the result and reported in the joined error.
func (c *Connector) ConnectAll(ctx context.Context, settings *config.Settings) ([]*Site, error) {
	sites := make([]*Site, 0, len(settings.Sites))
	var errs []error
	for i := range settings.Sites {
		s, err := c.Connect(ctx, &settings.Sites[i])
		if err != nil {
			c.logger.Error("connection failed", "site", settings.Sites[i].URL, "error", err)
			errs = append(errs, err)
			continue
		}
		sites = append(sites, s)
	}
	return sites, errors.Join(errs...)
}
