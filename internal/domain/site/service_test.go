package site_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/domain/site"
	"github.com/rpggio/datapoints/internal/repository"
	"github.com/rpggio/datapoints/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestConnector_ConnectScrubsCredentials(t *testing.T) {
	ctx := context.Background()
	creds := config.Credentials{ScriptName: "reporter", ScriptKey: "s3cret"}
	cfg := config.SiteConfig{
		URL:           "https://alpha.example.com",
		Credentials:   creds,
		GlobalEntity:  "CustomNonProjectEntity01",
		TrackGlobally: []config.TrackingRule{{EntityType: "HumanUser", WriteToField: "sg_active_users"}},
	}

	handle := &mocks.SiteRepository{}
	dialer := &mocks.Dialer{}
	dialer.On("Dial", ctx, "https://alpha.example.com", creds).Return(handle, nil)

	connector := site.NewConnector(dialer, nil)
	s, err := connector.Connect(ctx, &cfg)
	require.NoError(t, err)

	require.Equal(t, config.Credentials{}, cfg.Credentials)
	require.Equal(t, "https://alpha.example.com", s.URL)
	require.Same(t, handle, s.Handle)
	require.NotNil(t, s.Global)
	require.Equal(t, "CustomNonProjectEntity01", s.Global.Entity)
	require.Len(t, s.Global.Rules, 1)
	require.Nil(t, s.PerProject)
	require.True(t, s.HasScope())
	require.Empty(t, s.ProjectEntity())
	dialer.AssertExpectations(t)
}

func TestConnector_ConnectMissingCredentials(t *testing.T) {
	ctx := context.Background()
	cfg := config.SiteConfig{
		URL:         "https://alpha.example.com",
		Credentials: config.Credentials{ScriptName: "reporter"},
	}

	dialer := &mocks.Dialer{}
	connector := site.NewConnector(dialer, nil)
	_, err := connector.Connect(ctx, &cfg)
	require.ErrorIs(t, err, site.ErrMissingCredentials)

	var connErr *site.ConnectError
	require.True(t, errors.As(err, &connErr))
	require.Equal(t, "https://alpha.example.com", connErr.URL)
	require.Equal(t, config.Credentials{}, cfg.Credentials)
	dialer.AssertNotCalled(t, "Dial", mock.Anything, mock.Anything, mock.Anything)
}

func TestConnector_ConnectDialFailureScrubsCredentials(t *testing.T) {
	ctx := context.Background()
	cfg := config.SiteConfig{
		URL:         "https://alpha.example.com",
		Credentials: config.Credentials{ScriptName: "reporter", ScriptKey: "wrong"},
	}

	dialer := &mocks.Dialer{}
	dialer.On("Dial", ctx, cfg.URL, mock.Anything).Return(nil, repository.ErrUnauthorized)

	connector := site.NewConnector(dialer, nil)
	_, err := connector.Connect(ctx, &cfg)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
	require.NotContains(t, err.Error(), "wrong")
	require.Equal(t, config.Credentials{}, cfg.Credentials)
}

func TestConnector_ConnectAllKeepsOrderAndSkipsFailures(t *testing.T) {
	ctx := context.Background()
	settings := &config.Settings{Sites: []config.SiteConfig{
		{URL: "https://alpha.example.com", Credentials: config.Credentials{ScriptName: "a", ScriptKey: "1"}, ProjectEntity: "CustomEntity02"},
		{URL: "https://beta.example.com", Credentials: config.Credentials{ScriptName: "b", ScriptKey: "2"}},
		{URL: "https://gamma.example.com", Credentials: config.Credentials{ScriptName: "c", ScriptKey: "3"}},
	}}

	dialer := &mocks.Dialer{}
	dialer.On("Dial", ctx, "https://alpha.example.com", mock.Anything).Return(&mocks.SiteRepository{}, nil)
	dialer.On("Dial", ctx, "https://beta.example.com", mock.Anything).Return(nil, repository.ErrUnauthorized)
	dialer.On("Dial", ctx, "https://gamma.example.com", mock.Anything).Return(&mocks.SiteRepository{}, nil)

	connector := site.NewConnector(dialer, nil)
	sites, err := connector.ConnectAll(ctx, settings)
	require.ErrorIs(t, err, repository.ErrUnauthorized)
	require.ErrorContains(t, err, "https://beta.example.com")

	require.Len(t, sites, 2)
	require.Equal(t, "https://alpha.example.com", sites[0].URL)
	require.Equal(t, "CustomEntity02", sites[0].ProjectEntity())
	require.Equal(t, "https://gamma.example.com", sites[1].URL)
	require.False(t, sites[1].HasScope())

	for _, cfg := range settings.Sites {
		require.Equal(t, config.Credentials{}, cfg.Credentials)
	}
}
