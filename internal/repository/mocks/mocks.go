package mocks

import (
	"context"

	"github.com/rpggio/datapoints/internal/config"
	"github.com/rpggio/datapoints/internal/domain/activity"
	"github.com/rpggio/datapoints/internal/repository"
	"github.com/stretchr/testify/mock"
)

// SiteRepository is a mock for repository.SiteRepository.
type SiteRepository struct {
	mock.Mock
}

func (m *SiteRepository) ReadSchema(ctx context.Context, entityType string) (map[string]repository.FieldSchema, error) {
	args := m.Called(ctx, entityType)
	if schema, ok := args.Get(0).(map[string]repository.FieldSchema); ok {
		return schema, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SiteRepository) CreateField(ctx context.Context, entityType, dataType, displayName string) (string, error) {
	args := m.Called(ctx, entityType, dataType, displayName)
	return args.String(0), args.Error(1)
}

func (m *SiteRepository) Find(ctx context.Context, entityType string, filters []any, fields []string) ([]repository.Entity, error) {
	args := m.Called(ctx, entityType, filters, fields)
	if list, ok := args.Get(0).([]repository.Entity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SiteRepository) Batch(ctx context.Context, requests []repository.BatchRequest) ([]repository.Entity, error) {
	args := m.Called(ctx, requests)
	if list, ok := args.Get(0).([]repository.Entity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// Dialer is a mock for site.Dialer.
type Dialer struct {
	mock.Mock
}

func (m *Dialer) Dial(ctx context.Context, url string, creds config.Credentials) (repository.SiteRepository, error) {
	args := m.Called(ctx, url, creds)
	if handle, ok := args.Get(0).(repository.SiteRepository); ok {
		return handle, args.Error(1)
	}
	return nil, args.Error(1)
}

// ActivityRepository is a mock for activity.Repository.
type ActivityRepository struct {
	mock.Mock
}

func (m *ActivityRepository) Log(ctx context.Context, entry *activity.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ActivityRepository) List(ctx context.Context, opts activity.ListOptions) ([]activity.Entry, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]activity.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
