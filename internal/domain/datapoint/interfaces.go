package datapoint

import (
	"context"

	"github.com/rpggio/datapoints/internal/domain/activity"
)

// Journal records what a run did.
type Journal interface {
	Record(ctx context.Context, entry *activity.Entry) error
}
