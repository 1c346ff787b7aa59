package catalog

import (
	"context"

	"wavefm/model"
)

// Source produces candidate songs for the aggregator. Implementations must
// honor ctx cancellation; a failing source degrades to an empty list at the
// aggregation layer, it never fails the whole request.
type Source interface {
	Name() string
	Fetch(ctx context.Context, genre string, limit int) ([]*model.Song, error)
}
