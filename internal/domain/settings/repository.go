package settings

import "context"

// Repository persists settings
type Repository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context, publicOnly bool) ([]Setting, error)
	Upsert(ctx context.Context, setting *Setting) error
	// SeedMissing inserts the given settings whose keys do not exist yet
	SeedMissing(ctx context.Context, defaults []Setting) (int64, error)
}
