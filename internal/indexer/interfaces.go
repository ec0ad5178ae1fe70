package indexer

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"github.com/user/linkstitcher/internal/db"
	"github.com/user/linkstitcher/internal/filter"
)

type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	Get(ctx context.Context, url string) (*db.Preview, error)
	Insert(ctx context.Context, p *db.Preview) error
	Upsert(ctx context.Context, p *db.Preview) (bool, error)
	SetMetadata(ctx context.Context, key, value string) error
}

type Enricher interface {
	Embellish(ctx context.Context, p *db.Preview) (string, error)
}

type Bookmarker interface {
	Bookmark(ctx context.Context, p *db.Preview) error
}

type Filter interface {
	CheckAll(ctx context.Context, previews []*db.Preview, limit int) []filter.Verdict
}

type FeedReader interface {
	Read(ctx context.Context, url string) ([]*db.Preview, error)
}

type Publisher interface {
	Publish(ctx context.Context, p *db.Preview, isNew bool) error
}
