package cache

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkoenig/boxtree/pkg/errors"
)

const (
	mongoDefaultDatabase = "boxtree"
	mongoCollection      = "cache"
)

// NewFromURL builds a cache backend from a connection URL. The scheme
// selects the backend: redis:// or rediss:// for Redis, mongodb:// or
// mongodb+srv:// for MongoDB. For MongoDB the URL path names the database,
// defaulting to "boxtree".
func NewFromURL(ctx context.Context, rawURL string) (Cache, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidOptions, err, "parse cache url")
	}

	switch u.Scheme {
	case "redis", "rediss":
		return NewRedisCache(ctx, rawURL)
	case "mongodb", "mongodb+srv":
		return NewMongoCache(ctx, rawURL, mongoDatabase(u), mongoCollection)
	default:
		return nil, errors.New(errors.ErrCodeInvalidOptions,
			"unsupported cache url scheme %q (want redis:// or mongodb://)", u.Scheme)
	}
}

// mongoDatabase extracts the database name from the URL path.
func mongoDatabase(u *url.URL) string {
	if db := strings.Trim(u.Path, "/"); db != "" {
		return db
	}
	return mongoDefaultDatabase
}
