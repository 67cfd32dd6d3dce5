package cache

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Open returns the backend a URL names:
//
//	""  or "none"              caching disabled
//	file:///path/to/dir        [FileCache]
//	redis://host:6379/0        [RedisCache]
//	mongodb://host/db          [MongoCache], collection "layouts"
//
// A bare path is treated as a file cache directory.
func Open(ctx context.Context, rawURL string) (Cache, error) {
	if rawURL == "" || rawURL == "none" {
		return NewNullCache(), nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return NewFileCache(rawURL)
	}
	switch u.Scheme {
	case "file":
		return NewFileCache(u.Path)
	case "redis", "rediss":
		return NewRedisCache(ctx, rawURL, "bpmnlayout:")
	case "mongodb", "mongodb+srv":
		db := strings.TrimPrefix(u.Path, "/")
		if db == "" {
			db = "bpmnlayout"
		}
		return NewMongoCache(ctx, rawURL, db, "layouts")
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", u.Scheme)
	}
}
