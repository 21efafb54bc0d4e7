package geocode

import "context"

// Resolver answers "where is this address" cache-first, falling back to live
// lookups with a fixed retry budget. Lookup failures are swallowed at this
// boundary: after the retries are spent the address is simply unresolved.
type Resolver struct {
	geocoder   Geocoder
	cache      *Cache
	maxRetries int
}

// NewResolver builds a Resolver over the given geocoder and cache.
// maxRetries is the number of live attempts per address; values below one are
// clamped to one.
func NewResolver(geocoder Geocoder, cache *Cache, maxRetries int) *Resolver {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Resolver{geocoder: geocoder, cache: cache, maxRetries: maxRetries}
}

// Resolve returns the coordinates for query and whether they came from the
// cache. Empty queries perform no lookup. Successful live lookups are written
// into the cache immediately so duplicate addresses later in the same batch
// hit memory. The returned error is non-nil only when the context ends.
func (r *Resolver) Resolve(ctx context.Context, query string) (Result, bool, error) {
	if r == nil || r.geocoder == nil {
		return Result{}, false, nil
	}
	query = NormalizeQuery(query)
	if query == "" {
		return Result{}, false, nil
	}

	if entry, ok := r.cache.Get(query); ok {
		return Result{Lat: entry.Lat, Lng: entry.Lng, Found: true}, true, nil
	}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{}, false, err
		}
		result, err := r.geocoder.Geocode(ctx, query)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, false, ctx.Err()
			}
			continue
		}
		if !result.Found {
			// A clean "no match" answer is final; retrying will not
			// invent coordinates.
			return result, false, nil
		}
		r.cache.Set(query, result.Lat, result.Lng)
		return result, false, nil
	}
	return Result{}, false, nil
}
