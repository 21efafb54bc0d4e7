package geocode

import (
	"context"
	"errors"
	"testing"
)

// fakeGeocoder scripts the answers a resolver sees, recording every call.
type fakeGeocoder struct {
	calls   int
	results []Result
	errs    []error
}

func (f *fakeGeocoder) Geocode(_ context.Context, _ string) (Result, error) {
	i := f.calls
	f.calls++
	var result Result
	if i < len(f.results) {
		result = f.results[i]
	}
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	return result, err
}

func TestResolverEmptyQueryDoesNotLookup(t *testing.T) {
	fake := &fakeGeocoder{}
	r := NewResolver(fake, NewCache(), 3)

	for _, q := range []string{"", "   ", "\t\n"} {
		result, cached, err := r.Resolve(context.Background(), q)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", q, err)
		}
		if result.Found || cached {
			t.Errorf("Resolve(%q) = %+v cached=%v; want unresolved", q, result, cached)
		}
	}
	if fake.calls != 0 {
		t.Fatalf("geocoder called %d times for empty queries", fake.calls)
	}
}

func TestResolverCacheFirst(t *testing.T) {
	fake := &fakeGeocoder{}
	cache := NewCache()
	cache.Set("123 Main St", 39.29, -76.61)
	r := NewResolver(fake, cache, 3)

	result, cached, err := r.Resolve(context.Background(), "  123   Main St ")
	if err != nil {
		t.Fatal(err)
	}
	if !cached || !result.Found {
		t.Fatalf("expected cache hit, got %+v cached=%v", result, cached)
	}
	if result.Lat != 39.29 || result.Lng != -76.61 {
		t.Errorf("coords = (%v, %v)", result.Lat, result.Lng)
	}
	if fake.calls != 0 {
		t.Errorf("geocoder called despite cache hit")
	}
}

func TestResolverCachesLiveResults(t *testing.T) {
	fake := &fakeGeocoder{results: []Result{{Lat: 39.29, Lng: -76.61, Found: true}}}
	cache := NewCache()
	r := NewResolver(fake, cache, 3)

	if _, cached, _ := r.Resolve(context.Background(), "123 Main St"); cached {
		t.Fatal("first resolve should be live")
	}
	// Duplicate address later in the batch must hit memory.
	if _, cached, _ := r.Resolve(context.Background(), "123 Main St"); !cached {
		t.Fatal("second resolve should hit the cache")
	}
	if fake.calls != 1 {
		t.Fatalf("geocoder called %d times; want 1", fake.calls)
	}
}

func TestResolverRetriesThenGivesUp(t *testing.T) {
	boom := errors.New("provider timeout")
	fake := &fakeGeocoder{errs: []error{boom, boom, boom}}
	r := NewResolver(fake, NewCache(), 3)

	result, _, err := r.Resolve(context.Background(), "123 Main St")
	if err != nil {
		t.Fatalf("failures must not escape the lookup boundary: %v", err)
	}
	if result.Found {
		t.Fatal("exhausted retries should report no result")
	}
	if fake.calls != 3 {
		t.Fatalf("geocoder called %d times; want 3", fake.calls)
	}
}

func TestResolverRecoversWithinRetryBudget(t *testing.T) {
	boom := errors.New("flaky")
	fake := &fakeGeocoder{
		errs:    []error{boom, nil},
		results: []Result{{}, {Lat: 39.29, Lng: -76.61, Found: true}},
	}
	r := NewResolver(fake, NewCache(), 3)

	result, _, err := r.Resolve(context.Background(), "123 Main St")
	if err != nil {
		t.Fatal(err)
	}
	if !result.Found {
		t.Fatal("expected the second attempt to succeed")
	}
	if fake.calls != 2 {
		t.Fatalf("geocoder called %d times; want 2", fake.calls)
	}
}

func TestResolverNoMatchIsFinal(t *testing.T) {
	fake := &fakeGeocoder{}
	r := NewResolver(fake, NewCache(), 3)

	result, _, err := r.Resolve(context.Background(), "nowhere at all")
	if err != nil {
		t.Fatal(err)
	}
	if result.Found {
		t.Fatal("expected no result")
	}
	if fake.calls != 1 {
		t.Fatalf("a clean no-match answer should not be retried; %d calls", fake.calls)
	}
}

func TestResolverStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fake := &fakeGeocoder{}
	r := NewResolver(fake, NewCache(), 3)

	if _, _, err := r.Resolve(ctx, "123 Main St"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("geocoder called after cancellation")
	}
}
