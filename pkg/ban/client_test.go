package ban

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchJSON = `{
	"type": "FeatureCollection",
	"features": [
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2.331389, 48.868889]},
			"properties": {"label": "4 Rue de la Paix 75002 Paris", "score": 0.97, "citycode": "75102"}
		},
		{
			"type": "Feature",
			"geometry": {"type": "Point", "coordinates": [2.35, 48.87]},
			"properties": {"label": "4 Rue de la Paix 93500 Pantin", "score": 0.61, "citycode": "93055"}
		}
	]
}`

func TestSearch_Success(t *testing.T) {
	var gotPath, gotQ, gotLimit string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQ = r.URL.Query().Get("q")
		gotLimit = r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, searchJSON)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	candidates, err := c.Search(context.Background(), "4 rue de la paix paris", 2)
	require.NoError(t, err)

	assert.Equal(t, "/search/", gotPath)
	assert.Equal(t, "4 rue de la paix paris", gotQ)
	assert.Equal(t, "2", gotLimit)

	require.Len(t, candidates, 2)
	assert.Equal(t, "4 Rue de la Paix 75002 Paris", candidates[0].Label)
	assert.Equal(t, "75102", candidates[0].CityCode)
	assert.InDelta(t, 0.97, candidates[0].Score, 0.001)
	assert.InDelta(t, 2.331389, candidates[0].Longitude, 1e-9)
	assert.InDelta(t, 48.868889, candidates[0].Latitude, 1e-9)
}

func TestSearch_SkipsMalformedCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"features":[
			{"geometry":{"coordinates":[2.0]},"properties":{"label":"broken","citycode":"00000"}},
			{"geometry":{"coordinates":[2.0,48.0]},"properties":{"label":"ok","citycode":"75102"}}
		]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	candidates, err := c.Search(context.Background(), "rue", 2)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ok", candidates[0].Label)
}

func TestSearch_EmptyQuery(t *testing.T) {
	c := NewClient(WithBaseURL("http://127.0.0.1:1"))
	_, err := c.Search(context.Background(), "   ", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty query")
}

func TestSearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream unavailable")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Search(context.Background(), "nowhere", 1)
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream unavailable", statusErr.Body)
}

func TestBest_ReturnsTopCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = io.WriteString(w, searchJSON)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	best, err := c.Best(context.Background(), "4 rue de la paix paris")
	require.NoError(t, err)
	assert.Equal(t, "75102", best.CityCode)
	assert.InDelta(t, 48.868889, best.Latitude, 1e-9)
}

func TestBest_NoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"type":"FeatureCollection","features":[]}`)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Best(context.Background(), "zzzz nowhere")
	require.ErrorIs(t, err, ErrNoMatch)
}

func TestSearch_CacheAvoidsSecondRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, searchJSON)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithCache(8))

	first, err := c.Search(context.Background(), "4 Rue de la Paix Paris", 2)
	require.NoError(t, err)
	// Same query modulo spacing and case shares the entry.
	second, err := c.Search(context.Background(), "  4 rue DE la paix   paris ", 2)
	require.NoError(t, err)

	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, first, second)

	// A different limit is a different entry.
	_, err = c.Search(context.Background(), "4 rue de la paix paris", 1)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, cacheKey("4 Rue  de la Paix", 1), cacheKey("  4 rue de la paix ", 1))
	assert.NotEqual(t, cacheKey("4 rue de la paix", 1), cacheKey("4 rue de la paix", 2))
}
