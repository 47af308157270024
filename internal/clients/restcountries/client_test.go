package restcountries

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastClient(baseURL string) *Client {
	c := NewClient(zerolog.Nop()).WithBaseURL(baseURL)
	c.backoff = time.Millisecond
	return c
}

func TestCurrencies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Greece", r.URL.Path)
		assert.Equal(t, "currencies", r.URL.Query().Get("fields"))

		fmt.Fprint(w, `[{"currencies":{"EUR":{"name":"Euro","symbol":"€"}}}]`)
	}))
	defer server.Close()

	codes, err := fastClient(server.URL).Currencies(context.Background(), "Greece")
	require.NoError(t, err)

	assert.Equal(t, []string{"EUR"}, codes)
}

func TestCurrenciesMultipleEntriesAreSorted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"currencies":{"USD":{},"PAB":{}}},{"currencies":{"USD":{}}}]`)
	}))
	defer server.Close()

	codes, err := fastClient(server.URL).Currencies(context.Background(), "Panama")
	require.NoError(t, err)

	assert.Equal(t, []string{"PAB", "USD"}, codes)
}

func TestCurrenciesNotFound(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := fastClient(server.URL).Currencies(context.Background(), "Atlantis")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, hits) // a miss is definitive, not retried
}

func TestCurrenciesNameIsEscaped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/name/Côte d'Ivoire", r.URL.Path)
		fmt.Fprint(w, `[{"currencies":{"XOF":{}}}]`)
	}))
	defer server.Close()

	codes, err := fastClient(server.URL).Currencies(context.Background(), "Côte d'Ivoire")
	require.NoError(t, err)
	assert.Equal(t, []string{"XOF"}, codes)
}

func TestCurrenciesEmptyResultIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	_, err := fastClient(server.URL).Currencies(context.Background(), "Nowhere")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCurrenciesServerErrorIsRetried(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `[{"currencies":{"EUR":{}}}]`)
	}))
	defer server.Close()

	codes, err := fastClient(server.URL).Currencies(context.Background(), "Greece")
	require.NoError(t, err)
	assert.Equal(t, 2, hits)
	assert.Equal(t, []string{"EUR"}, codes)
}
