package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_FetchPrice(t *testing.T) {
	feed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/quotes/corn":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"crop":"corn","price":4.82}`))
		case "/quotes/kale":
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"crop not listed"}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer feed.Close()

	client := NewClient(feed.URL, 5*time.Second)

	price, err := client.FetchPrice(context.Background(), "corn")
	require.NoError(t, err)
	assert.True(t, price.Equal(decimal.RequireFromString("4.82")))

	_, err = client.FetchPrice(context.Background(), "kale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crop not listed")
}

func TestClient_FeedUnreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond)

	_, err := client.FetchPrice(context.Background(), "corn")
	assert.Error(t, err)
}
