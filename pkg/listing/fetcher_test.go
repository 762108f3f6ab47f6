package listing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisport/coursewatch/pkg/courses"
)

func TestFetcherParsesListing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(listingHTML("Warteliste")))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, time.Second)

	snap, err := f.Fetch(context.Background())
	require.NoError(t, err)

	state, ok := snap.Lookup(courses.Locator("#bs_tr1 > td.bs_sbuch > input"))
	require.True(t, ok)
	assert.Equal(t, "Warteliste", state)
}

func TestFetcherSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	f := NewFetcher(server.URL, time.Second)
	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	// The site serves German sentinel strings only with this language order.
	assert.Equal(t, "de,en-US;q=0.7,en;q=0.3", got.Get("Accept-Language"))
	assert.Contains(t, got.Get("User-Agent"), "Firefox")
	assert.Equal(t, "document", got.Get("Sec-Fetch-Dest"))
}

func TestFetcherRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	f := NewFetcher(server.URL, time.Second)
	_, err := f.Fetch(context.Background())
	assert.ErrorContains(t, err, "status 503")
}

func TestFetcherHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(server.URL, time.Second)
	_, err := f.Fetch(ctx)
	assert.Error(t, err)
}
