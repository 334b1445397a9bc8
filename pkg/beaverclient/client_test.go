package beaverclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/roterdam/beaver-ttp/internal/ring"
	"github.com/stretchr/testify/require"
)

func TestGetShareDecodesLargeWord64Value(t *testing.T) {
	const huge = "18446744073709551615" // 2^64 - 1, overflows int64

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"session_id": "s",
			"triple_id":  0,
			"party_id":   0,
			"share": map[string]string{
				"a": huge, "b": "1", "c": "1",
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, WithSessionID("s"))
	share, err := c.GetShare(context.Background(), 0, 0, ring.Word64)
	require.NoError(t, err)
	require.Equal(t, huge, share.A.String())
}

func TestGetShareDoubleRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "DOUBLE_REQUEST"})
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.GetShare(context.Background(), 0, 0, ring.Word64)
	require.ErrorIs(t, err, ErrDoubleRequest)
}

func TestGetBatch(t *testing.T) {
	var seen []int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req shareRequestBody
		_ = json.NewDecoder(r.Body).Decode(&req)
		seen = append(seen, req.TripleID)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"share": map[string]string{"a": "1", "b": "2", "c": "2"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	shares, err := c.GetBatch(context.Background(), 0, 10, 3, ring.Word64)
	require.NoError(t, err)
	require.Len(t, shares, 3)
	require.Equal(t, []int64{10, 11, 12}, seen)
}
