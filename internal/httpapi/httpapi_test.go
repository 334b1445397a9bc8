package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/roterdam/beaver-ttp/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	svc := NewService(store.NewRedisStoreFromClient(rdb), nil, time.Minute)
	svc.Resolver.PollEvery = 10 * time.Millisecond
	svc.Resolver.MaxPolls = 50
	return svc
}

func postShare(t *testing.T, h http.Handler, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/beaver/share", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHappyPathWord64(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec0 := postShare(t, h, map[string]any{
		"session_id": "S", "party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusOK, rec0.Code)

	rec1 := postShare(t, h, map[string]any{
		"session_id": "S", "party_id": 1, "triple_id": 0, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusOK, rec1.Code)

	var resp0, resp1 shareResponse
	require.NoError(t, json.Unmarshal(rec0.Body.Bytes(), &resp0))
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))

	modulus := new(big.Int).Lsh(big.NewInt(1), 64)
	a := combine(t, resp0.Share.A, resp1.Share.A, modulus)
	b := combine(t, resp0.Share.B, resp1.Share.B, modulus)
	c := combine(t, resp0.Share.C, resp1.Share.C, modulus)

	want := new(big.Int).Mul(a, b)
	want.Mod(want, modulus)
	require.Equal(t, 0, want.Cmp(c))
}

func TestHappyPathBinary(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec0 := postShare(t, h, map[string]any{
		"session_id": "S", "party_id": 0, "triple_id": 0, "ring": "Z2",
	})
	require.Equal(t, http.StatusOK, rec0.Code)

	rec1 := postShare(t, h, map[string]any{
		"session_id": "S", "party_id": 1, "triple_id": 0, "ring": "Z2",
	})
	require.Equal(t, http.StatusOK, rec1.Code)

	var resp0, resp1 shareResponse
	require.NoError(t, json.Unmarshal(rec0.Body.Bytes(), &resp0))
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))

	for _, v := range []string{resp0.Share.A, resp0.Share.B, resp0.Share.C, resp1.Share.A, resp1.Share.B, resp1.Share.C} {
		require.Contains(t, []string{"0", "1"}, v)
	}

	modulus := big.NewInt(2)
	a := combine(t, resp0.Share.A, resp1.Share.A, modulus)
	b := combine(t, resp0.Share.B, resp1.Share.B, modulus)
	c := combine(t, resp0.Share.C, resp1.Share.C, modulus)
	want := new(big.Int).Mul(a, b)
	want.Mod(want, modulus)
	require.Equal(t, 0, want.Cmp(c))
}

func TestDoubleRequest(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec0 := postShare(t, h, map[string]any{
		"session_id": "S2", "party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusOK, rec0.Code)

	rec1 := postShare(t, h, map[string]any{
		"session_id": "S2", "party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusForbidden, rec1.Code)

	var errResp errorResponse
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &errResp))
	require.Equal(t, "DOUBLE_REQUEST", errResp.Error)
}

func TestConcurrentFirstRequests(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	var wg sync.WaitGroup
	recs := make([]*httptest.ResponseRecorder, 2)
	wg.Add(2)
	for i := 0; i < 2; i++ {
		i := i
		go func() {
			defer wg.Done()
			recs[i] = postShare(t, h, map[string]any{
				"session_id": "S3", "party_id": i, "triple_id": 7, "ring": "Z2^64",
			})
		}()
	}
	wg.Wait()

	for _, rec := range recs {
		require.Equal(t, http.StatusOK, rec.Code)
	}

	var resp0, resp1 shareResponse
	require.NoError(t, json.Unmarshal(recs[0].Body.Bytes(), &resp0))
	require.NoError(t, json.Unmarshal(recs[1].Body.Bytes(), &resp1))

	modulus := new(big.Int).Lsh(big.NewInt(1), 64)
	a := combine(t, resp0.Share.A, resp1.Share.A, modulus)
	b := combine(t, resp0.Share.B, resp1.Share.B, modulus)
	c := combine(t, resp0.Share.C, resp1.Share.C, modulus)
	want := new(big.Int).Mul(a, b)
	want.Mod(want, modulus)
	require.Equal(t, 0, want.Cmp(c))
}

func TestIndependenceAcrossTripleIDs(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec0 := postShare(t, h, map[string]any{
		"session_id": "S4", "party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})
	rec1 := postShare(t, h, map[string]any{
		"session_id": "S4", "party_id": 0, "triple_id": 1, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusOK, rec0.Code)
	require.Equal(t, http.StatusOK, rec1.Code)

	var resp0, resp1 shareResponse
	require.NoError(t, json.Unmarshal(rec0.Body.Bytes(), &resp0))
	require.NoError(t, json.Unmarshal(rec1.Body.Bytes(), &resp1))
	require.NotEqual(t, resp0.Share, resp1.Share)
}

func TestInvalidRing(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec := postShare(t, h, map[string]any{
		"session_id": "S5", "party_id": 0, "triple_id": 0, "ring": "Z3",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	n, err := svc.Store.CountPrefix(context.Background(), store.TriplePrefix)
	require.NoError(t, err)
	require.Equal(t, 0, n, "invalid ring must not touch the store")
}

func TestMissingField(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	rec := postShare(t, h, map[string]any{
		"party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	svc := newTestService(t)
	h := svc.Routes()

	postShare(t, h, map[string]any{
		"session_id": "S6", "party_id": 0, "triple_id": 0, "ring": "Z2^64",
	})

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp statsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.ActiveTriples)
	require.Equal(t, 1, resp.ActiveRequests)
}

func combine(t *testing.T, x0, x1 string, modulus *big.Int) *big.Int {
	t.Helper()
	a, ok := new(big.Int).SetString(x0, 10)
	require.True(t, ok)
	b, ok := new(big.Int).SetString(x1, 10)
	require.True(t, ok)
	sum := new(big.Int).Add(a, b)
	sum.Mod(sum, modulus)
	return sum
}
