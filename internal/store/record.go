package store

import (
	"encoding/json"
	"strconv"

	"github.com/roterdam/beaver-ttp/internal/ring"
	"github.com/roterdam/beaver-ttp/internal/triple"
)

// Sentinel is the opaque placeholder value written to a triple slot by the
// elected leader while generation is in flight. It is never mistaken for a
// published record because it isn't valid JSON for wireShare.
const Sentinel = "GENERATING"

// wireShare mirrors triple.Share but with decimal-string components, since
// Word64 values may exceed JSON's safe float64 integer range.
type wireShare struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
}

type wireRecord struct {
	Ring   string    `json:"ring"`
	Share0 wireShare `json:"share0"`
	Share1 wireShare `json:"share1"`
}

// EncodeRecord serializes a published triple.Pair for storage.
func EncodeRecord(p triple.Pair) ([]byte, error) {
	return json.Marshal(wireRecord{
		Ring:   string(p.Ring),
		Share0: encodeShare(p.Share0),
		Share1: encodeShare(p.Share1),
	})
}

// DecodeRecord parses a previously published record. It returns ok=false
// (with no error) if raw is the generation sentinel rather than a record.
func DecodeRecord(raw []byte) (triple.Pair, bool, error) {
	if string(raw) == Sentinel {
		return triple.Pair{}, false, nil
	}
	var w wireRecord
	if err := json.Unmarshal(raw, &w); err != nil {
		return triple.Pair{}, false, err
	}
	s0, err := decodeShare(w.Share0)
	if err != nil {
		return triple.Pair{}, false, err
	}
	s1, err := decodeShare(w.Share1)
	if err != nil {
		return triple.Pair{}, false, err
	}
	return triple.Pair{
		Ring:   ring.Ring(w.Ring),
		Share0: s0,
		Share1: s1,
	}, true, nil
}

func encodeShare(s triple.Share) wireShare {
	return wireShare{
		A: strconv.FormatUint(s.A, 10),
		B: strconv.FormatUint(s.B, 10),
		C: strconv.FormatUint(s.C, 10),
	}
}

func decodeShare(w wireShare) (triple.Share, error) {
	a, err := strconv.ParseUint(w.A, 10, 64)
	if err != nil {
		return triple.Share{}, err
	}
	b, err := strconv.ParseUint(w.B, 10, 64)
	if err != nil {
		return triple.Share{}, err
	}
	c, err := strconv.ParseUint(w.C, 10, 64)
	if err != nil {
		return triple.Share{}, err
	}
	return triple.Share{A: a, B: b, C: c}, nil
}
