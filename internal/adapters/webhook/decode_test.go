package webhook

import (
	"errors"
	"testing"
)

func TestDecodeListings(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		shape Shape
		n     int
		fail  bool
	}{
		{name: "bare", body: `[{"id":"A"},{"id":"B"}]`, shape: ShapeBareArray, n: 2},
		{name: "bare empty", body: ` [] `, shape: ShapeBareArray, n: 0},
		{name: "wrapped", body: `{"properties":[{"id":"A"}],"count":1}`, shape: ShapeWrapped, n: 1},
		{name: "wrapped empty", body: `{"properties":[]}`, shape: ShapeWrapped, n: 0},
		{name: "null", body: `null`, fail: true},
		{name: "empty", body: ``, fail: true},
		{name: "scalar", body: `42`, fail: true},
		{name: "missing field", body: `{"data":[]}`, fail: true},
		{name: "field not array", body: `{"properties":{"id":"A"}}`, fail: true},
		{name: "field null", body: `{"properties":null}`, fail: true},
		{name: "elements not objects", body: `[1,2,3]`, fail: true},
		{name: "wrong field type", body: `[{"id":"A","price":"cheap"}]`, fail: true},
		{name: "truncated", body: `[{"id":"A"`, fail: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := DecodeListings([]byte(tc.body))
			if tc.fail {
				if !errors.Is(err, ErrUnrecognizedShape) {
					t.Fatalf("expected ErrUnrecognizedShape, got %v (%+v)", err, d)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if d.Shape != tc.shape || len(d.Listings) != tc.n || d.Listings == nil {
				t.Fatalf("got shape=%s n=%d nil=%v", d.Shape, len(d.Listings), d.Listings == nil)
			}
		})
	}
}

func TestShapeString(t *testing.T) {
	if ShapeBareArray.String() != "bare_array" || ShapeWrapped.String() != "wrapped" || ShapeUnknown.String() != "unknown" {
		t.Fatalf("unexpected shape names")
	}
}
