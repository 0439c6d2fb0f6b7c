package client

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID string `json:"id"`
}

func TestDecodeListShapes(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []item
	}{
		{"envelope", `{"agents": [{"id": "1"}, {"id": "2"}], "total": 2}`, []item{{"1"}, {"2"}}},
		{"bare array", ` [{"id": "3"}]`, []item{{"3"}}},
		{"missing key", `{"total": 0}`, []item{}},
		{"null key", `{"agents": null}`, []item{}},
		{"null body", `null`, []item{}},
		{"empty body", ``, []item{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DecodeList[item](json.RawMessage(tc.raw), "agents")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeListRejectsScalars(t *testing.T) {
	_, err := DecodeList[item](json.RawMessage(`"nope"`), "agents")
	assert.Error(t, err)

	_, err = DecodeList[item](json.RawMessage(`{"agents": 7}`), "agents")
	assert.Error(t, err)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 30, 0, 500000000, time.UTC)
	assert.True(t, want.Equal(ParseTime("2024-05-01T12:30:00.5Z")))
	assert.True(t, want.Equal(ParseTime("2024-05-01T12:30:00.500000")))
	assert.True(t, want.Equal(ParseTime("2024-05-01T15:30:00.5+03:00")))
	assert.True(t, ParseTime("yesterday").IsZero())
	assert.True(t, ParseTime("").IsZero())
}

func TestErrorBody(t *testing.T) {
	body := map[string]any{"detail": "x"}
	assert.Equal(t, body, ErrorBody(&APIError{Status: 500, Body: body}))
	assert.Nil(t, ErrorBody(errors.New("dial tcp: refused")))
	assert.Nil(t, ErrorBody(nil))
}
