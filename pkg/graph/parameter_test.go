package graph

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  string
	}{
		{name: "string", value: "hello world", want: "hello world"},
		{name: "string slice", value: []string{"id", "name"}, want: "id,name"},
		{name: "bool", value: true, want: "true"},
		{name: "int", value: 42, want: "42"},
		{name: "int64", value: int64(-7), want: "-7"},
		{name: "float", value: 1.5, want: "1.5"},
		{name: "time", value: time.Unix(1700000000, 0), want: "1700000000"},
		{name: "version", value: Version("v20.0"), want: "v20.0"},
		{name: "map", value: map[string]int{"a": 1}, want: `{"a":1}`},
		{name: "nil", value: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, With("p", tt.value).Value)
		})
	}
}

func TestAppendQuery(t *testing.T) {
	params := []Parameter{With("a", "1 2"), With("a", "&")}

	assert.Equal(t, "https://x/y", appendQuery("https://x/y", nil))
	assert.Equal(t, "https://x/y?a=1+2&a=%26", appendQuery("https://x/y", params))
	assert.Equal(t, "https://x/y?z=0&a=1+2&a=%26", appendQuery("https://x/y?z=0", params))
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("v19.0")
	require.NoError(t, err)
	assert.True(t, v.InPath())

	v, err = ParseVersion("")
	require.NoError(t, err)
	assert.Equal(t, Unversioned, v)
	assert.False(t, v.InPath())
	assert.Equal(t, "unversioned", v.String())

	for _, bad := range []string{"19.0", "v19", "latest"} {
		_, err := ParseVersion(bad)
		assert.Error(t, err, bad)
	}
}

func TestEndpoint(t *testing.T) {
	fb := Endpoint(nil, "v20.0", false)
	assert.Equal(t, "https://www.facebook.com/v20.0/dialog/oauth", fb.AuthURL)
	assert.Equal(t, "https://graph.facebook.com/v20.0/oauth/access_token", fb.TokenURL)

	ig := Endpoint(CustomEndpoints{InstagramAPI: "http://localhost:8080/"}, "v20.0", true)
	assert.Equal(t, "http://localhost:8080/oauth/authorize", ig.AuthURL)
	assert.Equal(t, "http://localhost:8080/oauth/access_token", ig.TokenURL)
}
