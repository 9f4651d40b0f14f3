package graph

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "graphkit/pkg/errors"
)

func TestTokenSource_ReusesValidToken(t *testing.T) {
	stub := newStub(http.StatusOK, longLivedBody)
	ig := NewInstagramClient("", "", DefaultVersion, testOptions(stub)...)

	current := &AccessToken{AccessToken: "IGQVJcurrent", Expires: time.Now().Add(time.Hour)}
	ts := NewTokenSource(context.Background(), ig, current, RefreshInstagram)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "IGQVJcurrent", tok.AccessToken)
	assert.Empty(t, stub.Calls())
}

func TestTokenSource_RefreshesExpiredToken(t *testing.T) {
	stub := newStub(http.StatusOK, longLivedBody)
	ig := NewInstagramClient("", "", DefaultVersion, append(testOptions(stub), WithClock(time.Now))...)

	current := &AccessToken{AccessToken: "IGQVJstale", Expires: time.Now().Add(-time.Minute)}
	ts := NewTokenSource(context.Background(), ig, current, RefreshInstagram)

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "IGQVJlong", tok.AccessToken)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	held, _ := calls[0].param("access_token")
	assert.Equal(t, "IGQVJstale", held)

	// The renewed token is valid for weeks, so no further calls.
	_, err = ts.Token()
	require.NoError(t, err)
	assert.Len(t, stub.Calls(), 1)
}

func TestTokenSource_PropagatesRenewError(t *testing.T) {
	stub := newStub(http.StatusOK, longLivedBody)
	c := NewClient("EAAshort", "", DefaultVersion, testOptions(stub)...)

	ts := NewTokenSource(context.Background(), c, nil, RefreshInstagram)

	_, err := ts.Token()
	assert.True(t, errs.Is(err, errs.ErrorTypeUnsupported))
}

func TestTokenSource_ExchangeFacebook(t *testing.T) {
	stub := newStub(http.StatusOK, `{"access_token":"EAAlong","expires_in":5183999}`)
	c := NewClient("", "", DefaultVersion, append(testOptions(stub), WithClock(time.Now))...)

	current := &AccessToken{AccessToken: "EAAshort", Expires: time.Now().Add(-time.Second)}
	ts := NewTokenSource(context.Background(), c, current, ExchangeFacebook("app", "secret"))

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "EAAlong", tok.AccessToken)

	exchanged, _ := stub.Calls()[0].param("fb_exchange_token")
	assert.Equal(t, "EAAshort", exchanged)
}
