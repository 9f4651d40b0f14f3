package graph

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	errs "graphkit/pkg/errors"
	"graphkit/pkg/graph/scope"
	"graphkit/pkg/graph/types"
)

func TestClient_FetchObject_MapsRating(t *testing.T) {
	stub := newStub(http.StatusOK, `{"id":"1_2","rating":5,"has_rating":true,"reviewer":{"id":"9","name":"Ana"}}`)
	c := NewClient("EAAtoken", "", DefaultVersion, testOptions(stub)...)

	var rating types.OpenGraphRating
	err := c.FetchObject(context.Background(), "1_2", &rating, WithFields(types.OpenGraphRatingFields...))
	require.NoError(t, err)

	assert.False(t, rating.IsRecommendation())
	assert.Equal(t, 5, *rating.Rating)
	assert.Equal(t, "Ana", rating.Reviewer.Name)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "https://graph.test/v20.0/1_2", calls[0].URL)
	token, _ := calls[0].param("access_token")
	assert.Equal(t, "EAAtoken", token)
}

func TestClient_AppSecretProof(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		secret    string
		wantProof bool
	}{
		{name: "token and secret", token: "EAAtoken", secret: "s3cret", wantProof: true},
		{name: "token only", token: "EAAtoken"},
		{name: "secret only", secret: "s3cret"},
		{name: "neither"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := newStub(http.StatusOK, `{}`)
			c := NewClient(tt.token, tt.secret, DefaultVersion, testOptions(stub)...)

			require.NoError(t, c.FetchObject(context.Background(), "me", nil))

			proof, ok := stub.Calls()[0].param("appsecret_proof")
			assert.Equal(t, tt.wantProof, ok)
			if tt.wantProof {
				assert.Equal(t, AppSecretProof(tt.token, tt.secret), proof)
			}
		})
	}
}

func TestAppSecretProof_KnownValue(t *testing.T) {
	// HMAC-SHA256("key", "The quick brown fox jumps over the lazy dog")
	assert.Equal(t,
		"f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		AppSecretProof("The quick brown fox jumps over the lazy dog", "key"))
}

func TestClient_DuplicateParametersReachTheWire(t *testing.T) {
	stub := newStub(http.StatusOK, `{"id":"1"}`)
	c := NewClient("", "", DefaultVersion, testOptions(stub)...)

	params := []Parameter{With("message", "a"), With("message", "b")}
	require.NoError(t, c.Publish(context.Background(), "me/feed", nil, params...))

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, params, calls[0].Params)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantType errs.ErrorType
		wantCode int
	}{
		{
			name:     "oauth exception",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Error validating access token","type":"OAuthException","code":190,"error_subcode":463,"fbtrace_id":"AbC"}}`,
			wantType: errs.ErrorTypeOAuth,
			wantCode: 190,
		},
		{
			name:     "application throttled",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Application request limit reached","type":"GraphMethodException","code":4}}`,
			wantType: errs.ErrorTypeRateLimit,
			wantCode: 4,
		},
		{
			name:     "page throttled",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Page request limit reached","code":32}}`,
			wantType: errs.ErrorTypeRateLimit,
			wantCode: 32,
		},
		{
			name:     "generic graph error",
			status:   http.StatusBadRequest,
			body:     `{"error":{"message":"Unsupported get request","type":"GraphMethodException","code":100}}`,
			wantType: errs.ErrorTypeGraph,
			wantCode: 100,
		},
		{
			name:     "envelope on 500",
			status:   http.StatusInternalServerError,
			body:     `{"error":{"message":"An unknown error has occurred.","type":"GraphMethodException","code":1}}`,
			wantType: errs.ErrorTypeServerError,
			wantCode: 1,
		},
		{
			name:     "legacy instagram body",
			status:   http.StatusBadRequest,
			body:     `{"error_type":"OAuthException","code":400,"error_message":"Invalid authorization code"}`,
			wantType: errs.ErrorTypeOAuth,
			wantCode: 400,
		},
		{
			name:     "bare 404",
			status:   http.StatusNotFound,
			body:     `not found`,
			wantType: errs.ErrorTypeNotFound,
			wantCode: 404,
		},
		{
			name:     "bare 429",
			status:   http.StatusTooManyRequests,
			wantType: errs.ErrorTypeRateLimit,
			wantCode: 429,
		},
		{
			name:     "bare 502",
			status:   http.StatusBadGateway,
			wantType: errs.ErrorTypeServerError,
			wantCode: 502,
		},
		{
			name:     "bare 400",
			status:   http.StatusBadRequest,
			body:     `{}`,
			wantType: errs.ErrorTypeUnknown,
			wantCode: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("EAAtoken", "", DefaultVersion, testOptions(newStub(tt.status, tt.body))...)

			err := c.FetchObject(context.Background(), "me", &struct{}{})

			var apiErr *errs.Error
			require.True(t, errors.As(err, &apiErr), "got %v", err)
			assert.Equal(t, tt.wantType, apiErr.Type)
			assert.Equal(t, tt.wantCode, apiErr.Code)
		})
	}
}

func TestClient_ErrorEnvelope_KeepsTraceDetails(t *testing.T) {
	body := `{"error":{"message":"Error validating access token","type":"OAuthException","code":190,"error_subcode":463,"fbtrace_id":"AbC"}}`
	c := NewClient("EAAtoken", "", DefaultVersion, testOptions(newStub(http.StatusBadRequest, body))...)

	_, err := c.ObtainExtendedAccessTokenForApp(context.Background(), "app", "secret")

	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 463, apiErr.Subcode)
	assert.Equal(t, "AbC", apiErr.TraceID)
	assert.Equal(t, "Error validating access token", apiErr.Message)
}

func TestClient_TransportErrorPassesThrough(t *testing.T) {
	stub := newStub(0, "")
	stub.err = &errs.Error{Type: errs.ErrorTypeNetwork, Message: "connection refused"}
	c := NewClient("EAAtoken", "", DefaultVersion, testOptions(stub)...)

	err := c.FetchObject(context.Background(), "me", nil)
	assert.True(t, errs.Is(err, errs.ErrorTypeNetwork))
}

func TestClient_UnmappableBody(t *testing.T) {
	c := NewClient("EAAtoken", "", DefaultVersion, testOptions(newStub(http.StatusOK, `[1,2`))...)

	var target map[string]interface{}
	err := c.FetchObject(context.Background(), "me", &target)
	assert.True(t, errs.Is(err, errs.ErrorTypeResponseContent))
}

func TestClient_BlankObject(t *testing.T) {
	stub := newStub(http.StatusOK, `{}`)
	c := NewClient("EAAtoken", "", DefaultVersion, testOptions(stub)...)

	assert.True(t, errs.Is(c.FetchObject(context.Background(), " ", nil), errs.ErrorTypeValidation))
	assert.True(t, errs.Is(c.Publish(context.Background(), "", nil), errs.ErrorTypeValidation))
	assert.Empty(t, stub.Calls())
}

func TestClient_ObtainUserAccessToken(t *testing.T) {
	stub := newStub(http.StatusOK, `{"access_token":"EAAshort","token_type":"bearer","expires_in":5183999}`)
	c := NewClient("", "", DefaultVersion, testOptions(stub)...)

	tok, err := c.ObtainUserAccessToken(context.Background(), "app", "secret", "https://cb", "c0de")
	require.NoError(t, err)
	assert.Equal(t, "EAAshort", tok.AccessToken)

	calls := stub.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, http.MethodGet, calls[0].Method)
	assert.Equal(t, "https://graph.test/v20.0/oauth/access_token", calls[0].URL)
	_, hasGrant := calls[0].param("grant_type")
	assert.False(t, hasGrant)
}

func TestClient_ObtainExtendedAccessTokenForApp(t *testing.T) {
	stub := newStub(http.StatusOK, `access_token=EAAlong&expires=5183999`)
	c := NewClient("EAAshort", "", DefaultVersion, testOptions(stub)...)

	tok, err := c.ObtainExtendedAccessTokenForApp(context.Background(), "app", "secret")
	require.NoError(t, err)
	assert.Equal(t, "EAAlong", tok.AccessToken)
	assert.Equal(t, int64(5183999), tok.ExpiresIn)

	call := stub.Calls()[0]
	grant, _ := call.param("grant_type")
	assert.Equal(t, "fb_exchange_token", grant)
	exchanged, _ := call.param("fb_exchange_token")
	assert.Equal(t, "EAAshort", exchanged)
	clientID, _ := call.param("client_id")
	assert.Equal(t, "app", clientID)
}

func TestClient_ObtainExtendedAccessTokenForApp_NeedsHeldToken(t *testing.T) {
	stub := newStub(http.StatusOK, `{}`)
	c := NewClient("", "", DefaultVersion, testOptions(stub)...)

	_, err := c.ObtainExtendedAccessTokenForApp(context.Background(), "app", "secret")
	var apiErr *errs.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, errs.ErrorTypeValidation, apiErr.Type)
	assert.Equal(t, "access_token", apiErr.Param)
	assert.Empty(t, stub.Calls())
}

func TestClient_UnsupportedOnFacebook(t *testing.T) {
	stub := newStub(http.StatusOK, `{"access_token":"x"}`)
	c := NewClient("EAAtoken", "secret", DefaultVersion, testOptions(stub)...)

	_, err := c.ObtainExtendedAccessToken(context.Background(), "secret")
	assert.True(t, errs.Is(err, errs.ErrorTypeUnsupported))

	_, err = c.ObtainRefreshedExtendedAccessToken(context.Background())
	assert.True(t, errs.Is(err, errs.ErrorTypeUnsupported))

	assert.Empty(t, stub.Calls())
}

func TestClient_ObtainAppAccessToken(t *testing.T) {
	stub := newStub(http.StatusOK, `{"access_token":"app|token","token_type":"bearer"}`)
	c := NewClient("", "", DefaultVersion, testOptions(stub)...)

	tok, err := c.ObtainAppAccessToken(context.Background(), "app", "secret")
	require.NoError(t, err)
	assert.Equal(t, "app|token", tok.AccessToken)
	assert.True(t, tok.Expires.IsZero())

	grant, _ := stub.Calls()[0].param("grant_type")
	assert.Equal(t, "client_credentials", grant)
}

func TestClient_LoginDialogURL(t *testing.T) {
	c := NewClient("", "", "v19.0", testOptions(newStub(http.StatusOK, ""))...)

	raw, err := c.LoginDialogURL("app1", "https://cb", scope.New(scope.Email, scope.PublicProfile), "st")
	require.NoError(t, err)
	assert.Equal(t,
		"https://graph.test/v19.0/dialog/oauth?client_id=app1&redirect_uri=https%3A%2F%2Fcb&scope=email%2Cpublic_profile&state=st",
		raw)
	assert.NotContains(t, raw, "response_type")

	_, err = c.LoginDialogURL("app1", " ", nil, "")
	assert.True(t, errs.Is(err, errs.ErrorTypeValidation))
}

func TestClient_CreateClientWithAccessToken(t *testing.T) {
	c := NewClient("old", "secret", DefaultVersion, testOptions(newStub(http.StatusOK, ""))...)

	next := c.CreateClientWithAccessToken("new")
	_, isInstagram := next.(*InstagramClient)
	assert.False(t, isInstagram)
	assert.False(t, next.UsesInstagramAPI())
	assert.Equal(t, "new", next.AccessToken())
	assert.Equal(t, "old", c.AccessToken())
}

func TestNewClient_DefaultVersion(t *testing.T) {
	c := NewClient("", "", Unversioned, testOptions(newStub(http.StatusOK, ""))...)
	assert.Equal(t, DefaultVersion, c.Version())
}
