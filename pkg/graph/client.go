package graph

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	errs "graphkit/pkg/errors"
	"graphkit/pkg/graph/scope"
	"graphkit/pkg/logger"
)

// TokenClient is the operation set shared by both API variants.
type TokenClient interface {
	// FetchObject GETs object (an id or path such as "me/ratings") into target.
	FetchObject(ctx context.Context, object string, target interface{}, params ...Parameter) error
	// Publish POSTs params to connection and decodes the response into target, which may be nil.
	Publish(ctx context.Context, connection string, target interface{}, params ...Parameter) error

	ObtainUserAccessToken(ctx context.Context, clientID, clientSecret, redirectURI, code string) (*AccessToken, error)
	ObtainExtendedAccessToken(ctx context.Context, appSecret string) (*AccessToken, error)
	ObtainExtendedAccessTokenForApp(ctx context.Context, appID, appSecret string) (*AccessToken, error)
	ObtainRefreshedExtendedAccessToken(ctx context.Context) (*AccessToken, error)
	ObtainAppAccessToken(ctx context.Context, appID, appSecret string) (*AccessToken, error)

	LoginDialogURL(appID, redirectURI string, permissions *scope.Builder, state string, params ...Parameter) (string, error)
	CreateClientWithAccessToken(accessToken string) TokenClient

	AccessToken() string
	Version() Version
	UsesInstagramAPI() bool
}

// Client talks to the Facebook Graph API. It holds no mutable state after
// construction and is safe for concurrent use when its requestor is.
type Client struct {
	accessToken string
	appSecret   string
	version     Version
	requestor   WebRequestor
	mapper      JSONMapper
	endpoints   EndpointURLs
	logger      logger.Logger
	now         func() time.Time
	variant     *variant
}

// Option configures a client.
type Option func(*Client)

func WithWebRequestor(r WebRequestor) Option {
	return func(c *Client) { c.requestor = r }
}

func WithJSONMapper(m JSONMapper) Option {
	return func(c *Client) { c.mapper = m }
}

func WithEndpoints(e EndpointURLs) Option {
	return func(c *Client) { c.endpoints = e }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithClock overrides the time source used to compute token expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a Facebook Graph API client. accessToken and appSecret
// may be empty; version defaults to DefaultVersion.
func NewClient(accessToken, appSecret string, version Version, opts ...Option) *Client {
	return newClient(facebookVariant, accessToken, appSecret, version, opts)
}

func newClient(v *variant, accessToken, appSecret string, version Version, opts []Option) *Client {
	if version == Unversioned {
		version = DefaultVersion
	}
	c := &Client{
		accessToken: accessToken,
		appSecret:   appSecret,
		version:     version,
		mapper:      DefaultJSONMapper{},
		endpoints:   ServerEndpoints{},
		now:         time.Now,
		variant:     v,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.GetLogger()
	}
	if c.requestor == nil {
		c.requestor = NewDefaultWebRequestor(WithRequestorLogger(c.logger))
	}
	c.logger = c.logger.WithField("variant", v.name)
	return c
}

// clone copies c with a different access token; collaborators are shared.
func (c *Client) clone(accessToken string) *Client {
	cp := *c
	cp.accessToken = accessToken
	return &cp
}

func (c *Client) AccessToken() string    { return c.accessToken }
func (c *Client) Version() Version       { return c.version }
func (c *Client) UsesInstagramAPI() bool { return c.variant.instagram }

func (c *Client) CreateClientWithAccessToken(accessToken string) TokenClient {
	return c.clone(accessToken)
}

func (c *Client) FetchObject(ctx context.Context, object string, target interface{}, params ...Parameter) error {
	if isBlank(object) {
		return errs.NewValidation("object")
	}
	return c.call(ctx, http.MethodGet, object, target, params)
}

func (c *Client) Publish(ctx context.Context, connection string, target interface{}, params ...Parameter) error {
	if isBlank(connection) {
		return errs.NewValidation("connection")
	}
	return c.call(ctx, http.MethodPost, connection, target, params)
}

func (c *Client) call(ctx context.Context, method, path string, target interface{}, params []Parameter) error {
	endpoint := joinPath(c.variant.graphBase(c.endpoints), c.version, path)
	body, err := c.makeRequest(ctx, method, endpoint, c.signedParameters(params))
	if err != nil {
		return err
	}
	if target == nil {
		return nil
	}
	if err := c.mapper.ToObject(body, target); err != nil {
		return errs.NewResponseContent("cannot map response to "+path, err)
	}
	return nil
}

// signedParameters appends the held token and, when a secret is also held,
// its appsecret_proof.
func (c *Client) signedParameters(params []Parameter) []Parameter {
	if c.accessToken == "" {
		return params
	}
	out := make([]Parameter, 0, len(params)+2)
	out = append(out, params...)
	out = append(out, Parameter{Name: "access_token", Value: c.accessToken})
	if c.appSecret != "" {
		out = append(out, Parameter{Name: "appsecret_proof", Value: AppSecretProof(c.accessToken, c.appSecret)})
	}
	return out
}

// AppSecretProof is hex(HMAC-SHA256(appSecret, accessToken)).
func AppSecretProof(accessToken, appSecret string) string {
	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

// makeRequest performs one exchange and returns the body of a 2xx response.
func (c *Client) makeRequest(ctx context.Context, method, endpoint string, params []Parameter) (string, error) {
	req := &Request{URL: endpoint, Parameters: params}

	var (
		resp *Response
		err  error
	)
	if method == http.MethodPost {
		resp, err = c.requestor.ExecutePost(ctx, req)
	} else {
		resp, err = c.requestor.ExecuteGet(ctx, req)
	}
	if err != nil {
		return "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := translateError(resp)
		c.logger.WithError(apiErr).WarnWithFields("graph request rejected", map[string]interface{}{
			"method": method,
			"url":    endpoint,
			"status": resp.StatusCode,
			"type":   string(apiErr.Type),
		})
		return "", apiErr
	}
	return resp.Body, nil
}

func (c *Client) ObtainUserAccessToken(ctx context.Context, clientID, clientSecret, redirectURI, code string) (*AccessToken, error) {
	// Blank inputs are reported in this order; the wire order below differs.
	for _, p := range []Parameter{
		{Name: "client_id", Value: clientID},
		{Name: "client_secret", Value: clientSecret},
		{Name: "code", Value: code},
		{Name: "redirect_uri", Value: redirectURI},
	} {
		if isBlank(p.Value) {
			return nil, errs.NewValidation(p.Name)
		}
	}
	return c.obtainToken(ctx, GrantAuthorizationCode,
		Parameter{Name: "client_id", Value: clientID},
		Parameter{Name: "client_secret", Value: clientSecret},
		Parameter{Name: "redirect_uri", Value: redirectURI},
		Parameter{Name: "code", Value: code},
	)
}

// ObtainExtendedAccessToken is not available on Facebook, which needs the
// app id as well; use ObtainExtendedAccessTokenForApp.
func (c *Client) ObtainExtendedAccessToken(ctx context.Context, appSecret string) (*AccessToken, error) {
	return nil, errs.NewUnsupported("the Facebook Graph API requires an app id to extend an access token")
}

func (c *Client) ObtainExtendedAccessTokenForApp(ctx context.Context, appID, appSecret string) (*AccessToken, error) {
	return c.obtainToken(ctx, GrantExchange,
		Parameter{Name: "client_id", Value: appID},
		Parameter{Name: "client_secret", Value: appSecret},
	)
}

func (c *Client) ObtainRefreshedExtendedAccessToken(ctx context.Context) (*AccessToken, error) {
	return c.obtainToken(ctx, GrantRefresh)
}

func (c *Client) ObtainAppAccessToken(ctx context.Context, appID, appSecret string) (*AccessToken, error) {
	return c.obtainToken(ctx, GrantClientCredentials,
		Parameter{Name: "client_id", Value: appID},
		Parameter{Name: "client_secret", Value: appSecret},
	)
}

// obtainToken validates required in order, then performs the grant's single
// round trip and parses the token body.
func (c *Client) obtainToken(ctx context.Context, grant Grant, required ...Parameter) (*AccessToken, error) {
	spec, ok := c.variant.grants[grant]
	if !ok {
		return nil, errs.NewUnsupported(grant.String() + " is not supported by the " + c.variant.name + " API")
	}

	for _, p := range required {
		if isBlank(p.Value) {
			return nil, errs.NewValidation(p.Name)
		}
	}
	if spec.tokenParam != "" && isBlank(c.accessToken) {
		return nil, errs.NewValidation("access_token")
	}

	params := make([]Parameter, 0, len(required)+3)
	params = append(params, required...)
	if spec.marker != "" {
		params = append(params, Parameter{Name: "grant_type", Value: spec.marker})
	}
	if spec.tokenParam != "" {
		params = append(params, Parameter{Name: spec.tokenParam, Value: c.accessToken})
	}
	if len(spec.fields) > 0 {
		params = append(params, WithFields(spec.fields...))
	}

	endpoint := spec.url(c.endpoints, c.version)
	c.logger.DebugWithFields("requesting access token", map[string]interface{}{
		"grant": grant.String(),
		"url":   endpoint,
	})

	body, err := c.makeRequest(ctx, spec.method, endpoint, params)
	if err != nil {
		return nil, err
	}

	tok, err := parseAccessToken(c.mapper, body, c.now())
	if err != nil {
		return nil, errs.NewResponseContent(CannotExtractAccessTokenMessage, err)
	}
	c.logger.InfoWithFields("access token obtained", map[string]interface{}{
		"grant":      grant.String(),
		"expires_in": tok.ExpiresIn,
	})
	return tok, nil
}

func (c *Client) LoginDialogURL(appID, redirectURI string, permissions *scope.Builder, state string, params ...Parameter) (string, error) {
	return c.loginDialogURL(appID, redirectURI, permissions, state, params)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
