package graph

import (
	"context"

	errs "graphkit/pkg/errors"
)

// InstagramClient talks to the Instagram API. It shares the request
// machinery of Client and differs in its grant table, its login dialog and
// the overloads it rejects.
type InstagramClient struct {
	*Client
}

// NewInstagramClient creates an Instagram API client. accessToken and
// appSecret may be empty; version defaults to DefaultVersion.
func NewInstagramClient(accessToken, appSecret string, version Version, opts ...Option) *InstagramClient {
	return &InstagramClient{Client: newClient(instagramVariant, accessToken, appSecret, version, opts)}
}

func (c *InstagramClient) CreateClientWithAccessToken(accessToken string) TokenClient {
	return &InstagramClient{Client: c.Client.clone(accessToken)}
}

// ObtainExtendedAccessToken exchanges the held short-lived token for a
// long-lived one.
func (c *InstagramClient) ObtainExtendedAccessToken(ctx context.Context, appSecret string) (*AccessToken, error) {
	return c.obtainToken(ctx, GrantExchange,
		Parameter{Name: "client_secret", Value: appSecret},
	)
}

// ObtainExtendedAccessTokenForApp is not available: the Instagram exchange
// identifies the app by its secret alone.
func (c *InstagramClient) ObtainExtendedAccessTokenForApp(ctx context.Context, appID, appSecret string) (*AccessToken, error) {
	return nil, errs.NewUnsupported("the Instagram API extends tokens with the app secret only; use ObtainExtendedAccessToken")
}

func (c *InstagramClient) ObtainAppAccessToken(ctx context.Context, appID, appSecret string) (*AccessToken, error) {
	return nil, errs.NewUnsupported("the Instagram API has no app access tokens")
}
