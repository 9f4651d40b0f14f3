package graph

import (
	"context"

	"golang.org/x/oauth2"
)

// RenewFunc obtains a replacement for the token held by client.
type RenewFunc func(ctx context.Context, client TokenClient) (*AccessToken, error)

// RefreshInstagram renews with the Instagram refresh grant.
func RefreshInstagram(ctx context.Context, client TokenClient) (*AccessToken, error) {
	return client.ObtainRefreshedExtendedAccessToken(ctx)
}

// ExchangeFacebook renews by exchanging the held token for a long-lived one.
func ExchangeFacebook(appID, appSecret string) RenewFunc {
	return func(ctx context.Context, client TokenClient) (*AccessToken, error) {
		return client.ObtainExtendedAccessTokenForApp(ctx, appID, appSecret)
	}
}

// NewTokenSource returns an oauth2.TokenSource that hands out current until
// it nears expiry and then calls renew with a client holding the latest
// token. current may be nil, in which case the first call renews.
func NewTokenSource(ctx context.Context, client TokenClient, current *AccessToken, renew RenewFunc) oauth2.TokenSource {
	var initial *oauth2.Token
	if current != nil {
		initial = current.OAuth2Token()
		client = client.CreateClientWithAccessToken(current.AccessToken)
	}
	return oauth2.ReuseTokenSource(initial, &renewingSource{ctx: ctx, client: client, renew: renew})
}

// renewingSource is only called under the ReuseTokenSource lock.
type renewingSource struct {
	ctx    context.Context
	client TokenClient
	renew  RenewFunc
}

func (s *renewingSource) Token() (*oauth2.Token, error) {
	tok, err := s.renew(s.ctx, s.client)
	if err != nil {
		return nil, err
	}
	s.client = s.client.CreateClientWithAccessToken(tok.AccessToken)
	return tok.OAuth2Token(), nil
}
