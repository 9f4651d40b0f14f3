package graph

import (
	"net/http"
)

// Grant identifies one of the token flows.
type Grant int

const (
	GrantAuthorizationCode Grant = iota
	GrantExchange
	GrantRefresh
	GrantClientCredentials
)

func (g Grant) String() string {
	switch g {
	case GrantAuthorizationCode:
		return "authorization_code"
	case GrantExchange:
		return "token_exchange"
	case GrantRefresh:
		return "token_refresh"
	case GrantClientCredentials:
		return "client_credentials"
	default:
		return "unknown_grant"
	}
}

// tokenFields restricts extended and refreshed token responses.
var tokenFields = []string{"access_token", "expires_in", "token_type"}

// grantSpec describes the single round trip of a grant.
type grantSpec struct {
	// marker is the grant_type value; empty means the parameter is not sent.
	marker string
	method string
	base   func(EndpointURLs) string
	path   string
	// versioned puts the client version in the path.
	versioned bool
	// tokenParam, when set, sends the held access token under this name
	// and makes it required.
	tokenParam string
	fields     []string
}

func (s grantSpec) url(e EndpointURLs, v Version) string {
	if !s.versioned {
		v = Unversioned
	}
	return joinPath(s.base(e), v, s.path)
}

// variant is the per-API dispatch table. Grants absent from the table are
// unsupported.
type variant struct {
	name      string
	instagram bool
	graphBase func(EndpointURLs) string
	grants    map[Grant]grantSpec
}

var facebookVariant = &variant{
	name:      "facebook",
	graphBase: EndpointURLs.GraphEndpoint,
	grants: map[Grant]grantSpec{
		GrantAuthorizationCode: {
			method:    http.MethodGet,
			base:      EndpointURLs.GraphEndpoint,
			path:      "oauth/access_token",
			versioned: true,
		},
		GrantExchange: {
			marker:     "fb_exchange_token",
			method:     http.MethodGet,
			base:       EndpointURLs.GraphEndpoint,
			path:       "oauth/access_token",
			versioned:  true,
			tokenParam: "fb_exchange_token",
		},
		GrantClientCredentials: {
			marker:    "client_credentials",
			method:    http.MethodGet,
			base:      EndpointURLs.GraphEndpoint,
			path:      "oauth/access_token",
			versioned: true,
		},
	},
}

var instagramVariant = &variant{
	name:      "instagram",
	instagram: true,
	graphBase: EndpointURLs.InstagramGraphEndpoint,
	grants: map[Grant]grantSpec{
		GrantAuthorizationCode: {
			marker: "authorization_code",
			method: http.MethodPost,
			base:   EndpointURLs.InstagramAPIEndpoint,
			path:   "oauth/access_token",
		},
		GrantExchange: {
			marker:     "ig_exchange_token",
			method:     http.MethodGet,
			base:       EndpointURLs.InstagramGraphEndpoint,
			path:       "access_token",
			versioned:  true,
			tokenParam: "access_token",
			fields:     tokenFields,
		},
		GrantRefresh: {
			marker:     "ig_refresh_token",
			method:     http.MethodGet,
			base:       EndpointURLs.InstagramGraphEndpoint,
			path:       "refresh_access_token",
			versioned:  true,
			tokenParam: "access_token",
			fields:     tokenFields,
		},
	},
}
