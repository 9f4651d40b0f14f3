package graph

import (
	"strings"

	"golang.org/x/oauth2"
)

const (
	// GraphEndpointURL is the Facebook Graph API base
	GraphEndpointURL = "https://graph.facebook.com"
	// FacebookEndpointURL hosts the Facebook login dialog
	FacebookEndpointURL = "https://www.facebook.com"
	// InstagramAPIEndpointURL hosts the Instagram authorize dialog and code exchange
	InstagramAPIEndpointURL = "https://api.instagram.com"
	// InstagramGraphEndpointURL hosts the Instagram graph and long-lived token endpoints
	InstagramGraphEndpointURL = "https://graph.instagram.com"
)

// EndpointURLs resolves the base URL of each API family.
type EndpointURLs interface {
	GraphEndpoint() string
	FacebookEndpoint() string
	InstagramAPIEndpoint() string
	InstagramGraphEndpoint() string
}

// ServerEndpoints are the production endpoints.
type ServerEndpoints struct{}

func (ServerEndpoints) GraphEndpoint() string          { return GraphEndpointURL }
func (ServerEndpoints) FacebookEndpoint() string       { return FacebookEndpointURL }
func (ServerEndpoints) InstagramAPIEndpoint() string   { return InstagramAPIEndpointURL }
func (ServerEndpoints) InstagramGraphEndpoint() string { return InstagramGraphEndpointURL }

// CustomEndpoints overrides individual base URLs; empty fields fall back
// to the production endpoints. Trailing slashes are ignored.
type CustomEndpoints struct {
	Graph          string
	Facebook       string
	InstagramAPI   string
	InstagramGraph string
}

func (e CustomEndpoints) GraphEndpoint() string {
	return orDefault(e.Graph, GraphEndpointURL)
}

func (e CustomEndpoints) FacebookEndpoint() string {
	return orDefault(e.Facebook, FacebookEndpointURL)
}

func (e CustomEndpoints) InstagramAPIEndpoint() string {
	return orDefault(e.InstagramAPI, InstagramAPIEndpointURL)
}

func (e CustomEndpoints) InstagramGraphEndpoint() string {
	return orDefault(e.InstagramGraph, InstagramGraphEndpointURL)
}

// SingleHost points every API family at one base URL, typically an httptest server.
func SingleHost(base string) CustomEndpoints {
	return CustomEndpoints{Graph: base, Facebook: base, InstagramAPI: base, InstagramGraph: base}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return strings.TrimRight(v, "/")
}

// joinPath builds base[/version]/path.
func joinPath(base string, version Version, path string) string {
	base = strings.TrimRight(base, "/")
	path = strings.TrimLeft(path, "/")
	if version.InPath() {
		return base + "/" + string(version) + "/" + path
	}
	return base + "/" + path
}

// Endpoint describes the authorization-code endpoints of a variant as an
// oauth2.Endpoint, for callers that drive the flow with oauth2.Config.
func Endpoint(endpoints EndpointURLs, version Version, instagram bool) oauth2.Endpoint {
	if endpoints == nil {
		endpoints = ServerEndpoints{}
	}
	if instagram {
		return oauth2.Endpoint{
			AuthURL:   joinPath(endpoints.InstagramAPIEndpoint(), Unversioned, "oauth/authorize"),
			TokenURL:  joinPath(endpoints.InstagramAPIEndpoint(), Unversioned, "oauth/access_token"),
			AuthStyle: oauth2.AuthStyleInParams,
		}
	}
	return oauth2.Endpoint{
		AuthURL:   joinPath(endpoints.FacebookEndpoint(), version, "dialog/oauth"),
		TokenURL:  joinPath(endpoints.GraphEndpoint(), version, "oauth/access_token"),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}
