package graph

import (
	errs "graphkit/pkg/errors"
	"graphkit/pkg/graph/scope"
)

// loginDialogURL assembles the authorization dialog URL. No network call
// is made. Parameter order: client_id, redirect_uri, scope, state, extras,
// then the Instagram response_type marker.
func (c *Client) loginDialogURL(appID, redirectURI string, permissions *scope.Builder, state string, extra []Parameter) (string, error) {
	if isBlank(appID) {
		return "", errs.NewValidation("app_id")
	}
	if isBlank(redirectURI) {
		return "", errs.NewValidation("redirect_uri")
	}

	params := []Parameter{
		{Name: "client_id", Value: appID},
		{Name: "redirect_uri", Value: redirectURI},
	}
	if s := permissions.String(); s != "" {
		params = append(params, Parameter{Name: "scope", Value: s})
	}
	if state != "" {
		params = append(params, Parameter{Name: "state", Value: state})
	}
	params = append(params, extra...)

	var base string
	if c.variant.instagram {
		params = append(params, Parameter{Name: "response_type", Value: "code"})
		base = joinPath(c.endpoints.InstagramAPIEndpoint(), Unversioned, "oauth/authorize")
	} else {
		base = joinPath(c.endpoints.FacebookEndpoint(), c.version, "dialog/oauth")
	}
	return appendQuery(base, params), nil
}
