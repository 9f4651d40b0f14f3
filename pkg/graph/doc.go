// Package graph is a client for the Facebook Graph API and the Instagram API.
//
// Both variants share one request primitive: parameters are assembled in
// order, sent through a WebRequestor, and the body is decoded by a
// JSONMapper. Non-2xx responses become *errors.Error values typed from the
// Graph error envelope.
//
// Token workflow:
//
//	ig := graph.NewInstagramClient("", "", graph.DefaultVersion)
//	url, _ := ig.LoginDialogURL(appID, redirectURI, scope.New(scope.InstagramBusinessBasic), state)
//	// ...user authorizes, the redirect carries ?code=...
//	short, err := ig.ObtainUserAccessToken(ctx, appID, appSecret, redirectURI, code)
//	long, err := ig.CreateClientWithAccessToken(short.AccessToken).ObtainExtendedAccessToken(ctx, appSecret)
//
// Required parameters are validated before any network call. Call shapes a
// variant does not implement fail with an unsupported error, also without
// a network call.
package graph
