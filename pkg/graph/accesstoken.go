package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"graphkit/pkg/logger"
)

// CannotExtractAccessTokenMessage is the message of every response-content
// error raised by the token operations.
const CannotExtractAccessTokenMessage = "cannot extract access token from response"

// AccessToken is a credential returned by the token operations. It is a
// value: the library never mutates a token after handing it out.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	// ExpiresIn is the lifetime in seconds as reported by the server; zero if not reported.
	ExpiresIn int64 `json:"expires_in,omitempty"`
	// Expires is the absolute expiry computed when the token was parsed.
	Expires time.Time `json:"expires,omitempty"`
	// UserID is set by the Instagram code exchange.
	UserID string `json:"user_id,omitempty"`
}

// Expired reports whether the token is past its expiry at now. Tokens
// without an expiry never expire.
func (t AccessToken) Expired(now time.Time) bool {
	return !t.Expires.IsZero() && !now.Before(t.Expires)
}

// OAuth2Token converts t for use with golang.org/x/oauth2 transports.
func (t AccessToken) OAuth2Token() *oauth2.Token {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken: t.AccessToken,
		TokenType:   tokenType,
		Expiry:      t.Expires,
	}
}

// String masks the credential.
func (t AccessToken) String() string {
	expires := "never"
	if !t.Expires.IsZero() {
		expires = t.Expires.Format(time.RFC3339)
	}
	return fmt.Sprintf("AccessToken{token=%s type=%s expires=%s}", logger.MaskSecret(t.AccessToken), t.TokenType, expires)
}

// tokenPayload covers the flat shape and the {"data":[...]} shape used by
// the Instagram code exchange.
type tokenPayload struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   json.Number     `json:"expires_in"`
	UserID      json.RawMessage `json:"user_id"`
	Data        []tokenPayload  `json:"data"`
}

var errNoAccessToken = errors.New("response does not contain an access_token")

// parseAccessToken accepts a JSON object, decoded through mapper, or, for
// legacy endpoints, a query string such as "access_token=...&expires=5183999".
func parseAccessToken(mapper JSONMapper, body string, now time.Time) (*AccessToken, error) {
	trimmed := strings.TrimSpace(body)
	if strings.HasPrefix(trimmed, "{") {
		return parseJSONAccessToken(mapper, trimmed, now)
	}
	return parseQueryAccessToken(trimmed, now)
}

func parseJSONAccessToken(mapper JSONMapper, body string, now time.Time) (*AccessToken, error) {
	var payload tokenPayload
	if err := mapper.ToObject(body, &payload); err != nil {
		return nil, err
	}
	if payload.AccessToken == "" && len(payload.Data) > 0 {
		payload = payload.Data[0]
	}
	if payload.AccessToken == "" {
		return nil, errNoAccessToken
	}

	tok := &AccessToken{
		AccessToken: payload.AccessToken,
		TokenType:   payload.TokenType,
		UserID:      rawID(payload.UserID),
	}
	if payload.ExpiresIn != "" {
		secs, err := payload.ExpiresIn.Int64()
		if err != nil {
			return nil, fmt.Errorf("invalid expires_in: %w", err)
		}
		tok.ExpiresIn = secs
		tok.Expires = now.Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}

// rawID renders a string or numeric id; null and absent ids are empty.
func rawID(raw json.RawMessage) string {
	id := strings.TrimSpace(string(raw))
	if id == "" || id == "null" {
		return ""
	}
	return strings.Trim(id, `"`)
}

func parseQueryAccessToken(body string, now time.Time) (*AccessToken, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, err
	}
	accessToken := values.Get("access_token")
	if accessToken == "" {
		return nil, errNoAccessToken
	}

	tok := &AccessToken{
		AccessToken: accessToken,
		TokenType:   values.Get("token_type"),
	}
	expires := values.Get("expires")
	if expires == "" {
		expires = values.Get("expires_in")
	}
	if expires != "" {
		secs, err := strconv.ParseInt(expires, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid expires: %w", err)
		}
		tok.ExpiresIn = secs
		tok.Expires = now.Add(time.Duration(secs) * time.Second)
	}
	return tok, nil
}
