package graph

import (
	"encoding/json"
	"errors"
	"strings"
)

// JSONMapper turns a raw response body into a typed value.
type JSONMapper interface {
	ToObject(body string, target interface{}) error
}

// DefaultJSONMapper maps bodies with encoding/json, honouring the json
// struct tags that name each wire key.
type DefaultJSONMapper struct{}

var errEmptyBody = errors.New("empty response body")

func (DefaultJSONMapper) ToObject(body string, target interface{}) error {
	if strings.TrimSpace(body) == "" {
		return errEmptyBody
	}
	return json.Unmarshal([]byte(body), target)
}
