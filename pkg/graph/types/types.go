// Package types holds the Graph resources decoded by the client. Fields the
// API may omit are pointers so that absence stays distinguishable from the
// zero value.
package types

import "encoding/json"

// FacebookType carries the fields common to every Graph object.
type FacebookType struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type,omitempty"`
}

// User is the subset of a Graph user embedded in other resources.
type User struct {
	FacebookType
	Name      string `json:"name,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Link      string `json:"link,omitempty"`
}

// RecommendationType replaced star ratings on pages in August 2018.
type RecommendationType string

const (
	RecommendationPositive RecommendationType = "positive"
	RecommendationNegative RecommendationType = "negative"
)

// PageRating is the open graph story generated by a rating action.
type PageRating struct {
	FacebookType
	StartTime *Time           `json:"start_time,omitempty"`
	Message   string          `json:"message,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}
