package types

import "time"

// OpenGraphRating is a rating or recommendation left on a page.
type OpenGraphRating struct {
	FacebookType
	// When the reviewer rated this object
	Created *Time `json:"created_time,omitempty"`
	// Whether a rating was included
	HasRating *bool `json:"has_rating,omitempty"`
	// Whether there was text in the rating
	HasReview *bool `json:"has_review,omitempty"`
	Rating    *int  `json:"rating,omitempty"`
	// Review text included in the review
	ReviewText *string `json:"review_text,omitempty"`
	// Person who rated the object
	Reviewer           *User               `json:"reviewer,omitempty"`
	RecommendationType *RecommendationType `json:"recommendation_type,omitempty"`
	// Open graph story generated by the rating action
	OpenGraphStory *PageRating `json:"open_graph_story,omitempty"`
}

// OpenGraphRatingFields lists the wire keys of OpenGraphRating for use
// with graph.WithFields.
var OpenGraphRatingFields = []string{
	"created_time",
	"has_rating",
	"has_review",
	"rating",
	"review_text",
	"reviewer",
	"recommendation_type",
	"open_graph_story",
}

// IsRecommendation reports whether r is a recommendation rather than a
// numeric rating, which is the case exactly when no rating is present.
func (r *OpenGraphRating) IsRecommendation() bool {
	return r.Rating == nil
}

// CreatedTime returns the creation time, or the zero time when absent.
func (r *OpenGraphRating) CreatedTime() time.Time {
	if r.Created == nil {
		return time.Time{}
	}
	return r.Created.Time
}
