package domain

import "time"

type Review struct {
	ReviewID     int64       `json:"ReviewID"`
	StreetName   string      `json:"StreetName"`
	StallNumber  StallNumber `json:"StallNumber"`
	ReviewerName string      `json:"ReviewerName"`
	ReviewText   string      `json:"ReviewText"`
	Rating       float64     `json:"Rating"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    *time.Time  `json:"updated_at"`
}

// ReviewSummary is a stall's reviews, newest first, with their aggregate.
type ReviewSummary struct {
	Reviews       []Review
	Count         int
	AverageRating float64
}

// Summarize aggregates rs. The average of no reviews is 0.
func Summarize(rs []Review) ReviewSummary {
	if rs == nil {
		rs = []Review{}
	}
	out := ReviewSummary{Reviews: rs, Count: len(rs)}
	if len(rs) == 0 {
		return out
	}
	var sum float64
	for _, r := range rs {
		sum += r.Rating
	}
	out.AverageRating = sum / float64(len(rs))
	return out
}
