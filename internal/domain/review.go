package domain

import "time"

type Review struct {
	ID         int64     `json:"id"`
	ProductID  int64     `json:"productId"`
	UserID     string    `json:"userId"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title,omitempty"`
	Body       string    `json:"body"`
	IsApproved bool      `json:"isApproved"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ReviewSummary aggregates approved reviews for a product.
type ReviewSummary struct {
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}
