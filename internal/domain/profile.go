package domain

import "time"

// UserProfile is the subset of the platform profile used to personalise replies.
type UserProfile struct {
	FirstName string
}

// Place is one ranked nearby-search result.
type Place struct {
	Name     string
	Vicinity string
}

// PlaceQuery is a nearby search around a coordinate.
type PlaceQuery struct {
	Lat    float64
	Long   float64
	Radius int
	Type   string
}

// Helpline is a persisted helpline directory record.
type Helpline struct {
	ID          string
	Name        string
	Email       string
	PhoneNumber string
	CreatedAt   time.Time
}
