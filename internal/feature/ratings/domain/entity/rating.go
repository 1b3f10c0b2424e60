// Package entity defines the domain entities for the ratings feature.
package entity

// Rating is one review of a point of interest.
// ID and Date both hold the creation time in Unix milliseconds.
type Rating struct {
	ID     int64  `json:"id"`
	UserID string `json:"userId"`
	PoiID  string `json:"poiId"`
	// Author is the submitter's nickname at submission time.
	Author string `json:"author"`
	Rating int    `json:"rating"`
	Text   string `json:"text"`
	Date   int64  `json:"date"`
}

// Average is the formatted mean rating of one point of interest.
type Average struct {
	PoiID   string
	Average string
	Count   int
	Stars   string
}
