// Package dto defines data transfer objects for the ratings feature's HTTP transport layer.
package dto

import "chronicle_backend/internal/feature/ratings/domain/entity"

// SubmitRatingReq is the body of POST /ratings.
// Rating is a pointer so that an absent field can be told apart from 0.
type SubmitRatingReq struct {
	PoiID  string `json:"poiId"`
	Rating *int   `json:"rating"`
	Text   string `json:"text"`
}

// SubmitRatingResp confirms a stored rating.
type SubmitRatingResp struct {
	Message string        `json:"message"`
	Rating  entity.Rating `json:"rating"`
}

// RatingListResp lists the ratings of one point of interest, newest first.
type RatingListResp struct {
	Ratings []entity.Rating `json:"ratings"`
}

// AverageResp is the formatted mean rating of one point of interest.
type AverageResp struct {
	PoiID   string `json:"poiId"`
	Average string `json:"average"`
	Count   int    `json:"count"`
	Stars   string `json:"stars"`
}

// AveragesResp maps point-of-interest ids to formatted mean ratings.
type AveragesResp struct {
	Averages map[string]string `json:"averages"`
}

// AverageQuery is the query string of the average endpoints.
type AverageQuery struct {
	Round bool `form:"round"`
}
