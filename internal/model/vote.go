package model

// LikeResponse is the API response after a successful like.
type LikeResponse struct {
	Message string `json:"message"`
	Likes   int    `json:"likes"`
}
