package models

import "time"

// Friendship is a single edge between two users. While IsRequest is true the
// edge is a pending request from Friend1 to Friend2; accepting flips it to a
// confirmed friendship.
type Friendship struct {
	ID        int64     `json:"id"`
	Friend1   string    `json:"friend1"`
	Friend2   string    `json:"friend2"`
	IsRequest bool      `json:"isRequest"`
	CreatedAt time.Time `json:"created_at"`
}

// Friend is the flattened view returned by friend listings.
type Friend struct {
	UserID   string `json:"fId"`
	Username string `json:"uName"`
}
