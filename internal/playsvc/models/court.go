package models

import "time"

// Court represents the courts table in the database.
type Court struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lng"`
	HoopIDs   []string  `json:"hoopIds"` // physical hoop markers bounding the court
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
