package entity

import "time"

// Product is a catalog entry (a clothing article).
type Product struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Size        string    `json:"size"`
	Color       string    `json:"color"`
	Price       float64   `json:"price"`
	Material    string    `json:"material,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	DateAdded   time.Time `json:"dateAdded"`
	LastUpdated time.Time `json:"lastUpdated,omitempty"`
}
