package models

import "time"

// Post is one blog post row. UserID is the owning user; it is nil for rows
// written before ownership tracking and never changes once set.
type Post struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Tags      string    `json:"tags,omitempty"`
	Category  string    `json:"category,omitempty"`
	ReadTime  string    `json:"read_time,omitempty"`
	Views     int       `json:"views"`
	UserID    *int      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
