package models

// Category is a named grouping of trackers. Trackers is filled by queries and
// never stored directly.
type Category struct {
	ID       int64     `json:"id"`
	Title    string    `json:"title"`
	Trackers []Tracker `json:"trackers,omitempty"`
}

// CategoryInput is validated before a category is created or renamed.
type CategoryInput struct {
	Title string `validate:"required,notblank,max=38"`
}
