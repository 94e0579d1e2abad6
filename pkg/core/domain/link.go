package domain

import "time"

// Link is a payment collection request created by an admin
type Link struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	IsLatest  bool      `json:"isLatest"` // Only set on employee-facing listings
}

// ShareURL builds the employee-facing URL for a link
func (l *Link) ShareURL(frontendURL string) string {
	return frontendURL + "/employee/links/" + l.ID
}
