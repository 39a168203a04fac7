package models

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var (
	pictureRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|webp)$`)
	urlRe     = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})([/\w .-]*)*/?$`)
)

type Product struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Price     int64     `json:"price"`
	Picture   string    `json:"picture"`
	URL       string    `json:"url"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks listing fields against the rules the marketplace enforces
// on creation and update. minPrice comes from config.
func (p *Product) Validate(minPrice int64) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return errors.New("product title is required")
	}
	if len(p.Title) > 100 {
		return errors.New("title cannot exceed 100 characters")
	}
	if p.Price < minPrice {
		return errors.New("price below minimum")
	}
	if !pictureRe.MatchString(p.Picture) {
		return errors.New("picture must be a jpg, jpeg, png or webp file")
	}
	if !urlRe.MatchString(p.URL) {
		return errors.New("invalid product url")
	}
	return nil
}
