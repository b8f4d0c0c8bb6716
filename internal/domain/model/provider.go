package model

import (
	"time"

	"github.com/QuagHug/pet-service/internal/domain"
)

// Categories a provider can be listed under.
var ProviderCategories = []string{
	"Veterinary", "Grooming", "Training", "Boarding", "Walking", "Daycare", "Pet Supplies",
}

type Location struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	State     string  `json:"state"`
	ZipCode   string  `json:"zipCode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
}

type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// ServiceProvider is a directory listing.
type ServiceProvider struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Location      Location    `json:"location"`
	ContactInfo   ContactInfo `json:"contactInfo"`
	Images        []string    `json:"images"`
	Rating        float64     `json:"rating"`
	AffiliateLink string      `json:"affiliateLink"`
	CreatedAt     time.Time   `json:"createdAt"`
}

func ValidCategory(c string) bool {
	for _, k := range ProviderCategories {
		if k == c {
			return true
		}
	}
	return false
}

func NewReview(id, userID string, rating int, comment string) (*Review, error) {
	if userID == "" || rating < 1 || rating > 5 {
		return nil, domain.ErrInvalidArgument
	}
	return &Review{
		ID:        id,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now(),
	}, nil
}
