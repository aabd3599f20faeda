package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"delivery-storefront/storefront-svc/internal/domain"
)

// LoadDocument reads and parses a document file.
func LoadDocument(path string) (*domain.Dataset, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var ds domain.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &ds, raw, nil
}

// DefaultDocument is served when the document file cannot be used. It holds
// one test restaurant and no users or orders.
func DefaultDocument() *domain.Dataset {
	return &domain.Dataset{
		Users: []domain.User{},
		Restaurants: []domain.Restaurant{{
			ID:            1,
			Name:          "Restaurant Test",
			Address:       "123 Test Street",
			Phone:         "01 23 45 67 89",
			CuisineType:   "Test",
			AverageRating: 4.0,
			Image:         "https://images.unsplash.com/photo-1517248135467-4c7edcad34c4?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
			Dishes: []domain.Dish{{
				ID:          1,
				Name:        "Plat Test",
				Description: "Un plat de test",
				Price:       15.0,
				Category:    "Main Course",
				Image:       "https://images.unsplash.com/photo-1546833999-b9f581a1996d?ixlib=rb-4.0.3&auto=format&fit=crop&w=800&q=80",
				Allergens:   []string{},
			}},
		}},
		Commands: []domain.Order{},
	}
}
