// Package catalog holds the read-only listing catalog. The default catalog is embedded
// in the binary; a YAML file with the same schema can replace it at startup.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/righthome-ai/property-copilot/internal/requirement"
)

//go:embed listings.yaml
var defaultListings []byte

// ErrListingNotFound is returned by Get for an unknown id.
var ErrListingNotFound = errors.New("listing not found")

// Details is the optional expanded information shown for a listing.
type Details struct {
	Description    string   `yaml:"description" json:"description"`
	FloorPlans     []string `yaml:"floorPlans" json:"floorPlans,omitempty"`
	Amenities      []string `yaml:"amenities" json:"amenities,omitempty"`
	PossessionDate string   `yaml:"possessionDate" json:"possessionDate,omitempty"`
	ReraID         string   `yaml:"reraId" json:"reraId,omitempty"`
	Contact        string   `yaml:"contact" json:"contact,omitempty"`
}

// Listing is one immutable catalog record. Price is in PriceUnit.
type Listing struct {
	ID          int                    `yaml:"id" json:"id"`
	Name        string                 `yaml:"name" json:"name"`
	Location    string                 `yaml:"location" json:"location"`
	City        string                 `yaml:"city" json:"city"`
	Price       float64                `yaml:"price" json:"price"`
	PriceUnit   requirement.BudgetUnit `yaml:"priceUnit" json:"priceUnit"`
	Currency    requirement.Currency   `yaml:"currency" json:"currency"`
	Type        string                 `yaml:"type" json:"type"`
	RawBedrooms string                 `yaml:"bedrooms" json:"-"`
	Size        int                    `yaml:"size" json:"size"`
	Status      requirement.Status     `yaml:"status" json:"status"`
	Builder     string                 `yaml:"builder" json:"builder"`
	Features    []string               `yaml:"features" json:"features"`
	Image       string                 `yaml:"image" json:"image,omitempty"`
	MoreDetails *Details               `yaml:"moreDetails" json:"moreDetails,omitempty"`

	// Derived at load time.
	Category requirement.PropertyType `yaml:"-" json:"category,omitempty"`
	Bedrooms *requirement.Bedrooms    `yaml:"-" json:"bedrooms,omitempty"`
}

// AbsolutePrice is the price in base currency units.
func (l Listing) AbsolutePrice() float64 {
	return l.Price * l.PriceUnit.Multiplier()
}

type document struct {
	Version  int       `yaml:"version"`
	Listings []Listing `yaml:"listings"`
}

// Store is the loaded catalog. It is never mutated after construction.
type Store struct {
	version  int
	listings []Listing
	byID     map[int]int
}

// Default returns the embedded catalog.
func Default() (*Store, error) {
	return Parse(defaultListings)
}

// Load reads a catalog file. An empty path falls back to the embedded catalog.
func Load(path string) (*Store, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Store, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(doc.Listings) == 0 {
		return nil, errors.New("catalog has no listings")
	}

	s := &Store{
		version:  doc.Version,
		listings: make([]Listing, 0, len(doc.Listings)),
		byID:     make(map[int]int, len(doc.Listings)),
	}
	for _, l := range doc.Listings {
		if _, dup := s.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate listing id %d", l.ID)
		}
		if category, ok := requirement.MatchPropertyType(l.Type); ok {
			l.Category = category
		}
		// "NA" and other non-numeric values leave Bedrooms unset.
		if b, ok := requirement.ParseBedrooms(l.RawBedrooms); ok {
			l.Bedrooms = &b
		}
		s.byID[l.ID] = len(s.listings)
		s.listings = append(s.listings, l)
	}
	return s, nil
}

// List returns every listing in declaration order.
func (s *Store) List() []Listing {
	out := make([]Listing, len(s.listings))
	copy(out, s.listings)
	return out
}

// Get returns a listing by id.
func (s *Store) Get(id int) (Listing, error) {
	i, ok := s.byID[id]
	if !ok {
		return Listing{}, fmt.Errorf("%w: %d", ErrListingNotFound, id)
	}
	return s.listings[i], nil
}

// Len is the number of listings.
func (s *Store) Len() int { return len(s.listings) }

// Version is the catalog document version.
func (s *Store) Version() int { return s.version }

// InCity reports whether the listing's location mentions the city name.
func (l Listing) InCity(city string) bool {
	return city != "" && strings.Contains(strings.ToLower(l.Location), strings.ToLower(city))
}
