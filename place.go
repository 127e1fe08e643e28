package places

import (
	"fmt"
	"slices"
	"strings"
)

// Stub is a venue as reported by a single area-search call. Two stubs with the same Id are the
// same venue.
type Stub struct {
	Id         string   `json:"id"`
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Location   Location `json:"location"`
}

func (s *Stub) String() string {
	return fmt.Sprintf("%s %s", s.Name, s.Id)
}

// Merge adds the categories of 'other' to 's'. It is the caller's responsibility to ensure that
// both stubs share the same Id.
func (s *Stub) Merge(other *Stub) {
	s.Categories = UnionCategories(s.Categories, other.Categories)
}

// UnionCategories returns the sorted, de-duplicated union of 'a' and 'b'. Empty labels are dropped.
func UnionCategories(a []string, b []string) []string {

	seen := make(map[string]bool)
	union := make([]string, 0, len(a)+len(b))

	for _, list := range [][]string{a, b} {

		for _, c := range list {

			c = strings.TrimSpace(c)

			if c == "" || seen[c] {
				continue
			}

			seen[c] = true
			union = append(union, c)
		}
	}

	slices.Sort(union)
	return union
}

// Details is the metadata returned by a provider's details lookup. Fields the provider did not
// report are nil.
type Details struct {
	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	PriceLevel   *int     `json:"price_level,omitempty"`
	OpeningHours []string `json:"opening_hours,omitempty"`
	Address      *string  `json:"address,omitempty"`
	URL          *string  `json:"url,omitempty"`
}

// Venue is a Stub that has been enriched with details and its distance from the search origin.
type Venue struct {
	Id             string            `json:"id"`
	Name           string            `json:"name"`
	Categories     []string          `json:"categories"`
	Location       Location          `json:"location"`
	DistanceMeters int               `json:"distance_meters"`
	Rating         *float64          `json:"rating"`
	ReviewCount    int               `json:"review_count"`
	PriceLevel     *int              `json:"price_level"`
	OpeningHours   map[string]string `json:"opening_hours"`
	Address        string            `json:"address"`
	URL            string            `json:"url"`
}

func (v *Venue) String() string {
	return fmt.Sprintf("%s %s (%dm)", v.Name, v.Id, v.DistanceMeters)
}

// HasCategory reports whether 'category' is one of the venue's categories.
func (v *Venue) HasCategory(category string) bool {
	return slices.Contains(v.Categories, category)
}

// NewVenue promotes 's' to a Venue using 'details' (which may be nil) and the distance from 'origin'.
func NewVenue(s *Stub, details *Details, origin Location) *Venue {

	v := &Venue{
		Id:             s.Id,
		Name:           s.Name,
		Categories:     slices.Clone(s.Categories),
		Location:       s.Location,
		DistanceMeters: DistanceMeters(origin, s.Location),
	}

	if details == nil {
		return v
	}

	if details.Rating != nil {
		rating := *details.Rating
		v.Rating = &rating
	}

	if details.ReviewCount != nil {
		v.ReviewCount = *details.ReviewCount
	}

	if details.PriceLevel != nil && *details.PriceLevel >= 0 && *details.PriceLevel <= 4 {
		price := *details.PriceLevel
		v.PriceLevel = &price
	}

	v.OpeningHours = ParseOpeningHours(details.OpeningHours)

	if details.Address != nil {
		v.Address = *details.Address
	}

	if details.URL != nil {
		v.URL = *details.URL
	}

	return v
}
