package provider

import (
	"cmp"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"iter"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/sfomuseum/go-csvdict/v2"
	"github.com/whosonfirst/go-nearby-places"
)

// FoursquarePlace is a row from a Foursquare Open Source Places CSV dump.
type FoursquarePlace struct {
	Id         string               `json:"fsq_place_id"`
	Name       string               `json:"name"`
	Address    string               `json:"address"`
	Locality   string               `json:"locality"`
	Region     string               `json:"region"`
	PostCode   string               `json:"postcode"`
	Country    string               `json:"country"`
	Latitude   float64              `json:"latitude"`
	Longitude  float64              `json:"longitude"`
	Website    string               `json:"website"`
	DateClosed string               `json:"date_closed"`
	Categories []FoursquareCategory `json:"categories"`
}

func (pl *FoursquarePlace) String() string {
	return fmt.Sprintf("%s %s", pl.Name, pl.Id)
}

func (pl *FoursquarePlace) Location() places.Location {
	return places.Location{Latitude: pl.Latitude, Longitude: pl.Longitude}
}

// FullAddress joins the address, postcode and locality of the place.
func (pl *FoursquarePlace) FullAddress() string {

	parts := make([]string, 0)

	if pl.Address != "" {
		parts = append(parts, pl.Address)
	}

	town := strings.TrimSpace(strings.Join([]string{pl.PostCode, pl.Locality}, " "))

	if town != "" {
		parts = append(parts, town)
	}

	return strings.Join(parts, ", ")
}

// FoursquareCategory is a Foursquare category id and its label hierarchy, broadest first.
type FoursquareCategory struct {
	Id     string   `json:"id"`
	Labels []string `json:"labels"`
}

// FoursquareProvider answers area searches from an in-memory copy of a Foursquare places dump. It
// has no geocoder of its own: addresses must be "latitude,longitude" strings unless an origin is
// configured.
type FoursquareProvider struct {
	Provider
	places      []*FoursquarePlace
	index       map[string]*FoursquarePlace
	max_results int
	origin      *places.Location
}

func init() {

	ctx := context.Background()
	err := RegisterProvider(ctx, "foursquare", NewFoursquareProvider)

	if err != nil {
		panic(err)
	}
}

// NewFoursquareProvider returns a new FoursquareProvider configured by 'uri' in the form of:
//
//	foursquare:///path/to/places.csv(.bz2)?{PARAMETERS}
//
// Where {PARAMETERS} may be:
// * `max-results` The maximum number of places returned by a single area search. Default is 20.
// * `origin` A "latitude,longitude" string returned when geocoding any address.
func NewFoursquareProvider(ctx context.Context, uri string) (Provider, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	q := u.Query()

	p := &FoursquareProvider{
		places:      make([]*FoursquarePlace, 0),
		index:       make(map[string]*FoursquarePlace),
		max_results: places.DefaultCap,
	}

	if q.Has("max-results") {

		v, err := strconv.Atoi(q.Get("max-results"))

		if err != nil || v <= 0 {
			return nil, fmt.Errorf("Invalid ?max-results= parameter '%s'", q.Get("max-results"))
		}

		p.max_results = v
	}

	if q.Has("origin") {

		loc, err := places.ParseLocation(q.Get("origin"))

		if err != nil {
			return nil, fmt.Errorf("Invalid ?origin= parameter, %w", err)
		}

		p.origin = &loc
	}

	r, err := os.Open(u.Path)

	if err != nil {
		return nil, fmt.Errorf("Failed to open %s, %w", u.Path, err)
	}

	defer r.Close()

	var csv_r io.Reader = r

	if strings.HasSuffix(u.Path, ".bz2") {
		csv_r = bzip2.NewReader(r)
	}

	for pl, err := range Emit(ctx, csv_r) {

		if err != nil {
			return nil, fmt.Errorf("Failed to read %s, %w", u.Path, err)
		}

		if pl.Id == "" || pl.DateClosed != "" {
			continue
		}

		p.places = append(p.places, pl)
		p.index[pl.Id] = pl
	}

	return p, nil
}

func (p *FoursquareProvider) Geocode(ctx context.Context, address string) (places.Location, error) {

	loc, err := places.ParseLocation(address)

	if err == nil {
		return loc, nil
	}

	if p.origin != nil {
		return *p.origin, nil
	}

	return places.Location{}, &places.GeocodeError{
		Address: address,
		Err:     fmt.Errorf("Address is not a 'latitude,longitude' string and no origin is configured"),
	}
}

func (pl *FoursquarePlace) matches(category string) bool {

	for _, c := range pl.Categories {

		for _, label := range c.Labels {

			if matchesCategory(label, category) {
				return true
			}
		}
	}

	return false
}

func (p *FoursquareProvider) SearchArea(ctx context.Context, pt places.SearchPoint, category string) ([]*places.Stub, error) {

	err := pt.Validate()

	if err != nil {
		return nil, err
	}

	type candidate struct {
		place    *FoursquarePlace
		distance float64
	}

	candidates := make([]candidate, 0)

	for _, pl := range p.places {

		if !pl.matches(category) {
			continue
		}

		d := places.GreatCircle(pt.Center, pl.Location())

		if d > pt.Radius {
			continue
		}

		candidates = append(candidates, candidate{place: pl, distance: d})
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.distance, b.distance)
	})

	if len(candidates) > p.max_results {
		candidates = candidates[:p.max_results]
	}

	stubs := make([]*places.Stub, len(candidates))

	for i, c := range candidates {
		stubs[i] = &places.Stub{
			Id:         c.place.Id,
			Name:       c.place.Name,
			Categories: []string{category},
			Location:   c.place.Location(),
		}
	}

	return stubs, nil
}

func (p *FoursquareProvider) MaxResults() int {
	return p.max_results
}

func (p *FoursquareProvider) FetchDetails(ctx context.Context, id string) (*places.Details, error) {

	pl, ok := p.index[id]

	if !ok {
		return nil, fmt.Errorf("Unknown place '%s'", id)
	}

	details := &places.Details{}

	address := pl.FullAddress()

	if address != "" {
		details.Address = &address
	}

	if pl.Website != "" {
		website := pl.Website
		details.URL = &website
	}

	return details, nil
}

func (p *FoursquareProvider) Close() error {
	return nil
}

// Emit yields each row of the Foursquare places CSV data in 'r' as a FoursquarePlace.
func Emit(ctx context.Context, r io.Reader) iter.Seq2[*FoursquarePlace, error] {

	return func(yield func(*FoursquarePlace, error) bool) {

		csv_r, err := csvdict.NewReader(r)

		if err != nil {
			yield(nil, err)
			return
		}

		for row, err := range csv_r.Iterate() {

			if err != nil {

				if !yield(nil, err) {
					return
				}

				continue
			}

			lat, err := strconv.ParseFloat(row["latitude"], 64)

			if err != nil {
				lat = 0.0
			}

			lon, err := strconv.ParseFloat(row["longitude"], 64)

			if err != nil {
				lon = 0.0
			}

			pl := &FoursquarePlace{
				Id:         row["fsq_place_id"],
				Name:       row["name"],
				Address:    row["address"],
				Locality:   row["locality"],
				Region:     row["region"],
				PostCode:   row["postcode"],
				Country:    row["country"],
				Website:    row["website"],
				DateClosed: row["date_closed"],
				Latitude:   lat,
				Longitude:  lon,
				Categories: parseCategories(row["fsq_category_ids"], row["fsq_category_labels"]),
			}

			if !yield(pl, nil) {
				return
			}
		}
	}
}

func parseCategories(str_ids string, str_labels string) []FoursquareCategory {

	categories := make([]FoursquareCategory, 0)

	str_ids = strings.TrimSpace(str_ids)
	str_ids = strings.TrimPrefix(str_ids, "[")
	str_ids = strings.TrimSuffix(str_ids, "]")

	str_labels = strings.TrimSpace(str_labels)
	str_labels = strings.TrimPrefix(str_labels, "[")
	str_labels = strings.TrimSuffix(str_labels, "]")

	if str_ids == "" && str_labels == "" {
		return categories
	}

	category_ids := strings.Split(str_ids, ", ")
	category_labels := strings.Split(str_labels, ", ")

	if len(category_ids) == len(category_labels) {

		for i, id := range category_ids {

			c := FoursquareCategory{
				Id:     strings.Trim(id, `'"`),
				Labels: strings.Split(strings.Trim(category_labels[i], `'"`), " > "),
			}

			categories = append(categories, c)
		}

		return categories
	}

	// Labels like "Cafe, Coffee, and Tea House" contain the separator, so when the counts
	// don't line up keep the ids and treat the labels as a single hierarchy

	labels := strings.Split(strings.Trim(str_labels, `'"`), " > ")

	for _, id := range category_ids {

		c := FoursquareCategory{
			Id:     strings.Trim(id, `'"`),
			Labels: labels,
		}

		categories = append(categories, c)
	}

	return categories
}

// matchesCategory reports whether the words of 'category' (underscores are treated as spaces)
// appear, in order, as whole words in 'label'. Matching is case-insensitive.
func matchesCategory(label string, category string) bool {

	is_sep := func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}

	label_words := strings.FieldsFunc(strings.ToLower(label), is_sep)
	category_words := strings.FieldsFunc(strings.ToLower(category), is_sep)

	if len(category_words) == 0 {
		return false
	}

	for i := 0; i+len(category_words) <= len(label_words); i++ {

		if slices.Equal(label_words[i:i+len(category_words)], category_words) {
			return true
		}
	}

	return false
}
