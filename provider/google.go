package provider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/whosonfirst/go-nearby-places"
)

const GOOGLE_ENDPOINT string = "https://maps.googleapis.com/maps/api"

// GOOGLE_DETAILS_FIELDS are the Place Details fields requested for each venue.
const GOOGLE_DETAILS_FIELDS string = "rating,user_ratings_total,price_level,opening_hours/weekday_text,formatted_address,url"

// GOOGLE_PAGE_SIZE is the number of results in a single Nearby Search page.
const GOOGLE_PAGE_SIZE int = 20

// GOOGLE_MAX_PAGES is the number of Nearby Search pages Google will return for a single query.
const GOOGLE_MAX_PAGES int = 3

// GOOGLE_PAGE_DELAY is how long to wait before requesting the page for a `next_page_token`. Tokens
// are not valid immediately after they are issued.
const GOOGLE_PAGE_DELAY time.Duration = 2000 * time.Millisecond

// GoogleProvider implements the `Provider` interface for the Google Maps Geocoding, Places Nearby
// Search and Place Details APIs.
type GoogleProvider struct {
	Provider
	api_key    string
	endpoint   string
	paginate   bool
	page_delay time.Duration
	client     *http.Client
}

func init() {

	ctx := context.Background()
	err := RegisterProvider(ctx, "google", NewGoogleProvider)

	if err != nil {
		panic(err)
	}
}

// NewGoogleProvider returns a new GoogleProvider configured by 'uri' in the form of:
//
//	google://?{PARAMETERS}
//
// Where {PARAMETERS} may be:
// * `api-key` A Google Maps API key. If empty the value of the GOOGLE_MAPS_API_KEY environment variable is used.
// * `paginate` Follow `next_page_token` values in Nearby Search responses. Default is false.
// * `endpoint` The base URL for API requests. Default is https://maps.googleapis.com/maps/api
// * `timeout` The timeout for individual HTTP requests. Default is 10s.
func NewGoogleProvider(ctx context.Context, uri string) (Provider, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	q := u.Query()

	api_key := q.Get("api-key")

	if api_key == "" {
		api_key = os.Getenv("GOOGLE_MAPS_API_KEY")
	}

	if api_key == "" {
		return nil, fmt.Errorf("Missing ?api-key= parameter")
	}

	endpoint := GOOGLE_ENDPOINT

	if q.Has("endpoint") {
		endpoint = q.Get("endpoint")
	}

	timeout := 10 * time.Second

	if q.Has("timeout") {

		d, err := time.ParseDuration(q.Get("timeout"))

		if err != nil {
			return nil, fmt.Errorf("Invalid ?timeout= parameter, %w", err)
		}

		timeout = d
	}

	paginate := false

	if q.Has("paginate") {

		v, err := strconv.ParseBool(q.Get("paginate"))

		if err != nil {
			return nil, fmt.Errorf("Invalid ?paginate= parameter, %w", err)
		}

		paginate = v
	}

	p := &GoogleProvider{
		api_key:    api_key,
		endpoint:   strings.TrimRight(endpoint, "/"),
		paginate:   paginate,
		page_delay: GOOGLE_PAGE_DELAY,
		client:     &http.Client{Timeout: timeout},
	}

	return p, nil
}

func (p *GoogleProvider) Geocode(ctx context.Context, address string) (places.Location, error) {

	params := url.Values{}
	params.Set("address", address)

	rsp, err := p.get(ctx, "/geocode/json", params, "OK")

	if err != nil {
		return places.Location{}, &places.GeocodeError{Address: address, Err: err}
	}

	lat_rsp := rsp.Get("results.0.geometry.location.lat")
	lon_rsp := rsp.Get("results.0.geometry.location.lng")

	if !lat_rsp.Exists() || !lon_rsp.Exists() {
		return places.Location{}, &places.GeocodeError{Address: address, Err: fmt.Errorf("No results")}
	}

	loc := places.Location{
		Latitude:  lat_rsp.Float(),
		Longitude: lon_rsp.Float(),
	}

	return loc, nil
}

func (p *GoogleProvider) SearchArea(ctx context.Context, pt places.SearchPoint, category string) ([]*places.Stub, error) {

	params := url.Values{}
	params.Set("location", pt.Center.String())
	params.Set("radius", strconv.FormatFloat(pt.Radius, 'f', 0, 64))
	params.Set("type", category)

	stubs := make([]*places.Stub, 0)

	for page := 1; page <= GOOGLE_MAX_PAGES; page++ {

		rsp, err := p.get(ctx, "/place/nearbysearch/json", params, "OK", "ZERO_RESULTS")

		if err != nil {
			return nil, err
		}

		for _, r := range rsp.Get("results").Array() {

			s, ok := googleStub(r, category)

			if !ok {
				slog.Debug("Skipping incomplete nearby search result", "category", category, "result", r.Raw)
				continue
			}

			stubs = append(stubs, s)
		}

		if !p.paginate {
			break
		}

		token_rsp := rsp.Get("next_page_token")

		if !token_rsp.Exists() || token_rsp.String() == "" {
			break
		}

		if page == GOOGLE_MAX_PAGES {
			break
		}

		err = places.Sleep(ctx, p.page_delay)

		if err != nil {
			return nil, err
		}

		params = url.Values{}
		params.Set("pagetoken", token_rsp.String())
	}

	return stubs, nil
}

func (p *GoogleProvider) MaxResults() int {

	if p.paginate {
		return GOOGLE_PAGE_SIZE * GOOGLE_MAX_PAGES
	}

	return GOOGLE_PAGE_SIZE
}

func (p *GoogleProvider) FetchDetails(ctx context.Context, id string) (*places.Details, error) {

	params := url.Values{}
	params.Set("place_id", id)
	params.Set("fields", GOOGLE_DETAILS_FIELDS)

	rsp, err := p.get(ctx, "/place/details/json", params, "OK")

	if err != nil {
		return nil, err
	}

	result := rsp.Get("result")

	if !result.Exists() {
		return nil, fmt.Errorf("Details response for %s is missing result", id)
	}

	details := &places.Details{}

	if r := result.Get("rating"); r.Exists() {
		v := r.Float()
		details.Rating = &v
	}

	if r := result.Get("user_ratings_total"); r.Exists() {
		v := int(r.Int())
		details.ReviewCount = &v
	}

	if r := result.Get("price_level"); r.Exists() {
		v := int(r.Int())
		details.PriceLevel = &v
	}

	if r := result.Get("opening_hours.weekday_text"); r.Exists() {

		lines := make([]string, 0)

		for _, l := range r.Array() {
			lines = append(lines, l.String())
		}

		details.OpeningHours = lines
	}

	if r := result.Get("formatted_address"); r.Exists() {
		v := r.String()
		details.Address = &v
	}

	if r := result.Get("url"); r.Exists() {
		v := r.String()
		details.URL = &v
	}

	return details, nil
}

func (p *GoogleProvider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// get issues a GET request for 'path' and returns the parsed response body. The response "status"
// property must be one of 'statuses'.
func (p *GoogleProvider) get(ctx context.Context, path string, params url.Values, statuses ...string) (gjson.Result, error) {

	params.Set("key", p.api_key)

	uri := fmt.Sprintf("%s%s?%s", p.endpoint, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)

	if err != nil {
		return gjson.Result{}, fmt.Errorf("Failed to create request, %w", err)
	}

	rsp, err := p.client.Do(req)

	if err != nil {
		return gjson.Result{}, fmt.Errorf("Failed to execute request, %w", err)
	}

	defer rsp.Body.Close()

	body, err := io.ReadAll(rsp.Body)

	if err != nil {
		return gjson.Result{}, fmt.Errorf("Failed to read response, %w", err)
	}

	if rsp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("Request failed with status %d", rsp.StatusCode)
	}

	if !gjson.ValidBytes(body) {
		return gjson.Result{}, fmt.Errorf("Response is not valid JSON")
	}

	parsed := gjson.ParseBytes(body)

	status_rsp := parsed.Get("status")

	if !status_rsp.Exists() {
		return gjson.Result{}, fmt.Errorf("Response is missing status")
	}

	status := status_rsp.String()

	for _, ok := range statuses {

		if status == ok {
			return parsed, nil
		}
	}

	msg_rsp := parsed.Get("error_message")

	if msg_rsp.Exists() {
		return gjson.Result{}, fmt.Errorf("Request failed with status %s, %s", status, msg_rsp.String())
	}

	return gjson.Result{}, fmt.Errorf("Request failed with status %s", status)
}

func googleStub(r gjson.Result, category string) (*places.Stub, bool) {

	id_rsp := r.Get("place_id")
	lat_rsp := r.Get("geometry.location.lat")
	lon_rsp := r.Get("geometry.location.lng")

	if !id_rsp.Exists() || !lat_rsp.Exists() || !lon_rsp.Exists() {
		return nil, false
	}

	s := &places.Stub{
		Id:         id_rsp.String(),
		Name:       r.Get("name").String(),
		Categories: []string{category},
		Location: places.Location{
			Latitude:  lat_rsp.Float(),
			Longitude: lon_rsp.Float(),
		},
	}

	return s, true
}
