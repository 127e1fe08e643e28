package writer

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/olivere/elastic/v7"
	"github.com/whosonfirst/go-nearby-places"
)

const ELASTICSEARCH_MAPPING string = `{
  "mappings": {
    "properties": {
      "run_id": {"type": "keyword"},
      "id": {"type": "keyword"},
      "name": {"type": "text"},
      "categories": {"type": "keyword"},
      "location": {"type": "geo_point"},
      "distance_meters": {"type": "integer"},
      "rating": {"type": "float"},
      "review_count": {"type": "integer"},
      "price_level": {"type": "integer"},
      "opening_hours": {"type": "object", "enabled": false},
      "address": {"type": "text"},
      "url": {"type": "keyword", "index": false},
      "created": {"type": "date"}
    }
  }
}`

// ElasticsearchWriter implements the `Writer` interface for venues indexed in Elasticsearch. Documents
// are keyed by venue id so the index holds the most recent copy of each venue.
type ElasticsearchWriter struct {
	Writer
	client *elastic.Client
	index  string
}

type elasticsearchVenue struct {
	RunId          string            `json:"run_id"`
	Id             string            `json:"id"`
	Name           string            `json:"name"`
	Categories     []string          `json:"categories"`
	Location       *elastic.GeoPoint `json:"location"`
	DistanceMeters int               `json:"distance_meters"`
	Rating         *float64          `json:"rating,omitempty"`
	ReviewCount    int               `json:"review_count"`
	PriceLevel     *int              `json:"price_level,omitempty"`
	OpeningHours   map[string]string `json:"opening_hours,omitempty"`
	Address        string            `json:"address,omitempty"`
	URL            string            `json:"url,omitempty"`
	Created        time.Time         `json:"created"`
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "elasticsearch", NewElasticsearchWriter)

	if err != nil {
		panic(err)
	}
}

// NewElasticsearchWriter returns a new ElasticsearchWriter configured by 'uri' in the form of:
//
//	elasticsearch://{HOST}:{PORT}/{INDEX}?{PARAMETERS}
//
// Where {PARAMETERS} may be:
// * `scheme` The scheme used to connect to Elasticsearch. Default is "http".
//
// The index is created, with a `geo_point` mapping for venue locations, if it doesn't exist.
func NewElasticsearchWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	index := strings.Trim(u.Path, "/")

	if index == "" {
		return nil, fmt.Errorf("Missing index")
	}

	scheme := "http"

	if u.Query().Has("scheme") {
		scheme = u.Query().Get("scheme")
	}

	es_url := fmt.Sprintf("%s://%s", scheme, u.Host)

	client, err := elastic.NewClient(
		elastic.SetURL(es_url),
		elastic.SetSniff(false),
	)

	if err != nil {
		return nil, fmt.Errorf("Failed to create Elasticsearch client for %s, %w", es_url, err)
	}

	wr := &ElasticsearchWriter{
		client: client,
		index:  index,
	}

	err = wr.ensureIndex(ctx)

	if err != nil {
		client.Stop()
		return nil, err
	}

	return wr, nil
}

func (wr *ElasticsearchWriter) ensureIndex(ctx context.Context) error {

	exists, err := wr.client.IndexExists(wr.index).Do(ctx)

	if err != nil {
		return fmt.Errorf("Failed to determine whether %s exists, %w", wr.index, err)
	}

	if exists {
		return nil
	}

	rsp, err := wr.client.CreateIndex(wr.index).BodyString(ELASTICSEARCH_MAPPING).Do(ctx)

	if err != nil {
		return fmt.Errorf("Failed to create index %s, %w", wr.index, err)
	}

	if !rsp.Acknowledged {
		slog.Warn("Create index request was not acknowledged", "index", wr.index)
	}

	return nil
}

func (wr *ElasticsearchWriter) Write(ctx context.Context, results *places.Results) error {

	if len(results.Venues) == 0 {
		return nil
	}

	bulk := wr.client.Bulk()

	for _, v := range results.Venues {

		doc := &elasticsearchVenue{
			RunId:          results.Id,
			Id:             v.Id,
			Name:           v.Name,
			Categories:     v.Categories,
			Location:       elastic.GeoPointFromLatLon(v.Location.Latitude, v.Location.Longitude),
			DistanceMeters: v.DistanceMeters,
			Rating:         v.Rating,
			ReviewCount:    v.ReviewCount,
			PriceLevel:     v.PriceLevel,
			OpeningHours:   v.OpeningHours,
			Address:        v.Address,
			URL:            v.URL,
			Created:        results.CreatedAt,
		}

		req := elastic.NewBulkIndexRequest().Index(wr.index).Id(v.Id).Doc(doc)
		bulk.Add(req)
	}

	rsp, err := bulk.Do(ctx)

	if err != nil {
		return fmt.Errorf("Failed to index venues, %w", err)
	}

	failed := rsp.Failed()

	if len(failed) > 0 {

		if failed[0].Error != nil {
			return fmt.Errorf("Failed to index %d of %d venues, first error: %s", len(failed), len(results.Venues), failed[0].Error.Reason)
		}

		return fmt.Errorf("Failed to index %d of %d venues", len(failed), len(results.Venues))
	}

	slog.Debug("Indexed venues", "index", wr.index, "run", results.Id, "count", len(results.Venues))
	return nil
}

func (wr *ElasticsearchWriter) Close() error {
	wr.client.Stop()
	return nil
}
