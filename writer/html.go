package writer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/whosonfirst/go-nearby-places"
)

//go:embed templates/*
var html_fs embed.FS

var re_slug = regexp.MustCompile(`[^a-z0-9]+`)

// HTMLWriter implements the `Writer` interface for results rendered as a small static website: an
// index of every venue, one page per category and a stylesheet.
type HTMLWriter struct {
	Writer
	root      string
	templates *template.Template
}

type htmlCategory struct {
	Name  string
	Path  string
	Count int
}

type htmlPage struct {
	Title      string
	Category   string
	Results    *places.Results
	Venues     []*places.Venue
	Categories []*htmlCategory
}

func init() {

	ctx := context.Background()
	err := RegisterWriter(ctx, "html", NewHTMLWriter)

	if err != nil {
		panic(err)
	}
}

// NewHTMLWriter returns a new HTMLWriter configured by 'uri' in the form of:
//
//	html:///path/to/directory
func NewHTMLWriter(ctx context.Context, uri string) (Writer, error) {

	u, err := url.Parse(uri)

	if err != nil {
		return nil, err
	}

	if u.Path == "" {
		return nil, fmt.Errorf("Missing output directory")
	}

	t, err := LoadTemplates()

	if err != nil {
		return nil, err
	}

	wr := &HTMLWriter{
		root:      u.Path,
		templates: t,
	}

	return wr, nil
}

// LoadTemplates parses the embedded HTML templates.
func LoadTemplates() (*template.Template, error) {

	funcs := template.FuncMap{
		"join":   strings.Join,
		"hours":  FormatOpeningHours,
		"rating": formatRating,
		"price":  formatPrice,
	}

	t, err := template.New("places").Funcs(funcs).ParseFS(html_fs, "templates/*.html")

	if err != nil {
		return nil, fmt.Errorf("Failed to parse templates, %w", err)
	}

	return t, nil
}

func (wr *HTMLWriter) Write(ctx context.Context, results *places.Results) error {

	categories := make([]*htmlCategory, len(results.Categories))

	for i, c := range results.Categories {

		count := 0

		for _, v := range results.Venues {

			if v.HasCategory(c) {
				count += 1
			}
		}

		categories[i] = &htmlCategory{
			Name:  c,
			Path:  CategoryPath(c),
			Count: count,
		}
	}

	title := "Nearby places"

	if results.Address != "" {
		title = fmt.Sprintf("Places near %s", results.Address)
	}

	index := &htmlPage{
		Title:      title,
		Results:    results,
		Venues:     results.Venues,
		Categories: categories,
	}

	err := wr.render("index", index, filepath.Join(wr.root, "index.html"))

	if err != nil {
		return err
	}

	for _, c := range categories {

		venues := make([]*places.Venue, 0, c.Count)

		for _, v := range results.Venues {

			if v.HasCategory(c.Name) {
				venues = append(venues, v)
			}
		}

		page := &htmlPage{
			Title:      fmt.Sprintf("%s: %s", title, c.Name),
			Category:   c.Name,
			Results:    results,
			Venues:     venues,
			Categories: categories,
		}

		err := wr.render("category", page, filepath.Join(wr.root, c.Path))

		if err != nil {
			return err
		}
	}

	css, err := html_fs.ReadFile("templates/style.css")

	if err != nil {
		return fmt.Errorf("Failed to read stylesheet, %w", err)
	}

	return writeFile(filepath.Join(wr.root, "style.css"), func(w io.Writer) error {
		_, err := w.Write(css)
		return err
	})
}

func (wr *HTMLWriter) Close() error {
	return nil
}

func (wr *HTMLWriter) render(name string, page *htmlPage, path string) error {

	var buf bytes.Buffer

	err := wr.templates.ExecuteTemplate(&buf, name, page)

	if err != nil {
		return fmt.Errorf("Failed to render %s, %w", name, err)
	}

	return writeFile(path, func(w io.Writer) error {
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// CategoryPath returns the file name of the page listing venues in 'category'.
func CategoryPath(category string) string {

	slug := re_slug.ReplaceAllString(strings.ToLower(category), "-")
	slug = strings.Trim(slug, "-")

	if slug == "" {
		slug = "uncategorized"
	}

	return fmt.Sprintf("category-%s.html", slug)
}

func formatRating(rating *float64) string {

	if rating == nil {
		return "-"
	}

	return strconv.FormatFloat(*rating, 'f', 1, 64)
}

func formatPrice(level *int) string {

	if level == nil {
		return "-"
	}

	if *level == 0 {
		return "free"
	}

	return strings.Repeat("$", *level)
}
