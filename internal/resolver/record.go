package resolver

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/travischeung/generalized-web-scraper/internal/models"
)

// Record is the field contract the model must answer with.
type Record struct {
	Name         *string      `json:"name"`
	Brand        *string      `json:"brand"`
	Price        *RecordPrice `json:"price"`
	Description  *string      `json:"description"`
	KeyFeatures  []string     `json:"key_features"`
	PrimaryImage *string      `json:"primary_image" validate:"omitempty,http_url"`
	Gallery      []string     `json:"gallery" validate:"dive,http_url"`
	// ImageURLs is accepted for models that answer with the product shape directly.
	ImageURLs []string `json:"image_urls" validate:"dive,http_url"`
}

// RecordPrice mirrors models.Price; a price object without an amount is treated as absent.
type RecordPrice struct {
	Price          *float64 `json:"price" validate:"required,gte=0"`
	Currency       string   `json:"currency" validate:"omitempty,min=1,max=8"`
	CompareAtPrice *float64 `json:"compare_at_price" validate:"omitempty,gte=0"`
}

var validate = validator.New()

// ParseRecord decodes and validates a model answer. Code fences around the
// JSON are tolerated.
func ParseRecord(raw string) (Record, error) {
	var rec Record
	if err := json.Unmarshal([]byte(stripFences(raw)), &rec); err != nil {
		return Record{}, &models.SchemaValidationError{Err: fmt.Errorf("decoding answer: %w", err)}
	}

	rec.normalize()
	if err := validate.Struct(rec); err != nil {
		return Record{}, &models.SchemaValidationError{Err: err}
	}
	return rec, nil
}

func (r *Record) normalize() {
	r.Name = trimmed(r.Name)
	r.Brand = trimmed(r.Brand)
	r.Description = trimmed(r.Description)
	r.PrimaryImage = trimmed(r.PrimaryImage)

	if r.Price != nil && r.Price.Price == nil {
		r.Price = nil
	}
	if r.Price != nil {
		r.Price.Currency = strings.ToUpper(strings.TrimSpace(r.Price.Currency))
	}

	r.KeyFeatures = compact(r.KeyFeatures)
	r.Gallery = compact(r.Gallery)
	r.ImageURLs = compact(r.ImageURLs)
}

// Product converts the record; images are the primary image, then the
// gallery, then any image_urls, without duplicates.
func (r Record) Product() models.Product {
	p := models.DefaultProduct()
	p.Name = r.Name
	p.Brand = r.Brand
	p.Description = r.Description
	p.KeyFeatures = append(p.KeyFeatures, r.KeyFeatures...)

	if r.Price != nil {
		currency := r.Price.Currency
		if currency == "" {
			currency = "USD"
		}
		p.Price = &models.Price{
			Price:          *r.Price.Price,
			Currency:       currency,
			CompareAtPrice: r.Price.CompareAtPrice,
		}
	}

	seen := map[string]bool{}
	add := func(u string) {
		if !seen[u] {
			seen[u] = true
			p.ImageURLs = append(p.ImageURLs, u)
		}
	}
	if r.PrimaryImage != nil {
		add(*r.PrimaryImage)
	}
	for _, u := range r.Gallery {
		add(u)
	}
	for _, u := range r.ImageURLs {
		add(u)
	}
	return p
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func compact(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
