package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Category string

const (
	CategoryApartment  Category = "apartment"
	CategoryVilla      Category = "villa"
	CategoryCommercial Category = "commercial"
)

// Categories lists every accepted Category in display order.
var Categories = []Category{CategoryApartment, CategoryVilla, CategoryCommercial}

type Status string

const (
	StatusAvailable Status = "available"
	StatusSold      Status = "sold"
	StatusRented    Status = "rented"
)

var Statuses = []Status{StatusAvailable, StatusSold, StatusRented}

// MaxImages is the number of image slots a listing carries.
const MaxImages = 5

// Listing is one property record. Field names on the wire match the
// webhook payloads, so the same struct is used for cache and remote.
type Listing struct {
	ID            string   `json:"id" validate:"required"`
	Title         string   `json:"title"`
	Category      Category `json:"type" validate:"oneof=apartment villa commercial"`
	Location      string   `json:"location"`
	Price         float64  `json:"price" validate:"gte=0"`
	Status        Status   `json:"status" validate:"oneof=available sold rented"`
	Bedrooms      float64  `json:"bedrooms" validate:"gte=0"`
	Bathrooms     float64  `json:"bathrooms" validate:"gte=0"`
	Area          float64  `json:"area" validate:"gte=0"`
	Description   string   `json:"description"`
	Features      string   `json:"features"`
	AvailableFrom string   `json:"availableFrom" validate:"omitempty,datetime=2006-01-02"`
	IsRental      bool     `json:"isRental"`
	Images        []string `json:"images,omitempty" validate:"max=5"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the listing invariants (non-empty id, enumerated
// category/status, at most five images, non-negative numerics).
func (l Listing) Validate() error {
	if err := validate.Struct(l); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidListing, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	return nil
}

// FeatureList splits the comma separated feature string, dropping blanks.
func (l Listing) FeatureList() []string {
	var out []string
	for _, f := range strings.Split(l.Features, ",") {
		if t := strings.TrimSpace(f); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CleanImages drops blank image slots and keeps the first MaxImages
// references in their original order.
func (l *Listing) CleanImages() {
	out := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		if strings.TrimSpace(img) == "" {
			continue
		}
		if len(out) == MaxImages {
			break
		}
		out = append(out, img)
	}
	l.Images = out
}

// NextID suggests an identifier for a new listing: PROP followed by
// len(existing)+10, zero padded to three digits. Deletions can make
// that collide with a live id, in which case a uuid suffix is used.
func NextID(existing []Listing) string {
	id := fmt.Sprintf("PROP%03d", len(existing)+10)
	for _, l := range existing {
		if l.ID == id {
			return "PROP-" + strings.ToUpper(uuid.NewString()[:8])
		}
	}
	return id
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if string(v) == c {
			return true
		}
	}
	return false
}
