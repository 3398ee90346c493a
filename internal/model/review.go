package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const (
	MinRating = 1
	MaxRating = 5
)

var ErrInvalidReview = errors.New("invalid review")

type Review struct {
	UserID   string     `json:"user_id" bson:"user_id"`
	Username string     `json:"username" bson:"username"`
	Rating   float64    `json:"rating" bson:"rating"`
	Comment  string     `json:"comment" bson:"comment"`
	Date     ReviewDate `json:"date" bson:"date"`
}

// Validate checks the fields a new review must carry. Username falls back to
// the user ID, which is how catalog reviews without a display name are stored.
func (r *Review) Validate() error {
	r.UserID = strings.TrimSpace(r.UserID)
	if r.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidReview)
	}
	if r.Rating < MinRating || r.Rating > MaxRating {
		return fmt.Errorf("%w: rating must be between %d and %d, got %g", ErrInvalidReview, MinRating, MaxRating, r.Rating)
	}
	if strings.TrimSpace(r.Username) == "" {
		r.Username = r.UserID
	}
	return nil
}

// reviewDateLayouts are the string forms found in seed files.
var reviewDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ReviewDate is stored as a BSON date but also accepts the plain date strings
// that seed files carry, so old and new reviews decode the same way.
type ReviewDate struct {
	time.Time
}

func NewReviewDate(t time.Time) ReviewDate {
	return ReviewDate{Time: t.UTC().Truncate(time.Millisecond)}
}

func ParseReviewDate(s string) (ReviewDate, error) {
	s = strings.TrimSpace(s)
	for _, layout := range reviewDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewReviewDate(t), nil
		}
	}
	return ReviewDate{}, fmt.Errorf("unrecognised review date %q", s)
}

func (d ReviewDate) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(d.Time.UTC())
}

func (d *ReviewDate) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw := bson.RawValue{Type: t, Value: data}

	switch t {
	case bsontype.DateTime:
		d.Time = raw.Time().UTC()
		return nil
	case bsontype.String:
		parsed, err := ParseReviewDate(raw.StringValue())
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case bsontype.Null, bsontype.Undefined:
		d.Time = time.Time{}
		return nil
	default:
		return fmt.Errorf("cannot decode %s into review date", t)
	}
}

func (d ReviewDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return d.Time.UTC().MarshalJSON()
}

func (d *ReviewDate) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseReviewDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
