package model

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"-" bson:"_id,omitempty"`
	ProductID   string             `json:"product_id" bson:"product_id"`
	Name        string             `json:"name" bson:"name"`
	Category    string             `json:"category" bson:"category"`
	Subcategory string             `json:"subcategory,omitempty" bson:"subcategory,omitempty"`
	Price       float64            `json:"price" bson:"price"`
	Stock       int                `json:"stock" bson:"stock"`
	Specs       bson.M             `json:"specs,omitempty" bson:"specs,omitempty"`
	Tags        []string           `json:"tags,omitempty" bson:"tags,omitempty"`
	Reviews     []Review           `json:"reviews" bson:"reviews"`
	UpdatedAt   string             `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

// ProductSummary is the name/price/stock projection used for price filters.
type ProductSummary struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
	Stock int     `json:"stock" bson:"stock"`
}

type RatedProduct struct {
	ProductID string  `json:"product_id" bson:"product_id"`
	Name      string  `json:"name" bson:"name"`
	Category  string  `json:"category" bson:"category"`
	AvgRating float64 `json:"avg_rating" bson:"avgRating"`
}

type CategoryPriceStats struct {
	Category     string  `json:"category" bson:"category"`
	AvgPrice     float64 `json:"avg_price" bson:"avg_price"`
	ProductCount int     `json:"product_count" bson:"product_count"`
}

// ProductLastReview holds a product with only its most recent review.
type ProductLastReview struct {
	ProductID  string   `json:"product_id" bson:"product_id"`
	Name       string   `json:"name" bson:"name"`
	LastReview []Review `json:"last_review" bson:"last_review"`
}

// Latest returns the single review carried by the projection, if any.
func (p ProductLastReview) Latest() (Review, bool) {
	if len(p.LastReview) == 0 {
		return Review{}, false
	}
	return p.LastReview[len(p.LastReview)-1], true
}
