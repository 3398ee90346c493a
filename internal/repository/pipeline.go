package repository

import (
	"time"

	"fleximart-catalog/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ProductIDIndexName = "product_id_1"
	ratingPrecision    = 2
)

func affordableFilter(category string, maxPrice float64) bson.D {
	return bson.D{
		{Key: "category", Value: category},
		{Key: "price", Value: bson.D{{Key: "$lt", Value: maxPrice}}},
	}
}

func summaryProjection() bson.D {
	return bson.D{
		{Key: "_id", Value: 0},
		{Key: "name", Value: 1},
		{Key: "price", Value: 1},
		{Key: "stock", Value: 1},
	}
}

// topRatedPipeline averages reviews.rating per product. Products without
// reviews average to null and never pass the $gte match.
func topRatedPipeline(minAvg float64) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$addFields", Value: bson.D{
			{Key: "avgRating", Value: bson.D{{Key: "$avg", Value: "$reviews.rating"}}},
		}}},
		{{Key: "$match", Value: bson.D{
			{Key: "avgRating", Value: bson.D{{Key: "$gte", Value: minAvg}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "product_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "category", Value: 1},
			{Key: "avgRating", Value: bson.D{{Key: "$round", Value: bson.A{"$avgRating", ratingPrecision}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgRating", Value: -1}}}},
	}
}

// updatedAtLayout writes UTC with exactly three fractional digits, as JavaScript's toISOString does.
const updatedAtLayout = "2006-01-02T15:04:05.000Z"

func addReviewUpdate(review model.Review, now time.Time) bson.D {
	return bson.D{
		{Key: "$push", Value: bson.D{{Key: "reviews", Value: review}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: now.UTC().Format(updatedAtLayout)}}},
	}
}

func lastReviewPipeline(productID string) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "product_id", Value: productID}}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "product_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "last_review", Value: bson.D{{Key: "$slice", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$reviews", bson.A{}}}},
				-1,
			}}}},
		}}},
		{{Key: "$limit", Value: 1}},
	}
}

func categoryPricePipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$category"},
			{Key: "avg_price", Value: bson.D{{Key: "$avg", Value: "$price"}}},
			{Key: "product_count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "category", Value: "$_id"},
			{Key: "avg_price", Value: bson.D{{Key: "$round", Value: bson.A{"$avg_price", ratingPrecision}}}},
			{Key: "product_count", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avg_price", Value: -1}}}},
	}
}
