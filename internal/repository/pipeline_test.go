package repository

import (
	"testing"
	"time"

	"fleximart-catalog/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stageNames lists the operator of every pipeline stage, in order.
func stageNames(p []bson.D) []string {
	names := make([]string, len(p))
	for i, stage := range p {
		names[i] = stage[0].Key
	}
	return names
}

func toMap(t *testing.T, v interface{}) bson.M {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var m bson.M
	require.NoError(t, bson.Unmarshal(raw, &m))
	return m
}

func TestAffordableFilter(t *testing.T) {
	got := toMap(t, affordableFilter("Electronics", 50000))

	assert.Equal(t, "Electronics", got["category"])
	assert.Equal(t, bson.M{"$lt": float64(50000)}, got["price"])
}

func TestSummaryProjection(t *testing.T) {
	got := toMap(t, summaryProjection())
	assert.Equal(t, bson.M{"_id": int32(0), "name": int32(1), "price": int32(1), "stock": int32(1)}, got)
}

func TestTopRatedPipeline(t *testing.T) {
	p := topRatedPipeline(4.0)
	require.Equal(t, []string{"$addFields", "$match", "$project", "$sort"}, stageNames(p))

	addFields := toMap(t, p[0])
	assert.Equal(t, bson.M{"avgRating": bson.M{"$avg": "$reviews.rating"}}, addFields["$addFields"])

	match := toMap(t, p[1])
	assert.Equal(t, bson.M{"avgRating": bson.M{"$gte": 4.0}}, match["$match"])

	project := toMap(t, p[2])["$project"].(bson.M)
	assert.Equal(t, int32(0), project["_id"])
	assert.Equal(t, bson.M{"$round": bson.A{"$avgRating", int32(2)}}, project["avgRating"])

	sort := toMap(t, p[3])
	assert.Equal(t, bson.M{"avgRating": int32(-1)}, sort["$sort"])
}

func TestAddReviewUpdate(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.FixedZone("IST", 19800))
	review := model.Review{UserID: "U999", Username: "U999", Rating: 4, Comment: "Good value", Date: model.NewReviewDate(now)}

	got := toMap(t, addReviewUpdate(review, now))

	set := got["$set"].(bson.M)
	assert.Equal(t, "2025-01-01T21:34:05.000Z", set["updated_at"])

	pushed := got["$push"].(bson.M)["reviews"].(bson.M)
	assert.Equal(t, "U999", pushed["user_id"])
	assert.Equal(t, "Good value", pushed["comment"])
	assert.IsType(t, primitive.DateTime(0), pushed["date"])
}

func TestAddReviewUpdate_MillisecondTimestamp(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC)
	review := model.Review{UserID: "U999", Rating: 4, Date: model.NewReviewDate(now)}

	got := toMap(t, addReviewUpdate(review, now))

	set := got["$set"].(bson.M)
	assert.Equal(t, "2025-01-02T03:04:05.123Z", set["updated_at"])

	pushed := got["$push"].(bson.M)["reviews"].(bson.M)
	date := pushed["date"].(primitive.DateTime)
	assert.Equal(t, set["updated_at"], date.Time().UTC().Format("2006-01-02T15:04:05.000Z"))
}

func TestLastReviewPipeline(t *testing.T) {
	p := lastReviewPipeline("ELEC001")
	require.Equal(t, []string{"$match", "$project", "$limit"}, stageNames(p))

	match := toMap(t, p[0])
	assert.Equal(t, bson.M{"product_id": "ELEC001"}, match["$match"])

	project := toMap(t, p[1])["$project"].(bson.M)
	slice := project["last_review"].(bson.M)["$slice"].(bson.A)
	require.Len(t, slice, 2)
	assert.Equal(t, int32(-1), slice[1])
}

func TestCategoryPricePipeline(t *testing.T) {
	p := categoryPricePipeline()
	require.Equal(t, []string{"$group", "$project", "$sort"}, stageNames(p))

	group := toMap(t, p[0])["$group"].(bson.M)
	assert.Equal(t, "$category", group["_id"])
	assert.Equal(t, bson.M{"$avg": "$price"}, group["avg_price"])
	assert.Equal(t, bson.M{"$sum": int32(1)}, group["product_count"])

	project := toMap(t, p[1])["$project"].(bson.M)
	assert.Equal(t, "$_id", project["category"])
	assert.Equal(t, bson.M{"$round": bson.A{"$avg_price", int32(2)}}, project["avg_price"])

	sort := toMap(t, p[2])
	assert.Equal(t, bson.M{"avg_price": int32(-1)}, sort["$sort"])
}
