package main

import (
	"testing"

	"fleximart-catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	cfg := &config.Config{SeedFile: "data/products_catalog.json", MongoDBName: "fleximart_nosql", MongoCollection: "products"}

	opts, err := parseFlags(nil, cfg)
	require.NoError(t, err)

	assert.Equal(t, "data/products_catalog.json", opts.seedFile)
	assert.Equal(t, "fleximart_nosql", opts.dbName)
	assert.Equal(t, "products", opts.collection)
	assert.Equal(t, "Electronics", opts.plan.Category)
	assert.Equal(t, 50000.0, opts.plan.MaxPrice)
	assert.Equal(t, 4.0, opts.plan.MinAvgRating)
	assert.Equal(t, "ELEC001", opts.plan.ReviewProductID)
	assert.Equal(t, "Good value", opts.plan.Review.Comment)
	assert.False(t, opts.plan.SkipUpdate)
}

func TestParseFlags_Overrides(t *testing.T) {
	cfg := &config.Config{SeedFile: "a.json", MongoDBName: "x", MongoCollection: "y"}

	opts, err := parseFlags([]string{
		"--seed", "b.json",
		"--db", "catalog_test",
		"--collection", "items",
		"--category", "Fashion",
		"--max-price", "3000",
		"--min-rating", "4.5",
		"--skip-update",
	}, cfg)
	require.NoError(t, err)

	assert.Equal(t, "b.json", opts.seedFile)
	assert.Equal(t, "catalog_test", opts.dbName)
	assert.Equal(t, "items", opts.collection)
	assert.Equal(t, "Fashion", opts.plan.Category)
	assert.Equal(t, 3000.0, opts.plan.MaxPrice)
	assert.Equal(t, 4.5, opts.plan.MinAvgRating)
	assert.True(t, opts.plan.SkipUpdate)
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := parseFlags([]string{"--max-price", "cheap"}, &config.Config{})
	assert.Error(t, err)
}
