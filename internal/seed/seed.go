package seed

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrEmptyCatalog       = errors.New("seed catalog is empty")
	ErrMissingProductID   = errors.New("product_id is missing")
	ErrDuplicateProductID = errors.New("duplicate product_id")
	ErrTrailingData       = errors.New("unexpected data after seed array")
)

// Catalog is a seed file decoded into insert-ready documents. Fields are kept
// exactly as the file has them; only product_id is inspected.
type Catalog struct {
	Source     string
	Documents  []bson.D
	ProductIDs []string
}

func (c *Catalog) Len() int {
	return len(c.Documents)
}

// Docs adapts the documents to the driver's InsertMany signature.
func (c *Catalog) Docs() []interface{} {
	docs := make([]interface{}, len(c.Documents))
	for i, d := range c.Documents {
		docs[i] = d
	}
	return docs
}

func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	catalog, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	catalog.Source = path
	return catalog, nil
}

// Parse reads a JSON array of product objects. Each element goes through
// relaxed Extended JSON so integers stay integers and {"$date": ...} values
// become BSON dates.
func Parse(r io.Reader) (*Catalog, error) {
	dec := json.NewDecoder(r)
	var elements []json.RawMessage
	if err := dec.Decode(&elements); err != nil {
		return nil, fmt.Errorf("decode seed array: %w", err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); err != io.EOF {
		if err == nil {
			err = ErrTrailingData
		}
		return nil, fmt.Errorf("decode seed array: %w", err)
	}
	if len(elements) == 0 {
		return nil, ErrEmptyCatalog
	}

	catalog := &Catalog{
		Documents:  make([]bson.D, 0, len(elements)),
		ProductIDs: make([]string, 0, len(elements)),
	}
	seen := make(map[string]int, len(elements))

	for i, raw := range elements {
		var doc bson.D
		if err := bson.UnmarshalExtJSON(raw, false, &doc); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}

		id, err := productID(doc)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		if first, dup := seen[id]; dup {
			return nil, fmt.Errorf("element %d: %w %q (first seen at element %d)", i, ErrDuplicateProductID, id, first)
		}
		seen[id] = i

		catalog.Documents = append(catalog.Documents, doc)
		catalog.ProductIDs = append(catalog.ProductIDs, id)
	}

	return catalog, nil
}

func productID(doc bson.D) (string, error) {
	for _, e := range doc {
		if e.Key != "product_id" {
			continue
		}
		s, ok := e.Value.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return "", fmt.Errorf("%w: want non-empty string, got %v", ErrMissingProductID, e.Value)
		}
		return s, nil
	}
	return "", ErrMissingProductID
}
