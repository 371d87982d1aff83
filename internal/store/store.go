// internal/store/store.go
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Collection names
const (
	Users      = "users"
	Stories    = "stories"
	Chapters   = "chapters"
	Categories = "categories"
)

var (
	// ErrNotFound is returned when no document matches
	ErrNotFound = errors.New("document not found")

	// ErrDuplicate is returned when a save violates a unique index
	ErrDuplicate = errors.New("duplicate document")
)

// Filter is an equality filter on top-level fields. A filter value matches an
// array field when any element equals it.
type Filter = bson.M

// Document is a record that carries its own ObjectID
type Document interface {
	GetID() primitive.ObjectID
	SetID(id primitive.ObjectID)
}

// Store is the persistence collaborator used by the gates and handlers
type Store interface {
	// FindByID decodes the document with the given hex id into out
	FindByID(ctx context.Context, collection, id string, out any, opts ...FindOption) error

	// FindOne decodes the first document matching filter into out
	FindOne(ctx context.Context, collection string, filter Filter, out any, opts ...FindOption) error

	// Find decodes every document matching filter into out, a pointer to a slice
	Find(ctx context.Context, collection string, filter Filter, out any, opts ...FindOption) error

	// Save inserts or replaces doc by id, assigning a new id when it has none
	Save(ctx context.Context, collection string, doc Document) error

	// DeleteOne removes the document with the given hex id
	DeleteOne(ctx context.Context, collection, id string) error

	// Close releases the underlying connection
	Close(ctx context.Context) error
}

// FindOptions holds the options applied to a read
type FindOptions struct {
	// Exclude lists fields left out of the decoded document
	Exclude []string

	// SortField orders Find results; empty keeps natural order
	SortField string

	// Descending reverses SortField
	Descending bool
}

// FindOption configures a read
type FindOption func(*FindOptions)

// WithoutFields excludes fields from the decoded document
func WithoutFields(fields ...string) FindOption {
	return func(o *FindOptions) {
		o.Exclude = append(o.Exclude, fields...)
	}
}

// SortBy orders Find results by field
func SortBy(field string, descending bool) FindOption {
	return func(o *FindOptions) {
		o.SortField = field
		o.Descending = descending
	}
}

// ApplyOptions folds opts into a FindOptions value
func ApplyOptions(opts []FindOption) FindOptions {
	var o FindOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ParseID parses a hex ObjectID. Malformed ids cannot name a document, so
// they are reported as ErrNotFound.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: malformed id %q", ErrNotFound, id)
	}
	return oid, nil
}

// EnsureID assigns a fresh ObjectID to doc if it has none and returns the id
func EnsureID(doc Document) primitive.ObjectID {
	if doc.GetID().IsZero() {
		doc.SetID(primitive.NewObjectID())
	}
	return doc.GetID()
}
