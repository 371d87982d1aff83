// internal/store/memory/memory.go
package memory

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"storyhub/internal/store"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slices"
)

// uniqueFields mirrors the unique indexes created by the mongo store
var uniqueFields = map[string]string{
	store.Users:      "email",
	store.Categories: "name",
}

type collection struct {
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.Raw
}

// Store is an in-process store.Store. Documents are kept bson-encoded so
// callers never share memory with stored records.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// New creates an empty store
func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// coll returns the named collection, creating it. Callers hold s.mu for writing.
func (s *Store) coll(name string) *collection {
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[primitive.ObjectID]bson.Raw)}
		s.collections[name] = c
	}
	return c
}

// lookup returns the named collection or nil. Callers hold s.mu.
func (s *Store) lookup(name string) *collection {
	return s.collections[name]
}

// FindByID implements store.Store
func (s *Store) FindByID(ctx context.Context, collection, id string, out any, opts ...store.FindOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	c := s.lookup(collection)
	if c == nil {
		return store.ErrNotFound
	}
	raw, ok := c.docs[oid]
	if !ok {
		return store.ErrNotFound
	}
	return decode(raw, out, store.ApplyOptions(opts))
}

// FindOne implements store.Store
func (s *Store) FindOne(ctx context.Context, collection string, filter store.Filter, out any, opts ...store.FindOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := s.match(collection, filter)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return store.ErrNotFound
	}
	return decode(matches[0], out, store.ApplyOptions(opts))
}

// Find implements store.Store
func (s *Store) Find(ctx context.Context, collection string, filter store.Filter, out any, opts ...store.FindOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	slice := reflect.ValueOf(out)
	if slice.Kind() != reflect.Pointer || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("find: out must be a pointer to a slice, got %T", out)
	}
	slice = slice.Elem()

	s.mu.RLock()
	matches, err := s.match(collection, filter)
	s.mu.RUnlock()
	if err != nil {
		return err
	}

	o := store.ApplyOptions(opts)
	if o.SortField != "" {
		sortRaw(matches, o.SortField, o.Descending)
	}

	result := reflect.MakeSlice(slice.Type(), 0, len(matches))
	for _, raw := range matches {
		elem := reflect.New(slice.Type().Elem())
		if err := decode(raw, elem.Interface(), o); err != nil {
			return err
		}
		result = reflect.Append(result, elem.Elem())
	}
	slice.Set(result)
	return nil
}

// Save implements store.Store
func (s *Store) Save(ctx context.Context, collection string, doc store.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := store.EnsureID(doc)
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.coll(collection)
	if field, ok := uniqueFields[collection]; ok {
		if value := bson.Raw(raw).Lookup(field); value.Type != 0 {
			for otherID, other := range c.docs {
				if otherID != id && equal(other.Lookup(field), value) {
					return fmt.Errorf("%w: %s already taken", store.ErrDuplicate, field)
				}
			}
		}
	}

	if _, exists := c.docs[id]; !exists {
		c.order = append(c.order, id)
	}
	c.docs[id] = raw
	return nil
}

// DeleteOne implements store.Store
func (s *Store) DeleteOne(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.lookup(collection)
	if c == nil {
		return store.ErrNotFound
	}
	if _, ok := c.docs[oid]; !ok {
		return store.ErrNotFound
	}
	delete(c.docs, oid)
	for i, other := range c.order {
		if other == oid {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Close implements store.Store
func (s *Store) Close(context.Context) error {
	return nil
}

// match returns the documents of collection matching filter in insertion
// order. Callers hold s.mu.
func (s *Store) match(collection string, filter store.Filter) ([]bson.Raw, error) {
	want := make(map[string]bson.RawValue, len(filter))
	for field, v := range filter {
		t, data, err := bson.MarshalValue(v)
		if err != nil {
			return nil, fmt.Errorf("invalid filter value for %s: %w", field, err)
		}
		want[field] = bson.RawValue{Type: t, Value: data}
	}

	c := s.lookup(collection)
	if c == nil {
		return nil, nil
	}
	var matches []bson.Raw
	for _, id := range c.order {
		raw := c.docs[id]
		if matchesAll(raw, want) {
			matches = append(matches, raw)
		}
	}
	return matches, nil
}

func matchesAll(raw bson.Raw, want map[string]bson.RawValue) bool {
	for field, v := range want {
		if !matchesValue(raw.Lookup(field), v) {
			return false
		}
	}
	return true
}

func equal(a, b bson.RawValue) bool {
	return a.Type == b.Type && bytes.Equal(a.Value, b.Value)
}

func matchesValue(got, want bson.RawValue) bool {
	if equal(got, want) {
		return true
	}
	if got.Type != bson.TypeArray || want.Type == bson.TypeArray {
		return false
	}
	values, err := got.Array().Values()
	if err != nil {
		return false
	}
	for _, elem := range values {
		if equal(elem, want) {
			return true
		}
	}
	return false
}

func sortRaw(docs []bson.Raw, field string, descending bool) {
	sort.SliceStable(docs, func(i, j int) bool {
		a, b := docs[i].Lookup(field), docs[j].Lookup(field)
		if descending {
			return less(b, a)
		}
		return less(a, b)
	})
}

func less(a, b bson.RawValue) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	switch a.Type {
	case bson.TypeDateTime:
		return a.Time().Before(b.Time())
	case bson.TypeString:
		return a.StringValue() < b.StringValue()
	case bson.TypeInt32:
		return a.Int32() < b.Int32()
	case bson.TypeInt64:
		return a.Int64() < b.Int64()
	case bson.TypeDouble:
		return a.Double() < b.Double()
	case bson.TypeObjectID:
		oa, ob := a.ObjectID(), b.ObjectID()
		return bytes.Compare(oa[:], ob[:]) < 0
	default:
		return false
	}
}

func decode(raw bson.Raw, out any, o store.FindOptions) error {
	if len(o.Exclude) > 0 {
		var d bson.D
		if err := bson.Unmarshal(raw, &d); err != nil {
			return fmt.Errorf("failed to decode document: %w", err)
		}
		kept := d[:0]
		for _, e := range d {
			if !slices.Contains(o.Exclude, e.Key) {
				kept = append(kept, e)
			}
		}
		projected, err := bson.Marshal(kept)
		if err != nil {
			return fmt.Errorf("failed to encode projection: %w", err)
		}
		raw = projected
	}

	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}
