// internal/authz/ownership/guard.go
package ownership

import (
	"context"
	"errors"
	"fmt"

	"storyhub/internal/authz"
	"storyhub/internal/models"
	"storyhub/internal/store"
)

// Guard resolves the owner of a resource instance from storage so the
// policy engine only ever sees descriptors
type Guard struct {
	store store.Store
}

// NewGuard creates a guard reading from s
func NewGuard(s store.Store) *Guard {
	return &Guard{store: s}
}

// ResolveOwner returns the owner descriptor for the resource. Stories are
// owned by their uploader and users by themselves. Categories and chapters
// have no per-instance owner and are not looked up.
func (g *Guard) ResolveOwner(ctx context.Context, rt authz.ResourceType, id string) (authz.OwnerDescriptor, error) {
	desc := authz.OwnerDescriptor{Type: rt}

	switch rt {
	case authz.ResourceStory:
		var story models.Story
		if err := g.find(ctx, store.Stories, id, &story); err != nil {
			return desc, err
		}
		desc.OwnerID = story.Uploader.Hex()

	case authz.ResourceUser:
		var user models.User
		if err := g.find(ctx, store.Users, id, &user, store.WithoutFields("password")); err != nil {
			return desc, err
		}
		desc.OwnerID = user.ID.Hex()

	case authz.ResourceCategory, authz.ResourceChapter:
		// no per-instance owner

	default:
		return desc, fmt.Errorf("unknown resource type %q", rt)
	}

	return desc, nil
}

func (g *Guard) find(ctx context.Context, collection, id string, out any, opts ...store.FindOption) error {
	err := g.store.FindByID(ctx, collection, id, out, opts...)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s %s", authz.ErrResourceNotFound, collection, id)
	}
	if err != nil {
		return fmt.Errorf("failed to load %s %s: %w", collection, id, err)
	}
	return nil
}
