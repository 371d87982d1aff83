package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"storyhub/internal/auth"
	"storyhub/internal/models"
	"storyhub/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSaveAndFindByID(t *testing.T) {
	ctx := context.Background()
	s := New()

	u := &models.User{Username: "ana", Email: "ana@example.com", Password: "hash", Role: auth.RoleReader}
	require.NoError(t, s.Save(ctx, store.Users, u))
	require.False(t, u.ID.IsZero())

	var got models.User
	require.NoError(t, s.FindByID(ctx, store.Users, u.ID.Hex(), &got))
	assert.Equal(t, "ana@example.com", got.Email)
	assert.Equal(t, "hash", got.Password)

	var projected models.User
	require.NoError(t, s.FindByID(ctx, store.Users, u.ID.Hex(), &projected, store.WithoutFields("password")))
	assert.Empty(t, projected.Password)
	assert.Equal(t, auth.RoleReader, projected.Role)
}

func TestSaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := &models.Category{Name: "Fantasy"}
	require.NoError(t, s.Save(ctx, store.Categories, c))
	c.Description = "Dragons"
	require.NoError(t, s.Save(ctx, store.Categories, c))

	var all []models.Category
	require.NoError(t, s.Find(ctx, store.Categories, nil, &all))
	require.Len(t, all, 1)
	assert.Equal(t, "Dragons", all[0].Description)
}

func TestSaveRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Save(ctx, store.Users, &models.User{Email: "a@example.com"}))
	err := s.Save(ctx, store.Users, &models.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, store.ErrDuplicate)

	require.NoError(t, s.Save(ctx, store.Categories, &models.Category{Name: "Horror"}))
	err = s.Save(ctx, store.Categories, &models.Category{Name: "Horror"})
	assert.ErrorIs(t, err, store.ErrDuplicate)
}

func TestFindByIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	var u models.User
	assert.ErrorIs(t, s.FindByID(ctx, store.Users, primitive.NewObjectID().Hex(), &u), store.ErrNotFound)
	assert.ErrorIs(t, s.FindByID(ctx, store.Users, "not-an-id", &u), store.ErrNotFound)
}

func TestFindFilterAndSort(t *testing.T) {
	ctx := context.Background()
	s := New()

	fantasy := primitive.NewObjectID()
	uploader := primitive.NewObjectID()
	stories := []*models.Story{
		{Title: "A", Uploader: uploader, Categories: []primitive.ObjectID{fantasy}, Status: models.StatusOngoing},
		{Title: "B", Uploader: primitive.NewObjectID(), Status: models.StatusFull},
		{Title: "C", Uploader: uploader, Categories: []primitive.ObjectID{primitive.NewObjectID(), fantasy}, Status: models.StatusFull},
	}
	for _, st := range stories {
		require.NoError(t, s.Save(ctx, store.Stories, st))
	}

	var byUploader []models.Story
	require.NoError(t, s.Find(ctx, store.Stories, store.Filter{"uploader": uploader}, &byUploader))
	assert.Equal(t, []string{"A", "C"}, titles(byUploader))

	var byCategory []models.Story
	require.NoError(t, s.Find(ctx, store.Stories, store.Filter{"categories": fantasy}, &byCategory))
	assert.Equal(t, []string{"A", "C"}, titles(byCategory))

	var full []models.Story
	require.NoError(t, s.Find(ctx, store.Stories, store.Filter{"status": models.StatusFull}, &full, store.SortBy("title", true)))
	assert.Equal(t, []string{"C", "B"}, titles(full))

	var none []models.Story
	require.NoError(t, s.Find(ctx, store.Stories, store.Filter{"status": models.StatusDropped}, &none))
	assert.Empty(t, none)
}

func TestFindSortsByTime(t *testing.T) {
	ctx := context.Background()
	s := New()

	storyID := primitive.NewObjectID()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, store.Chapters, &models.Chapter{StoryID: storyID, Title: "two", CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, s.Save(ctx, store.Chapters, &models.Chapter{StoryID: storyID, Title: "one", CreatedAt: base}))

	var chapters []models.Chapter
	require.NoError(t, s.Find(ctx, store.Chapters, store.Filter{"story_id": storyID}, &chapters, store.SortBy("created_at", false)))
	require.Len(t, chapters, 2)
	assert.Equal(t, "one", chapters[0].Title)
	assert.Equal(t, "two", chapters[1].Title)
}

func TestFindRequiresSlicePointer(t *testing.T) {
	var u models.User
	err := New().Find(context.Background(), store.Users, nil, &u)
	assert.Error(t, err)
}

func TestDeleteOne(t *testing.T) {
	ctx := context.Background()
	s := New()

	c := &models.Category{Name: "Mystery"}
	require.NoError(t, s.Save(ctx, store.Categories, c))
	require.NoError(t, s.DeleteOne(ctx, store.Categories, c.ID.Hex()))

	var got models.Category
	assert.ErrorIs(t, s.FindByID(ctx, store.Categories, c.ID.Hex(), &got), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteOne(ctx, store.Categories, c.ID.Hex()), store.ErrNotFound)

	// the name is free again
	require.NoError(t, s.Save(ctx, store.Categories, &models.Category{Name: "Mystery"}))
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New()
	var u models.User
	assert.ErrorIs(t, s.FindByID(ctx, store.Users, primitive.NewObjectID().Hex(), &u), context.Canceled)
	assert.ErrorIs(t, s.Save(ctx, store.Users, &models.User{}), context.Canceled)
}

func titles(stories []models.Story) []string {
	out := make([]string, 0, len(stories))
	for _, st := range stories {
		out = append(out, st.Title)
	}
	return out
}

func TestConcurrentReadsOnFreshStore(t *testing.T) {
	ctx := context.Background()

	for round := 0; round < 50; round++ {
		s := New()

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("c%d", i)

				var out []models.Category
				assert.NoError(t, s.Find(ctx, name, nil, &out))
				assert.Empty(t, out)

				var one models.Category
				assert.ErrorIs(t, s.FindOne(ctx, name, store.Filter{"name": "x"}, &one), store.ErrNotFound)
				assert.ErrorIs(t, s.FindByID(ctx, name, primitive.NewObjectID().Hex(), &one), store.ErrNotFound)
				assert.ErrorIs(t, s.DeleteOne(ctx, name, primitive.NewObjectID().Hex()), store.ErrNotFound)
			}(i)
		}
		wg.Wait()
	}
}
