// internal/handlers/stories.go
package handlers

import (
	"net/http"

	"storyhub/internal/auth"
	"storyhub/internal/httputils"
	"storyhub/internal/models"
	"storyhub/internal/store"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type storyInput struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Categories *[]string `json:"categories"`
}

// ListStories handles GET /api/stories
func (h *Handlers) ListStories(w http.ResponseWriter, r *http.Request) {
	h.findStories(w, r, nil)
}

// ListStoriesByUploader handles GET /api/stories/user/{uploaderId}
func (h *Handlers) ListStoriesByUploader(w http.ResponseWriter, r *http.Request) {
	uploader, ok := pathID(w, r, "uploaderId", "uploader id")
	if !ok {
		return
	}
	h.findStories(w, r, store.Filter{"uploader": uploader})
}

// ListStoriesByCategory handles GET /api/stories/category/{categoryId}
func (h *Handlers) ListStoriesByCategory(w http.ResponseWriter, r *http.Request) {
	category, ok := pathID(w, r, "categoryId", "category id")
	if !ok {
		return
	}
	h.findStories(w, r, store.Filter{"categories": category})
}

// ListStoriesByStatus handles GET /api/stories/status/{status}
func (h *Handlers) ListStoriesByStatus(w http.ResponseWriter, r *http.Request) {
	h.findStories(w, r, store.Filter{"status": mux.Vars(r)["status"]})
}

func (h *Handlers) findStories(w http.ResponseWriter, r *http.Request, filter store.Filter) {
	stories := []models.Story{}
	if err := h.store.Find(r.Context(), store.Stories, filter, &stories); err != nil {
		h.fail(w, r, "Error fetching stories", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, stories)
}

// GetStory handles GET /api/stories/{id}
func (h *Handlers) GetStory(w http.ResponseWriter, r *http.Request) {
	var story models.Story
	err := h.store.FindByID(r.Context(), store.Stories, mux.Vars(r)["id"], &story)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error fetching story", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, story)
}

// CreateStory handles POST /api/stories. The caller becomes the uploader.
func (h *Handlers) CreateStory(w http.ResponseWriter, r *http.Request) {
	var in storyInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.Title == "" || in.Content == "" {
		httputils.WriteMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	categories := []primitive.ObjectID{}
	if in.Categories != nil {
		var err error
		if categories, err = objectIDs(*in.Categories); err != nil {
			httputils.WriteMessage(w, http.StatusBadRequest, "Invalid category id")
			return
		}
	}

	principal := auth.PrincipalFromContext(r.Context())
	uploader, err := primitive.ObjectIDFromHex(principal.ID)
	if err != nil {
		h.fail(w, r, "Error creating story", err)
		return
	}

	now := h.now()
	story := &models.Story{
		Title:      in.Title,
		Content:    in.Content,
		Author:     in.Author,
		Uploader:   uploader,
		Categories: categories,
		Ratings:    []models.Rating{},
		Comments:   []models.Comment{},
		Followers:  []primitive.ObjectID{},
		Status:     models.StatusOngoing,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := h.store.Save(r.Context(), store.Stories, story); err != nil {
		h.fail(w, r, "Error creating story", err)
		return
	}

	h.log(r).Info("Story created", "story_id", story.ID.Hex())
	httputils.WriteJSON(w, http.StatusCreated, story)
}

// UpdateStory handles PUT /api/stories/{id}. Empty fields keep their stored values.
func (h *Handlers) UpdateStory(w http.ResponseWriter, r *http.Request) {
	var in storyInput
	if !h.decode(w, r, &in) {
		return
	}

	var story models.Story
	err := h.store.FindByID(r.Context(), store.Stories, mux.Vars(r)["id"], &story)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error updating story", err)
		return
	}

	story.Title = orKeep(in.Title, story.Title)
	story.Content = orKeep(in.Content, story.Content)
	story.Author = orKeep(in.Author, story.Author)
	if in.Categories != nil {
		categories, err := objectIDs(*in.Categories)
		if err != nil {
			httputils.WriteMessage(w, http.StatusBadRequest, "Invalid category id")
			return
		}
		story.Categories = categories
	}
	story.UpdatedAt = h.now()

	if err := h.store.Save(r.Context(), store.Stories, &story); err != nil {
		h.fail(w, r, "Error updating story", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, story)
}

// DeleteStory handles DELETE /api/stories/{id}
func (h *Handlers) DeleteStory(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteOne(r.Context(), store.Stories, mux.Vars(r)["id"])
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Story not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error deleting story", err)
		return
	}

	h.log(r).Info("Story deleted", "story_id", mux.Vars(r)["id"])
	deleted(w, "Story")
}
