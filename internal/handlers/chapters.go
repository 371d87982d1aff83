// internal/handlers/chapters.go
package handlers

import (
	"net/http"

	"storyhub/internal/httputils"
	"storyhub/internal/models"
	"storyhub/internal/store"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type chapterInput struct {
	StoryID string `json:"story_id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

// ListChaptersByStory handles GET /api/chapters/story/{storyId}, oldest first
func (h *Handlers) ListChaptersByStory(w http.ResponseWriter, r *http.Request) {
	storyID, ok := pathID(w, r, "storyId", "story id")
	if !ok {
		return
	}

	chapters := []models.Chapter{}
	err := h.store.Find(r.Context(), store.Chapters, store.Filter{"story_id": storyID}, &chapters,
		store.SortBy("created_at", false))
	if err != nil {
		h.fail(w, r, "Error fetching chapters", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, chapters)
}

// GetChapter handles GET /api/chapters/{id}
func (h *Handlers) GetChapter(w http.ResponseWriter, r *http.Request) {
	var chapter models.Chapter
	err := h.store.FindByID(r.Context(), store.Chapters, mux.Vars(r)["id"], &chapter)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Chapter not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error fetching chapter", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, chapter)
}

// CreateChapter handles POST /api/chapters
func (h *Handlers) CreateChapter(w http.ResponseWriter, r *http.Request) {
	var in chapterInput
	if !h.decode(w, r, &in) {
		return
	}
	if in.StoryID == "" || in.Title == "" || in.Body == "" {
		httputils.WriteMessage(w, http.StatusBadRequest, "story_id, title and body are required")
		return
	}
	storyID, err := primitive.ObjectIDFromHex(in.StoryID)
	if err != nil {
		httputils.WriteMessage(w, http.StatusBadRequest, "Invalid story id")
		return
	}

	now := h.now()
	chapter := &models.Chapter{
		StoryID:   storyID,
		Title:     in.Title,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.store.Save(r.Context(), store.Chapters, chapter); err != nil {
		h.fail(w, r, "Error creating chapter", err)
		return
	}
	httputils.WriteJSON(w, http.StatusCreated, chapter)
}

// UpdateChapter handles PUT /api/chapters/{id}
func (h *Handlers) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	var in chapterInput
	if !h.decode(w, r, &in) {
		return
	}

	var chapter models.Chapter
	err := h.store.FindByID(r.Context(), store.Chapters, mux.Vars(r)["id"], &chapter)
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Chapter not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error updating chapter", err)
		return
	}

	chapter.Title = orKeep(in.Title, chapter.Title)
	chapter.Body = orKeep(in.Body, chapter.Body)
	chapter.UpdatedAt = h.now()

	if err := h.store.Save(r.Context(), store.Chapters, &chapter); err != nil {
		h.fail(w, r, "Error updating chapter", err)
		return
	}
	httputils.WriteJSON(w, http.StatusOK, chapter)
}

// DeleteChapter handles DELETE /api/chapters/{id}
func (h *Handlers) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	err := h.store.DeleteOne(r.Context(), store.Chapters, mux.Vars(r)["id"])
	if isNotFound(err) {
		httputils.WriteMessage(w, http.StatusNotFound, "Chapter not found")
		return
	}
	if err != nil {
		h.fail(w, r, "Error deleting chapter", err)
		return
	}
	deleted(w, "Chapter")
}
