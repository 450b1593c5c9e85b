package api

import (
	"net/http"

	"inventory/internal/db"
	"inventory/internal/store"
)

// TagsHandler handles tag endpoints.
type TagsHandler struct{}

type tagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// List handles GET /api/tags.
func (h *TagsHandler) List(w http.ResponseWriter, r *http.Request) {
	tags, err := store.GetAllItemTags(r.Context(), connFrom(r))
	if err != nil {
		storeError(w, r, err, "tag")
		return
	}
	jsonResponse(w, http.StatusOK, tags)
}

// Associate handles POST /api/items/{id}/tags. The tag is created if no tag
// with that name exists yet. Tagging an item twice is not an error.
func (h *TagsHandler) Associate(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req tagRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	c := connFrom(r)

	var (
		tagID  int64
		linked bool
	)
	err := c.Transaction(ctx, func() error {
		id, err := store.CreateItemTag(ctx, c, req.Name)
		if err != nil {
			return err
		}
		tagID = id

		err = store.CreateItemTagAssociation(ctx, c, itemID, tagID)
		if db.IsUniqueViolation(err) {
			linked = true
			return nil
		}
		return err
	})
	if err != nil {
		storeError(w, r, err, "item")
		return
	}

	status := http.StatusCreated
	if linked {
		status = http.StatusOK
	}
	jsonResponse(w, status, idResponse{ID: tagID})
}

// Dissociate handles DELETE /api/items/{id}/tags/{tag_id}.
func (h *TagsHandler) Dissociate(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}
	tagID, ok := pathID(r, "tag_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid tag id")
		return
	}

	if err := store.DeleteItemTagAssociation(r.Context(), connFrom(r), itemID, tagID); err != nil {
		storeError(w, r, err, "tag")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
