package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"inventory/internal/imaging"
	"inventory/internal/model"
	"inventory/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct{}

// List handles GET /api/items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.GetAllJoinedItems(r.Context(), connFrom(r))
	if err != nil {
		storeError(w, r, err, "item")
		return
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /api/items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	id, err := store.CreateItem(r.Context(), connFrom(r), claims.UserID, req)
	if err != nil {
		storeError(w, r, err, "item")
		return
	}

	slog.Info("item created", "item_id", id, "user", claims.Username)
	jsonResponse(w, http.StatusCreated, idResponse{ID: id})
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetJoinedItemByID(r.Context(), connFrom(r), id)
	if err != nil {
		storeError(w, r, err, "item")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req model.ItemInput
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItemByID(r.Context(), connFrom(r), claims.UserID, id, req); err != nil {
		storeError(w, r, err, "item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItemDeletionFlagByID(r.Context(), connFrom(r), claims.UserID, id); err != nil {
		storeError(w, r, err, "item")
		return
	}

	slog.Info("item deleted", "item_id", id, "user", claims.Username)
	w.WriteHeader(http.StatusNoContent)
}

// Revisions handles GET /api/items/{id}/revisions.
func (h *ItemsHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	revs, err := store.ListItemRevisions(r.Context(), connFrom(r), id)
	if err != nil {
		storeError(w, r, err, "item")
		return
	}
	jsonResponse(w, http.StatusOK, revs)
}

// UploadImage handles PUT /api/items/{id}/image.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	img, err := imaging.Normalize(id, file)
	switch {
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		jsonError(w, http.StatusBadRequest, "image must be JPEG or PNG")
		return
	case errors.Is(err, imaging.ErrTooLarge):
		jsonError(w, http.StatusRequestEntityTooLarge, "image too large")
		return
	case err != nil:
		slog.Error("processing image", "item_id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to process image")
		return
	}

	if err := store.SetItemImage(r.Context(), connFrom(r), img); err != nil {
		storeError(w, r, err, "item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	img, err := store.GetItemImage(r.Context(), connFrom(r), id)
	if err != nil {
		storeError(w, r, err, "image")
		return
	}

	w.Header().Set("Content-Type", img.Mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(img.Data)
}
