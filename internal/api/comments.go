package api

import (
	"net/http"

	"inventory/internal/model"
	"inventory/internal/store"
)

// CommentsHandler handles item comment endpoints.
type CommentsHandler struct{}

type commentRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

// Create handles POST /api/items/{id}/comments.
func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	id, err := store.CreateItemComment(r.Context(), connFrom(r), claims.UserID, itemID, req.Text)
	if err != nil {
		storeError(w, r, err, "item")
		return
	}
	jsonResponse(w, http.StatusCreated, idResponse{ID: id})
}

// Update handles PUT /api/items/{id}/comments/{comment_id}.
func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItemCommentByID(r.Context(), connFrom(r), claims.UserID, comment.ID, req.Text); err != nil {
		storeError(w, r, err, "comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/items/{id}/comments/{comment_id}.
func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.lookup(w, r)
	if !ok {
		return
	}

	claims := GetClaims(r.Context())
	if err := store.UpdateItemCommentDeletionFlagByID(r.Context(), connFrom(r), claims.UserID, comment.ID); err != nil {
		storeError(w, r, err, "comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Revisions handles GET /api/items/{id}/comments/{comment_id}/revisions.
func (h *CommentsHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	comment, ok := h.lookup(w, r)
	if !ok {
		return
	}

	revs, err := store.ListCommentRevisions(r.Context(), connFrom(r), comment.ID)
	if err != nil {
		storeError(w, r, err, "comment")
		return
	}
	jsonResponse(w, http.StatusOK, revs)
}

// lookup resolves the comment named in the path and checks that it belongs
// to the item named in the path. It writes the error response itself.
func (h *CommentsHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.ItemComment, bool) {
	itemID, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return nil, false
	}
	commentID, ok := pathID(r, "comment_id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid comment id")
		return nil, false
	}

	comment, err := store.GetItemCommentByID(r.Context(), connFrom(r), commentID)
	if err != nil {
		storeError(w, r, err, "comment")
		return nil, false
	}
	if comment.ItemID != itemID {
		jsonError(w, http.StatusNotFound, "comment not found")
		return nil, false
	}
	return comment, true
}
