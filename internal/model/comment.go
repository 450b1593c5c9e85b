package model

import "time"

// ItemComment is a note left on an item by a user.
type ItemComment struct {
	ID        int64  `json:"id" db:"id"`
	UserID    int64  `json:"user_id" db:"user_id"`
	ItemID    int64  `json:"item_id" db:"item_id"`
	Text      string `json:"text" db:"text"`
	IsDeleted bool   `json:"is_deleted" db:"is_deleted"`
}

// ItemCommentRevision is an immutable snapshot of a comment.
type ItemCommentRevision struct {
	ID            int64     `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	ItemCommentID int64     `json:"item_comment_id" db:"item_comment_id"`
	Text          string    `json:"text" db:"text"`
	IsDeleted     bool      `json:"is_deleted" db:"is_deleted"`
}

// JoinedComment is a comment as it appears inside a JoinedItem.
type JoinedComment struct {
	ItemComment
	HasRevisions bool `json:"has_revisions"`
}
