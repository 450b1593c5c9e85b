package store

import (
	"context"
	"strings"

	"inventory/internal/db"
	"inventory/internal/model"
)

var (
	// insertComment refuses soft-deleted items; a missing item still fails
	// on the foreign key.
	insertComment = db.Statement{
		Name: "inserting comment",
		Mode: db.Mutate,
		SQL: `INSERT INTO item_comment (user_id, item_id, text)
		      SELECT ?, ?, ?
		      WHERE NOT EXISTS (SELECT 1 FROM item WHERE id = ? AND is_deleted = 1)`,
	}
	selectCommentByID = db.Statement{
		Name: "getting comment",
		Mode: db.One,
		SQL:  `SELECT id, user_id, item_id, text, is_deleted FROM item_comment WHERE id = ?`,
	}
	updateComment = db.Statement{
		Name: "updating comment",
		Mode: db.Mutate,
		SQL:  `UPDATE item_comment SET text = ? WHERE id = ? AND is_deleted = 0`,
	}
	flagCommentDeleted = db.Statement{
		Name: "deleting comment",
		Mode: db.One,
		SQL: `UPDATE item_comment SET is_deleted = 1
		      WHERE id = ? AND is_deleted = 0
		      RETURNING text`,
	}
)

func validateComment(text string) error {
	if strings.TrimSpace(text) == "" {
		return db.Validation("text", "must not be empty")
	}
	return nil
}

// CreateItemComment adds a comment to an item and records its first revision.
// A missing item surfaces as a foreign key *db.IntegrityError.
func CreateItemComment(ctx context.Context, c *db.Conn, userID, itemID int64, text string) (int64, error) {
	if err := validateComment(text); err != nil {
		return 0, err
	}

	var id int64
	err := c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, insertComment, userID, itemID, text, itemID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}
		id = res.LastInsertID

		_, err = RecordCommentRevision(ctx, c, userID, id, text, false)
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetItemCommentByID returns a comment, including soft-deleted ones.
func GetItemCommentByID(ctx context.Context, c *db.Conn, id int64) (*model.ItemComment, error) {
	comment := &model.ItemComment{}
	if err := c.One(ctx, selectCommentByID, comment, id); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateItemCommentByID replaces a live comment's text and records a revision.
func UpdateItemCommentByID(ctx context.Context, c *db.Conn, userID, commentID int64, text string) error {
	if err := validateComment(text); err != nil {
		return err
	}

	return c.Transaction(ctx, func() error {
		res, err := c.Mutate(ctx, updateComment, text, commentID)
		if err != nil {
			return err
		}
		if res.RowsAffected == 0 {
			return db.ErrNotFound
		}

		_, err = RecordCommentRevision(ctx, c, userID, commentID, text, false)
		return err
	})
}

// UpdateItemCommentDeletionFlagByID soft-deletes a comment and records a
// revision with its final text.
func UpdateItemCommentDeletionFlagByID(ctx context.Context, c *db.Conn, userID, commentID int64) error {
	return c.Transaction(ctx, func() error {
		var text string
		if err := c.One(ctx, flagCommentDeleted, &text, commentID); err != nil {
			return err
		}

		_, err := RecordCommentRevision(ctx, c, userID, commentID, text, true)
		return err
	})
}
