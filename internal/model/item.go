package model

import "time"

// Item is a stock-keeping unit tracked by quantity.
type Item struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
	Quantity    int64   `json:"quantity" db:"quantity"`
	Unit        *string `json:"unit" db:"unit"`
	IsDeleted   bool    `json:"is_deleted" db:"is_deleted"`
}

// ItemInput holds the editable fields of an item.
type ItemInput struct {
	Name        string  `json:"name" db:"name" validate:"required,max=200"`
	Description *string `json:"description" db:"description" validate:"omitempty,max=2000"`
	Quantity    int64   `json:"quantity" db:"quantity" validate:"min=0"`
	Unit        *string `json:"unit" db:"unit" validate:"omitempty,max=50"`
}

// ItemRevision is an immutable snapshot of an item taken at each change.
type ItemRevision struct {
	ID          int64     `json:"id" db:"id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ItemID      int64     `json:"item_id" db:"item_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	Quantity    int64     `json:"quantity" db:"quantity"`
	Unit        *string   `json:"unit" db:"unit"`
	IsDeleted   bool      `json:"is_deleted" db:"is_deleted"`
}

// ItemTag is a label shared between items.
type ItemTag struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// ItemImage is the normalised photo attached to an item.
type ItemImage struct {
	ItemID    int64     `json:"item_id" db:"item_id"`
	Data      []byte    `json:"-" db:"data"`
	Mime      string    `json:"mime" db:"mime"`
	Width     int       `json:"width" db:"width"`
	Height    int       `json:"height" db:"height"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JoinedItem is an item together with its tags and live comments.
type JoinedItem struct {
	Item
	Tags         []ItemTag       `json:"tags"`
	Comments     []JoinedComment `json:"comments"`
	HasRevisions bool            `json:"has_revisions"`
}
