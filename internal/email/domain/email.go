package domain

import (
	"fmt"
	"time"
)

// Address is one mail address with an optional display name.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// Email is the canonical, deduplicated form of one ingested message.
// The ID is accountID + "_" + uid, which doubles as the dedup key.
type Email struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	AccountID      string    `json:"accountId" gorm:"index:idx_account_uid,unique;not null"`
	Folder         string    `json:"folder"`
	From           Address   `json:"from" gorm:"embedded;embeddedPrefix:from_"`
	To             []Address `json:"to" gorm:"serializer:json"`
	Subject        string    `json:"subject"`
	Body           string    `json:"body"`
	HTML           string    `json:"html,omitempty"`
	Date           time.Time `json:"date" gorm:"index"`
	UID            uint32    `json:"uid" gorm:"index:idx_account_uid,unique"`
	Category       Category  `json:"category" gorm:"index"`
	SuggestedReply string    `json:"suggestedReply,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// EmailID builds the canonical identifier for a message. The same
// (accountID, uid) pair always produces the same id.
func EmailID(accountID string, uid uint32) string {
	return fmt.Sprintf("%s_%d", accountID, uid)
}

// SearchQuery describes a filtered, paginated message listing.
type SearchQuery struct {
	Query     string
	AccountID string
	Folder    string
	Category  Category
	From      int
	Size      int
}

// Stats aggregates message counts for the overview endpoint.
type Stats struct {
	Total      int64              `json:"total"`
	ByCategory map[Category]int64 `json:"byCategory"`
}
