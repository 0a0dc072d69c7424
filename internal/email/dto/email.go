package dto

import "onebox-backend/internal/email/domain"

// SearchResponse is the paginated listing payload.
type SearchResponse struct {
	Emails []*domain.Email `json:"emails"`
	Total  int64           `json:"total"`
	From   int             `json:"from"`
	Size   int             `json:"size"`
}

// UpdateCategoryRequest overrides a stored category with a manual label.
type UpdateCategoryRequest struct {
	Category string `json:"category" binding:"required"`
}

// AddContextRequest stores a custom reply-suggestion context snippet.
type AddContextRequest struct {
	Context  string                 `json:"context" binding:"required"`
	Metadata map[string]interface{} `json:"metadata"`
}

// ReplyResponse carries a freshly generated suggested reply.
type ReplyResponse struct {
	SuggestedReply string `json:"suggestedReply"`
}
