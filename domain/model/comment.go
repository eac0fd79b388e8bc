package model

import "time"

// CommentRecord mirrors one external comment (or reply) on a post.
// Upserted by (post_platform_id, external_comment_id) so retried pages dedupe.
type CommentRecord struct {
	ID                int64     `json:"id"`
	PostPlatformID    string    `json:"post_platform_id"`
	ExternalCommentID string    `json:"external_comment_id"`
	ParentExternalID  *string   `json:"parent_external_id,omitempty"`
	Author            string    `json:"author"`
	Body              string    `json:"body"`
	PublishedAt       time.Time `json:"published_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SyncCursor marks incremental comment-sync progress per post. It is advanced
// only after a page has been durably committed and never moves backwards.
type SyncCursor struct {
	PostPlatformID string    `json:"post_platform_id"`
	LastExternalID string    `json:"last_external_id"`
	LastTimestamp  time.Time `json:"last_timestamp"`
	UpdatedAt      time.Time `json:"updated_at"`
}
