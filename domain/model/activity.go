package model

import "time"

// ActivityEntry is an audit-trail row stored in Mongo. Best-effort: the
// service keeps working when Mongo is unavailable.
type ActivityEntry struct {
	WorkspaceID string    `json:"workspace_id" bson:"workspaceId"`
	Platform    string    `json:"platform"     bson:"platform"`
	Kind        string    `json:"kind"         bson:"kind"` // connected | disconnected | sync_run
	Detail      string    `json:"detail"       bson:"detail"`
	CreatedAt   time.Time `json:"created_at"   bson:"createdAt"`
}
