package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
)

// SyncStatusEvent represents an SSE payload for sync progress updates.
type SyncStatusEvent struct {
	Type        string  `json:"type"`
	WorkspaceID string  `json:"workspace_id"`
	Platform    string  `json:"platform"`
	AccountID   string  `json:"account_id,omitempty"`
	Status      string  `json:"status"`
	Records     int     `json:"records,omitempty"`
	Error       *string `json:"error,omitempty"`
}

// Hub maintains per-workspace subscribers listening for sync status events.
type Hub struct {
	mu         sync.RWMutex
	workspaces map[string]map[chan SyncStatusEvent]struct{}
}

func NewSyncHub() *Hub {
	return &Hub{workspaces: make(map[string]map[chan SyncStatusEvent]struct{})}
}

// Serve registers an SSE stream for one workspace.
func (h *Hub) Serve(c *gin.Context) {
	workspaceID := c.Param("workspaceId")
	if workspaceID == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan SyncStatusEvent, 8)
	h.addSubscriber(workspaceID, ch)
	defer h.removeSubscriber(workspaceID, ch)

	// Initial comment to keep connection open
	c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	notify := c.Writer.CloseNotify()
	for {
		select {
		case <-notify:
			return
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = c.Writer.Write([]byte("event: sync_status\n"))
			_, _ = c.Writer.Write([]byte("data: "))
			_, _ = c.Writer.Write(data)
			_, _ = c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (h *Hub) addSubscriber(workspaceID string, ch chan SyncStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.workspaces[workspaceID] == nil {
		h.workspaces[workspaceID] = make(map[chan SyncStatusEvent]struct{})
	}
	h.workspaces[workspaceID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(workspaceID string, ch chan SyncStatusEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.workspaces[workspaceID]; subs != nil {
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.workspaces, workspaceID)
		}
	}
}

// BroadcastSyncStatus broadcasts to all subscribers of the workspace.
func (h *Hub) BroadcastSyncStatus(evt SyncStatusEvent) {
	h.mu.RLock()
	subs := h.workspaces[evt.WorkspaceID]
	for ch := range subs {
		select { // non-blocking
		case ch <- evt:
		default:
		}
	}
	h.mu.RUnlock()
}
