package service

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToProject(projectID string, msgType string, payload interface{})
}

// Dashboard event types
const (
	EventScoreUpdated        = "score_updated"
	EventProjectScoreUpdated = "project_score_updated"
)
