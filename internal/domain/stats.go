package domain

// ChatStats is a caller-scoped snapshot of chat activity.
type ChatStats struct {
	ActiveRooms       int   `json:"active_rooms"`
	ActiveConnections int   `json:"active_connections"`
	Unread            int64 `json:"unread"`
}
