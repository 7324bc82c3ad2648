package domain

import (
	"time"
)

type AuditLog struct {
	ID          int64                  `json:"id"`
	EventTime   time.Time              `json:"event_time"`
	ActorUserID *string                `json:"actor_user_id,omitempty"`
	ActorRole   string                 `json:"actor_role"`
	RoomID      *int64                 `json:"room_id,omitempty"`
	EventType   string                 `json:"event_type"`
	Payload     map[string]interface{} `json:"payload"`
}

const (
	ActorRoleUser   = "user"
	ActorRoleAdmin  = "admin"
	ActorRoleSystem = "system"
)

const (
	EventTypeUserBlocked    = "USER_BLOCKED"
	EventTypeUserUnblocked  = "USER_UNBLOCKED"
	EventTypeMessageDeleted = "MESSAGE_DELETED"
	EventTypeRoomsArchived  = "ROOMS_ARCHIVED"
)
