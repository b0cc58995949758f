package websocket

import "time"

// Envelope: конверт любого сообщения; по Type фронтенд решает, что делать.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

const MessageTableRefresh = "table_refresh"

// TableRefreshPayload: список этой коллекции изменился, его нужно перечитать.
type TableRefreshPayload struct {
	Kind    string   `json:"kind"`
	Actions []string `json:"actions"`
	IDs     []string `json:"ids"`
	Group   string   `json:"group,omitempty"`
	ActorID string   `json:"actor_id,omitempty"`
}
