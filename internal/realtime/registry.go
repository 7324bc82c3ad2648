package realtime

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"campus_exchange/internal/metrics"
	"campus_exchange/pkg/logger"
)

// Registry maps room keys to their live clients. It is owned by the server
// and shared by every session; all mutation happens under mu.
type Registry struct {
	mu     sync.Mutex
	groups map[string][]*Client
	log    logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		groups: make(map[string][]*Client),
		log:    log,
	}
}

// Admit appends c to the group for key, creating the group if absent.
func (r *Registry) Admit(key string, c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups[key] = append(r.groups[key], c)
	metrics.WSConnections.Inc()
	metrics.RoomKeys.Set(float64(len(r.groups)))
}

// Remove drops c from the group for key and deletes the group once it is
// empty. It reports whether c was present.
func (r *Registry) Remove(key string, c *Client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(key, c)
}

func (r *Registry) removeLocked(key string, c *Client) bool {
	group := r.groups[key]
	for i, member := range group {
		if member != c {
			continue
		}
		group = append(group[:i:i], group[i+1:]...)
		if len(group) == 0 {
			delete(r.groups, key)
		} else {
			r.groups[key] = group
		}
		metrics.WSConnections.Dec()
		metrics.RoomKeys.Set(float64(len(r.groups)))
		return true
	}
	return false
}

// Broadcast delivers payload to every open client in the group except
// exclude. Clients that are closed or whose queue is full are removed and
// closed. It returns the number of clients the payload was queued for.
func (r *Registry) Broadcast(key string, payload interface{}, exclude *Client) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal broadcast: %w", err)
	}

	var stale []*Client
	delivered := 0

	r.mu.Lock()
	for _, c := range r.groups[key] {
		if c == exclude {
			continue
		}
		if c.enqueue(data) {
			delivered++
			continue
		}
		stale = append(stale, c)
	}
	for _, c := range stale {
		r.removeLocked(key, c)
	}
	r.mu.Unlock()

	metrics.Deliveries.Add(float64(delivered))
	for _, c := range stale {
		metrics.DroppedDeliveries.Inc()
		r.log.Warn("Dropping slow or closed chat client", "client_id", c.ID, "user_id", c.UserID)
		c.Close(websocket.CloseTryAgainLater, "slow consumer")
	}

	return delivered, nil
}

// Send queues payload for a single client.
func (r *Registry) Send(c *Client, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	if !c.enqueue(data) {
		return errClientGone
	}
	metrics.Deliveries.Inc()
	return nil
}

// Members returns the number of live clients for key.
func (r *Registry) Members(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups[key])
}

// Groups returns the number of room keys with live clients.
func (r *Registry) Groups() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.groups)
}

// UserConnections counts the live clients held by userID.
func (r *Registry) UserConnections(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, group := range r.groups {
		for _, c := range group {
			if c.UserID == userID {
				n++
			}
		}
	}
	return n
}

// Shutdown closes every live client and empties the registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	var all []*Client
	for key, group := range r.groups {
		all = append(all, group...)
		delete(r.groups, key)
	}
	r.mu.Unlock()

	metrics.WSConnections.Sub(float64(len(all)))
	metrics.RoomKeys.Set(0)
	for _, c := range all {
		c.Close(websocket.CloseGoingAway, "server shutting down")
	}

	r.log.Info("Chat registry shut down", "closed_connections", len(all))
}
