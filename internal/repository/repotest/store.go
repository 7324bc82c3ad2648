// Package repotest provides an in-memory implementation of the repository
// interfaces for service, realtime and handler tests.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository"
	apperrors "campus_exchange/pkg/errors"
)

// Store holds every table in memory behind one mutex.
type Store struct {
	mu sync.Mutex

	users     map[string]*domain.User
	listings  map[int64]*domain.Listing
	rooms     map[int64]*domain.Room
	messages  map[int64]*domain.Message
	blocks    []*domain.BlockedUser
	reactions []*domain.Reaction
	audits    []*domain.AuditLog
	counters  map[string]int64

	nextID int64

	// FailCreateMessage, when set, is returned by CreateMessage.
	FailCreateMessage error
	// FailAudit, when set, is returned by CreateLog.
	FailAudit error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[string]*domain.User),
		listings: make(map[int64]*domain.Listing),
		rooms:    make(map[int64]*domain.Room),
		messages: make(map[int64]*domain.Message),
		counters: make(map[string]int64),
	}
}

// Repositories wires the store into the repository aggregate.
func (s *Store) Repositories() *repository.Repositories {
	return &repository.Repositories{
		User:      userRepo{s},
		Listing:   listingRepo{s},
		Chat:      chatRepo{s},
		Room:      roomRepo{s},
		Block:     blockRepo{s},
		Reaction:  reactionRepo{s},
		Stats:     statsRepo{s},
		Audit:     auditRepo{s},
		RateLimit: rateLimitRepo{s},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) AddUser(id, email string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &domain.User{ID: id, Email: email, IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.users[id] = u
	return u
}

func (s *Store) AddListing(id int64, ownerID string) *domain.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := &domain.Listing{ID: id, OwnerID: ownerID, Title: "listing", Status: "active", CreatedAt: time.Now()}
	s.listings[id] = l
	return l
}

// Messages returns a copy of every stored message, deleted ones included,
// ordered by id.
func (s *Store) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Message, 0, len(s.messages))
	for _, m := range s.messages {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Rooms() []domain.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditLog, 0, len(s.audits))
	for _, a := range s.audits {
		out = append(out, *a)
	}
	return out
}

// SetFailCreateMessage sets FailCreateMessage under the store lock, for
// tests that fail writes made by another goroutine.
func (s *Store) SetFailCreateMessage(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailCreateMessage = err
}

// SetRoomActivity overrides a room's last activity for archiver tests.
func (s *Store) SetRoomActivity(roomID int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		r.LastMessageAt = &at
	}
}

type userRepo struct{ s *Store }

func (r userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type listingRepo struct{ s *Store }

func (r listingRepo) GetByID(_ context.Context, id int64) (*domain.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, apperrors.ErrListingNotFound
	}
	cp := *l
	return &cp, nil
}

type chatRepo struct{ s *Store }

func inRoom(room *domain.Room, m *domain.Message) bool {
	return room.Contains(m)
}

func (r chatRepo) CreateMessage(_ context.Context, message *domain.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailCreateMessage != nil {
		return r.s.FailCreateMessage
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}
	if message.MessageType == "" {
		message.MessageType = domain.MessageTypeText
	}
	message.ID = r.s.id()
	cp := *message
	r.s.messages[message.ID] = &cp

	for _, room := range r.s.rooms {
		if inRoom(room, message) {
			ts := message.Timestamp
			room.LastMessageAt = &ts
		}
	}
	return nil
}

func (r chatRepo) GetMessageByID(_ context.Context, messageID int64) (*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	cp := *m
	return &cp, nil
}

func (r chatRepo) visible(room *domain.Room) []*domain.Message {
	var out []*domain.Message
	for _, m := range r.s.messages {
		if !m.Deleted && inRoom(room, m) {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

func (r chatRepo) GetMessages(_ context.Context, room *domain.Room, limit, offset int) ([]*domain.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := r.visible(room)
	if offset >= len(all) {
		return []*domain.Message{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (r chatRepo) CountMessages(_ context.Context, room *domain.Room) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.visible(room)), nil
}

func (r chatRepo) UpdateContent(_ context.Context, messageID int64, content string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[messageID]
	if !ok || m.Deleted {
		return apperrors.ErrMessageNotFound
	}
	m.Content = content
	m.Edited = true
	return nil
}

func (r chatRepo) SoftDelete(_ context.Context, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[messageID]
	if !ok || m.Deleted {
		return apperrors.ErrMessageNotFound
	}
	m.Deleted = true
	return nil
}

func (r chatRepo) MarkRead(_ context.Context, messageID int64, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.messages[messageID]; ok && m.ReadAt == nil {
		m.ReadAt = &at
	}
	return nil
}

func (r chatRepo) MarkRoomRead(_ context.Context, room *domain.Room, readerID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	peer := room.Peer(readerID)
	var n int64
	for _, m := range r.s.messages {
		if m.ListingID == room.ListingID && m.ReceiverID == readerID && m.SenderID == peer &&
			m.ReadAt == nil && !m.Deleted {
			ts := at
			m.ReadAt = &ts
			n++
		}
	}
	return n, nil
}

type roomRepo struct{ s *Store }

func (r roomRepo) GetOrCreate(_ context.Context, room *domain.Room) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room.Participant1ID, room.Participant2ID = domain.OrderParticipants(room.Participant1ID, room.Participant2ID)
	for _, existing := range r.s.rooms {
		if existing.ListingID == room.ListingID &&
			existing.Participant1ID == room.Participant1ID &&
			existing.Participant2ID == room.Participant2ID {
			*room = *existing
			return false, nil
		}
	}
	if room.Status == "" {
		room.Status = domain.RoomStatusActive
	}
	if room.CreatedAt.IsZero() {
		room.CreatedAt = time.Now().UTC()
	}
	room.ID = r.s.id()
	cp := *room
	r.s.rooms[room.ID] = &cp
	return true, nil
}

func (r roomRepo) GetByID(_ context.Context, roomID int64) (*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

func (r roomRepo) ListByParticipant(_ context.Context, userID string) ([]*domain.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Room, 0)
	for _, room := range r.s.rooms {
		if room.HasParticipant(userID) {
			cp := *room
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].LastMessageAt, out[j].LastMessageAt
		switch {
		case a == nil && b == nil:
			return out[i].ID > out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return out[i].ID > out[j].ID
		}
		return a.After(*b)
	})
	return out, nil
}

func (r roomRepo) UpdateStatus(_ context.Context, roomID int64, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room, ok := r.s.rooms[roomID]
	if !ok {
		return apperrors.ErrRoomNotFound
	}
	room.Status = status
	return nil
}

func (r roomRepo) ArchiveIdle(_ context.Context, idleSince time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, room := range r.s.rooms {
		last := room.CreatedAt
		if room.LastMessageAt != nil {
			last = *room.LastMessageAt
		}
		if room.Status == domain.RoomStatusActive && last.Before(idleSince) {
			room.Status = domain.RoomStatusArchived
			n++
		}
	}
	return n, nil
}

type blockRepo struct{ s *Store }

func (r blockRepo) Create(_ context.Context, block *domain.BlockedUser) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.blocks {
		if b.UserID == block.UserID && b.BlockedBy == block.BlockedBy {
			return apperrors.ErrAlreadyBlocked
		}
	}
	block.ID = r.s.id()
	if block.CreatedAt.IsZero() {
		block.CreatedAt = time.Now().UTC()
	}
	cp := *block
	r.s.blocks = append(r.s.blocks, &cp)
	return nil
}

func (r blockRepo) Delete(_ context.Context, userID, blockedBy string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, b := range r.s.blocks {
		if b.UserID == userID && b.BlockedBy == blockedBy {
			r.s.blocks = append(r.s.blocks[:i], r.s.blocks[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotBlocked
}

func (r blockRepo) ExistsBetween(_ context.Context, a, b string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, blk := range r.s.blocks {
		if (blk.UserID == a && blk.BlockedBy == b) || (blk.UserID == b && blk.BlockedBy == a) {
			return true, nil
		}
	}
	return false, nil
}

func (r blockRepo) ListByBlocker(_ context.Context, blockedBy string) ([]*domain.BlockedUserView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.BlockedUserView, 0)
	for _, b := range r.s.blocks {
		if b.BlockedBy != blockedBy {
			continue
		}
		v := &domain.BlockedUserView{UserID: b.UserID, BlockedAt: b.CreatedAt, Reason: b.Reason}
		if u, ok := r.s.users[b.UserID]; ok {
			v.Email = u.Email
		}
		out = append(out, v)
	}
	return out, nil
}

type reactionRepo struct{ s *Store }

func (r reactionRepo) Toggle(_ context.Context, reaction *domain.Reaction) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, re := range r.s.reactions {
		if re.MessageID == reaction.MessageID && re.UserID == reaction.UserID && re.Reaction == reaction.Reaction {
			r.s.reactions = append(r.s.reactions[:i], r.s.reactions[i+1:]...)
			return false, nil
		}
	}
	reaction.ID = r.s.id()
	cp := *reaction
	r.s.reactions = append(r.s.reactions, &cp)
	return true, nil
}

func (r reactionRepo) ListByMessage(_ context.Context, messageID int64) ([]*domain.Reaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*domain.Reaction, 0)
	for _, re := range r.s.reactions {
		if re.MessageID == messageID {
			cp := *re
			out = append(out, &cp)
		}
	}
	return out, nil
}

type statsRepo struct{ s *Store }

func (r statsRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, m := range r.s.messages {
		if m.ReceiverID == userID && m.ReadAt == nil && !m.Deleted {
			n++
		}
	}
	return n, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) CreateLog(_ context.Context, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.FailAudit != nil {
		return r.s.FailAudit
	}
	log.ID = r.s.id()
	cp := *log
	r.s.audits = append(r.s.audits, &cp)
	return nil
}

type rateLimitRepo struct{ s *Store }

func (r rateLimitRepo) Increment(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.counters[key]++
	return r.s.counters[key], window, nil
}

var (
	_ repository.UserRepository      = userRepo{}
	_ repository.ListingRepository   = listingRepo{}
	_ repository.ChatRepository      = chatRepo{}
	_ repository.RoomRepository      = roomRepo{}
	_ repository.BlockRepository     = blockRepo{}
	_ repository.ReactionRepository  = reactionRepo{}
	_ repository.StatsRepository     = statsRepo{}
	_ repository.AuditRepository     = auditRepo{}
	_ repository.RateLimitRepository = rateLimitRepo{}
)
