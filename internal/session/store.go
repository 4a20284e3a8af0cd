package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"teamcreate/internal/metrics"
	"teamcreate/internal/roomcode"
)

const (
	// RoomTTL is how long a room survives without any mutation.
	RoomTTL = 2 * time.Hour

	// SweepInterval is how often expired rooms are evicted in the background.
	SweepInterval = 30 * time.Minute
)

// Store is the registry of live rooms. Every component reaches room state
// through it, and only it deletes rooms.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	ttl   time.Duration
	now   func() time.Time
}

// NewStore builds a store with an injected TTL and clock so expiry is
// deterministic in tests.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	return &Store{
		rooms: make(map[string]*Room),
		ttl:   ttl,
		now:   now,
	}
}

func NewDefaultStore() *Store {
	return NewStore(RoomTTL, time.Now)
}

// GetOrCreate returns the live room for code, evicting it first if it has
// expired. A miss materializes a fresh empty room. Plain lookups do not
// refresh the TTL; only mutations touch it.
func (s *Store) GetOrCreate(code string) *Room {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[code]; ok {
		if !r.expired(now, s.ttl) {
			return r
		}
		delete(s.rooms, code)
	}
	r := newRoom(code, s.now)
	s.rooms[code] = r
	return r
}

// CreateRoom generates a fresh code and materializes an empty room for it.
// The code is not checked against live rooms; see roomcode.Generate.
func (s *Store) CreateRoom() string {
	code := roomcode.Generate()
	s.GetOrCreate(code)
	return code
}

// Get returns the room for code without creating or evicting anything.
func (s *Store) Get(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[code]
	return r, ok
}

// Counts reports the number of live rooms and connected sessions.
func (s *Store) Counts() (rooms, sessions int) {
	s.mu.Lock()
	list := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		list = append(list, r)
	}
	s.mu.Unlock()
	for _, r := range list {
		sessions += r.ClientCount()
	}
	return len(list), sessions
}

// Sweep evicts every room idle past the TTL and returns how many went.
func (s *Store) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for code, r := range s.rooms {
		if r.expired(now, s.ttl) {
			delete(s.rooms, code)
			removed++
		}
	}
	return removed
}

// RunSweeper evicts expired rooms on a fixed period until ctx is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				metrics.RoomsSwept(removed)
				rooms, sessions := s.Counts()
				metrics.SetRooms(rooms)
				metrics.SetSessions(sessions)
				log.Info("swept expired rooms", zap.Int("removed", removed))
			}
		}
	}
}
