package hub

import (
	"sync"

	"github.com/AmanShaikh33/HUDDLENEW/internal/event"
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// RoomID derives the conversation id for a pair of users. It is symmetric:
// both participants compute the same id regardless of who initiates.
func RoomID(userA, userB string) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return userA + "-" + userB
}

// Rooms tracks which connections have joined which two-party rooms. Rooms
// have no lifecycle of their own; they are only populated or empty, and a
// connection's memberships are rebuilt from scratch on reconnect.
type Rooms struct {
	mu     sync.RWMutex
	rooms  map[string]map[string]Session // roomID -> clientID -> session
	joined map[string]map[string]bool    // clientID -> set of roomIDs
}

func NewRooms() *Rooms {
	return &Rooms{
		rooms:  make(map[string]map[string]Session),
		joined: make(map[string]map[string]bool),
	}
}

// Join adds the session to the room's broadcast set.
func (r *Rooms) Join(s Session, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		room = make(map[string]Session)
		r.rooms[roomID] = room
	}
	room[s.ID()] = s

	memberships, ok := r.joined[s.ID()]
	if !ok {
		memberships = make(map[string]bool)
		r.joined[s.ID()] = memberships
	}
	memberships[roomID] = true
}

// LeaveAll removes the session from every room it had joined. Called on
// disconnect.
func (r *Rooms) LeaveAll(s Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for roomID := range r.joined[s.ID()] {
		if room, ok := r.rooms[roomID]; ok {
			delete(room, s.ID())
			if len(room) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}
	delete(r.joined, s.ID())
}

// Members returns a snapshot of the sessions joined to roomID.
func (r *Rooms) Members(roomID string) []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room := r.rooms[roomID]
	members := make([]Session, 0, len(room))
	for _, s := range room {
		members = append(members, s)
	}
	return members
}

// Contains reports whether the session has joined roomID.
func (r *Rooms) Contains(roomID string, s Session) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return false
	}
	_, joined := room[s.ID()]
	return joined
}

// Broadcast sends the event to every member of roomID. Membership is
// snapshotted first; no lock is held during delivery.
func (r *Rooms) Broadcast(roomID string, env event.Envelope) {
	for _, member := range r.Members(roomID) {
		member.Send(env)
	}
}

// Snapshot returns membership details for the monitor endpoint.
func (r *Rooms) Snapshot() []model.RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]model.RoomInfo, 0, len(r.rooms))
	for roomID, room := range r.rooms {
		memberIDs := make([]string, 0, len(room))
		for _, s := range room {
			memberIDs = append(memberIDs, s.UserID())
		}
		infos = append(infos, model.RoomInfo{RoomID: roomID, MemberIDs: memberIDs})
	}
	return infos
}
