package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/exp/slices"
)

// Conn is a live client connection. Send must not block and reports false
// when the frame could not be queued.
type Conn interface {
	Send(frame []byte) bool
	Close()
}

type Member struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsHost   bool   `json:"isHost"`
}

type iRoomRepo interface {
	DeleteRoom(ctx context.Context, code string) (bool, error)
}

type entry struct {
	conn   Conn
	member Member
}

// Registry tracks live connections grouped by room code.
type Registry struct {
	rooms    map[string][]entry
	conns    map[Conn]string
	closing  map[string]struct{} // rooms whose storage is being deleted
	capacity int
	roomRepo iRoomRepo
	logger   *slog.Logger
	mu       sync.RWMutex
}

func New(roomRepo iRoomRepo, capacity int, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:    make(map[string][]entry),
		conns:    make(map[Conn]string),
		closing:  make(map[string]struct{}),
		capacity: capacity,
		roomRepo: roomRepo,
		logger:   logger,
	}
}

type RegisterParams struct {
	RoomCode string
	Conn     Conn
	Member   Member
	// SlotHolderID is the user currently owning the slot the member asks
	// for. Registration is refused while that user is connected.
	SlotHolderID string
}

type RegisterResponse struct {
	// Evicted is the previous connection of the same user, if any. It is no
	// longer registered and should be closed by the caller.
	Evicted Conn
}

func (r *Registry) Register(ctx context.Context, params *RegisterParams) (RegisterResponse, error) {
	r.logger.DebugContext(ctx, "called", "room_code", params.RoomCode, "member", params.Member)
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[params.Conn]; ok {
		return RegisterResponse{}, ErrAlreadyRegistered
	}
	if _, ok := r.closing[params.RoomCode]; ok {
		r.logger.DebugContext(ctx, "returned", "error", ErrRoomClosing)
		return RegisterResponse{}, ErrRoomClosing
	}

	entries := r.rooms[params.RoomCode]
	if i := slices.IndexFunc(entries, hasUserID(params.Member.UserID)); i >= 0 {
		evicted := entries[i].conn
		delete(r.conns, evicted)
		entries[i] = entry{conn: params.Conn, member: params.Member}
		r.conns[params.Conn] = params.RoomCode

		r.logger.DebugContext(ctx, "returned", "result", "reconnected")
		return RegisterResponse{Evicted: evicted}, nil
	}

	if len(entries) >= r.capacity {
		r.logger.DebugContext(ctx, "returned", "error", ErrRoomFull)
		return RegisterResponse{}, ErrRoomFull
	}

	if params.SlotHolderID != "" && slices.ContainsFunc(entries, hasUserID(params.SlotHolderID)) {
		r.logger.DebugContext(ctx, "returned", "error", ErrRoomFull, "slot_holder_id", params.SlotHolderID)
		return RegisterResponse{}, ErrRoomFull
	}

	r.rooms[params.RoomCode] = append(entries, entry{conn: params.Conn, member: params.Member})
	r.conns[params.Conn] = params.RoomCode

	return RegisterResponse{}, nil
}

type UnregisterResponse struct {
	RoomCode    string
	Member      Member
	RoomDeleted bool
}

// Unregister removes conn from its room. The room is deleted from the
// registry and from storage once its last connection is gone. Registrations
// into the room fail with ErrRoomClosing until the storage delete returns.
func (r *Registry) Unregister(ctx context.Context, conn Conn) (UnregisterResponse, error) {
	r.mu.Lock()

	roomCode, ok := r.conns[conn]
	if !ok {
		r.mu.Unlock()
		return UnregisterResponse{}, ErrConnNotFound
	}
	delete(r.conns, conn)

	res := UnregisterResponse{RoomCode: roomCode}
	entries := r.rooms[roomCode]
	if i := slices.IndexFunc(entries, func(e entry) bool { return e.conn == conn }); i >= 0 {
		res.Member = entries[i].member
		entries = slices.Delete(entries, i, i+1)
	}
	r.logger.DebugContext(ctx, "unregistered", "room_code", roomCode, "member", res.Member, "remaining", len(entries))

	if len(entries) > 0 {
		r.rooms[roomCode] = entries
		r.mu.Unlock()
		return res, nil
	}

	delete(r.rooms, roomCode)
	r.closing[roomCode] = struct{}{}
	r.mu.Unlock()

	res.RoomDeleted = true
	_, err := r.roomRepo.DeleteRoom(ctx, roomCode)

	r.mu.Lock()
	delete(r.closing, roomCode)
	r.mu.Unlock()

	if err != nil {
		return res, fmt.Errorf("failed to delete room: %w", err)
	}

	return res, nil
}

// Broadcast queues frame on every connection of the room except exclude and
// returns how many connections accepted it.
func (r *Registry) Broadcast(ctx context.Context, roomCode string, frame []byte, exclude Conn) int {
	r.mu.RLock()
	entries := slices.Clone(r.rooms[roomCode])
	r.mu.RUnlock()

	sent := 0
	for _, e := range entries {
		if e.conn == exclude {
			continue
		}

		if e.conn.Send(frame) {
			sent++
		}
	}

	r.logger.DebugContext(ctx, "broadcast", "room_code", roomCode, "recipients", sent)
	return sent
}

func (r *Registry) Members(roomCode string) []Member {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.rooms[roomCode]
	members := make([]Member, 0, len(entries))
	for _, e := range entries {
		members = append(members, e.member)
	}

	return members
}

func hasUserID(userID string) func(entry) bool {
	return func(e entry) bool {
		return e.member.UserID == userID
	}
}
