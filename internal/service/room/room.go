package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sharetube/watchparty/internal/registry"
	"github.com/sharetube/watchparty/internal/repository/room"
)

const maxCodeAttempts = 5

type CreateRoomResponse struct {
	Room   room.Room
	UserID string
}

// CreateRoom creates an empty room under a fresh code, owned by a fresh host
// user id.
func (s service) CreateRoom(ctx context.Context) (CreateRoomResponse, error) {
	userID := uuid.NewString()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.generator.GenerateRandomString(s.codeLength)
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to generate room code: %w", err)
		}

		created, err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
			Code:   code,
			HostID: userID,
		})
		if errors.Is(err, room.ErrRoomAlreadyExists) {
			s.logger.InfoContext(ctx, "room code collision", "code", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return CreateRoomResponse{}, fmt.Errorf("failed to create room: %w", err)
		}

		return CreateRoomResponse{Room: created, UserID: userID}, nil
	}

	return CreateRoomResponse{}, fmt.Errorf("failed to create room: no free code after %d attempts", maxCodeAttempts)
}

type GetRoomResponse struct {
	Room   room.Room
	UserID string
}

// GetRoom looks a room up and issues a fresh user id. No slot is reserved.
func (s service) GetRoom(ctx context.Context, code string) (GetRoomResponse, error) {
	found, err := s.roomRepo.GetRoom(ctx, code)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return GetRoomResponse{}, ErrRoomNotFound
		}

		return GetRoomResponse{}, fmt.Errorf("failed to get room: %w", err)
	}

	return GetRoomResponse{Room: found, UserID: uuid.NewString()}, nil
}

type JoinRoomParams struct {
	Conn     registry.Conn
	RoomCode string
	UserID   string
	Username string
	IsHost   bool
}

type JoinRoomResponse struct {
	Room           room.Room
	Member         registry.Member
	ConnectedUsers []registry.Member
	Messages       []room.Message
	// Evicted is a previous connection of the same user replaced by this join.
	Evicted registry.Conn
}

func (s service) getOrCreateRoom(ctx context.Context, params *JoinRoomParams) (room.Room, error) {
	found, err := s.roomRepo.GetRoom(ctx, params.RoomCode)
	if err == nil {
		return found, nil
	}
	if !errors.Is(err, room.ErrRoomNotFound) {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}
	if !params.IsHost {
		return room.Room{}, ErrRoomNotFound
	}

	created, err := s.roomRepo.CreateRoom(ctx, &room.CreateRoomParams{
		Code:   params.RoomCode,
		HostID: params.UserID,
	})
	if errors.Is(err, room.ErrRoomAlreadyExists) {
		// created concurrently by another connection
		return s.getOrCreateRoom(ctx, &JoinRoomParams{RoomCode: params.RoomCode})
	}
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to create room: %w", err)
	}

	s.logger.InfoContext(ctx, "room created on join", "room_code", params.RoomCode)
	return created, nil
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	current, err := s.getOrCreateRoom(ctx, params)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	slotHolderID := current.HostID
	if !params.IsHost {
		slotHolderID = ""
		if current.GuestID != nil {
			slotHolderID = *current.GuestID
		}
	}

	member := registry.Member{
		UserID:   params.UserID,
		Username: params.Username,
		IsHost:   params.IsHost,
	}
	registerResp, err := s.registry.Register(ctx, &registry.RegisterParams{
		RoomCode:     params.RoomCode,
		Conn:         params.Conn,
		Member:       member,
		SlotHolderID: slotHolderID,
	})
	if err != nil {
		if errors.Is(err, registry.ErrRoomFull) {
			return JoinRoomResponse{}, ErrRoomFull
		}
		if errors.Is(err, registry.ErrRoomClosing) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to register connection: %w", err)
	}

	updated, err := s.roomRepo.AddUserToRoom(ctx, &room.AddUserToRoomParams{
		Code:   params.RoomCode,
		UserID: params.UserID,
		IsHost: params.IsHost,
	})
	if err != nil {
		s.rollbackRegistration(ctx, params.Conn)
		if errors.Is(err, room.ErrRoomNotFound) {
			return JoinRoomResponse{}, ErrRoomNotFound
		}

		return JoinRoomResponse{}, fmt.Errorf("failed to add user to room: %w", err)
	}

	messages, err := s.roomRepo.GetMessages(ctx, params.RoomCode, s.historyLimit)
	if err != nil {
		s.rollbackRegistration(ctx, params.Conn)
		return JoinRoomResponse{}, fmt.Errorf("failed to get messages: %w", err)
	}

	return JoinRoomResponse{
		Room:           updated,
		Member:         member,
		ConnectedUsers: s.registry.Members(params.RoomCode),
		Messages:       messages,
		Evicted:        registerResp.Evicted,
	}, nil
}

// rollbackRegistration undoes Register for a join that failed afterwards.
func (s service) rollbackRegistration(ctx context.Context, conn registry.Conn) {
	if _, err := s.registry.Unregister(ctx, conn); err != nil {
		s.logger.WarnContext(ctx, "failed to roll back registration", "error", err)
	}
}

type DisconnectMemberResponse struct {
	RoomCode      string
	Member        registry.Member
	IsRoomDeleted bool
}

// DisconnectMember unregisters conn. ErrNotJoined is returned for connections
// that never joined or were replaced by a reconnect of the same user.
func (s service) DisconnectMember(ctx context.Context, conn registry.Conn) (DisconnectMemberResponse, error) {
	res, err := s.registry.Unregister(ctx, conn)
	if err != nil {
		if errors.Is(err, registry.ErrConnNotFound) {
			return DisconnectMemberResponse{}, ErrNotJoined
		}

		// the connection is gone even if storage cleanup failed
		return DisconnectMemberResponse{
			RoomCode:      res.RoomCode,
			Member:        res.Member,
			IsRoomDeleted: res.RoomDeleted,
		}, fmt.Errorf("failed to unregister connection: %w", err)
	}

	return DisconnectMemberResponse{
		RoomCode:      res.RoomCode,
		Member:        res.Member,
		IsRoomDeleted: res.RoomDeleted,
	}, nil
}
