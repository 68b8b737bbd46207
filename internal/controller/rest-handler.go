package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sharetube/watchparty/internal/repository/room"
	roomService "github.com/sharetube/watchparty/internal/service/room"
	"github.com/sharetube/watchparty/pkg/rest"
)

type roomResponse struct {
	Room   room.Room `json:"room"`
	UserID string    `json:"userId"`
}

func (c controller) createRoom(w http.ResponseWriter, r *http.Request) {
	createRoomResp, err := c.roomService.CreateRoom(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"message": "Failed to create room"})
		return
	}

	c.logger.InfoContext(r.Context(), "room created", "room_code", createRoomResp.Room.Code)
	rest.WriteJSON(w, http.StatusOK, roomResponse{
		Room:   createRoomResp.Room,
		UserID: createRoomResp.UserID,
	})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	getRoomResp, err := c.roomService.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, roomService.ErrRoomNotFound) {
			rest.WriteJSON(w, http.StatusNotFound, rest.Envelope{"message": "Room not found"})
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"message": "Failed to get room"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, roomResponse{
		Room:   getRoomResp.Room,
		UserID: getRoomResp.UserID,
	})
}
