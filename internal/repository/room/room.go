package room

import "time"

type Room struct {
	ID             int64     `json:"id"`
	Code           string    `json:"code"`
	HostID         string    `json:"hostId"`
	GuestID        *string   `json:"guestId"`
	CurrentVideoID *string   `json:"currentVideoId"`
	CurrentTime    float64   `json:"currentTime"`
	IsPlaying      bool      `json:"isPlaying"`
	CreatedAt      time.Time `json:"createdAt"`
}

// HasVideo reports whether a video is loaded in the room player.
func (r Room) HasVideo() bool {
	return r.CurrentVideoID != nil && *r.CurrentVideoID != ""
}

type CreateRoomParams struct {
	Code           string
	HostID         string
	GuestID        *string
	CurrentVideoID *string
	CurrentTime    float64
	IsPlaying      bool
}

// UpdateRoomParams carries a partial update, nil fields are left untouched.
type UpdateRoomParams struct {
	Code           string
	CurrentVideoID *string
	CurrentTime    *float64
	IsPlaying      *bool
}

type AddUserToRoomParams struct {
	Code   string
	UserID string
	IsHost bool
}
