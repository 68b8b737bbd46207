package controller

import (
	"github.com/sharetube/watchparty/pkg/wsrouter"
)

func (c controller) getWSRouter() *wsrouter.WSRouter[*client] {
	mux := wsrouter.New[*client]()
	mux.Use(c.wsRequestIdMw(), c.loggerWSMw())

	mux.Handle("join_room", wsrouter.Typed(c.validate, c.handleJoinRoom), c.unjoinedOnlyMw())

	// player
	mux.Handle("sync", wsrouter.Typed(c.validate, c.handleSync), c.joinedOnlyMw())
	mux.Handle("playback_control", wsrouter.Typed(c.validate, c.handlePlaybackControl), c.joinedOnlyMw())

	// signaling
	mux.Handle("webrtc_signal", wsrouter.Typed(c.validate, c.handleWebRTCSignal), c.joinedOnlyMw(), c.dropInvalidPayloadMw())
	mux.Handle("voice_offer", c.handleVoiceSignal, c.joinedOnlyMw())
	mux.Handle("voice_answer", c.handleVoiceSignal, c.joinedOnlyMw())
	mux.Handle("voice_ice", c.handleVoiceSignal, c.joinedOnlyMw())

	// chat
	mux.Handle("chat", wsrouter.Typed(c.validate, c.handleChat), c.joinedOnlyMw())

	return mux
}
