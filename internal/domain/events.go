package domain

// WebSocket event types. Inbound broadcast types mirror the outbound
// ones; room membership itself is server-side.
const (
	EventJoinRoom   = "join_room"
	EventLeaveRoom  = "leave_room"
	EventNewComment = "new_comment"
	EventNewReply   = "new_reply"
)

// RoomID returns the fan-out room key for an advertisement.
func RoomID(advertisementID string) string {
	return "ad:" + advertisementID
}

// RoomPayload is the join_room / leave_room payload.
type RoomPayload struct {
	RoomID string `json:"roomId"`
}
