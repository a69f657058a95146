package model

// -----------------------------------------------------------------
// Monitor API Response Models
// -----------------------------------------------------------------

// MonitorResponse is the main response for the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds connection-related statistics
type ConnectionStats struct {
	TotalConnected int `json:"totalConnected"` // users currently registered as online
}

// RoomStats holds room membership statistics
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`  // rooms with at least one joined connection
	RoomDetails []RoomInfo `json:"roomDetails"` // details of each populated room
}

// RoomInfo contains information about a single room
type RoomInfo struct {
	RoomID    string   `json:"roomId"`
	MemberIDs []string `json:"memberIds"` // user ids of joined connections
}

// ClientInfo contains information about a connected client
type ClientInfo struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}
