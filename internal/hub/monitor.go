package hub

import (
	"github.com/AmanShaikh33/HUDDLENEW/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	sessions := ms.hub.presence.Sessions()

	clients := make([]model.ClientInfo, 0, len(sessions))
	for _, s := range sessions {
		clients = append(clients, model.ClientInfo{
			ClientID: s.ID(),
			UserID:   s.UserID(),
		})
	}

	rooms := ms.hub.rooms.Snapshot()

	status := "healthy"
	if len(sessions) == 0 {
		status = "idle"
	}

	return model.MonitorResponse{
		Status:      status,
		Connections: model.ConnectionStats{TotalConnected: len(sessions)},
		Rooms: model.RoomStats{
			TotalRooms:  len(rooms),
			RoomDetails: rooms,
		},
		Clients: clients,
	}
}
