package packets

// REQUESTS FOR /api/tv

type RegisterPairingRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

type HeartbeatRequest struct {
	DeviceKey string `json:"device_key" binding:"required"`
}

type PlaybackLogRequest struct {
	DeviceKey string `json:"device_key" binding:"required"`
	ContentID int    `json:"content_id" binding:"required"`
}
