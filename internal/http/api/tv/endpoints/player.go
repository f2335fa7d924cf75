package endpoints

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/tv/packets"
	"github.com/overture-digital/marquee/internal/signage/delivery"
	"github.com/overture-digital/marquee/internal/signage/heartbeat"
)

type PlayerController struct {
	store   db.Store
	gate    *delivery.Gate
	tracker *heartbeat.Tracker
}

// PlayerModule mounts the content-poll endpoints used by provisioned
// devices. Devices authenticate with their long-lived device key; there is
// no JWT on this surface.
func PlayerModule(store db.Store, gate *delivery.Gate, tracker *heartbeat.Tracker) api.Module {
	ctl := &PlayerController{store: store, gate: gate, tracker: tracker}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/player/updates", api.ResolveEndpoint(ctl.checkUpdates))
		c.POST("/player/heartbeat", api.ResolveEndpoint(ctl.recordHeartbeat))
		c.POST("/player/playback", api.ResolveEndpoint(ctl.logPlayback))
	})
}

// GET /api/tv/player/updates?device_key=K&version=V
func (p *PlayerController) checkUpdates(ctx *gin.Context) (any, *api.APIError) {
	deviceKey := ctx.Query("device_key")
	if deviceKey == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "device_key is required"}
	}
	clientVersion := ctx.Query("version")

	update, err := p.gate.CheckForUpdate(ctx.Request.Context(), deviceKey, clientVersion, time.Now())
	if err != nil {
		switch {
		case delivery.IsScreenNotFound(err):
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "unknown device key"}
		case delivery.IsNoContentAssigned(err):
			// distinct from an unknown key: the pairing is fine, there is
			// just nothing to play
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "no playlist assigned"}
		default:
			log.Error().Err(err).Msg("[tv] checkUpdates failed")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check for updates"}
		}
	}

	resp := packets.UpdateResponse{
		Success:     true,
		NeedsUpdate: update.NeedsUpdate,
		Version:     update.Version,
		PlaylistID:  update.PlaylistID,
	}
	if update.NeedsUpdate {
		resp.Transition = update.Transition
		resp.Items = update.Items
		resp.ItemCount = len(update.Items)
	}
	return resp, nil
}

// POST /api/tv/player/heartbeat
func (p *PlayerController) recordHeartbeat(ctx *gin.Context) (any, *api.APIError) {
	var req packets.HeartbeatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := p.store.GetScreenByDeviceKey(req.DeviceKey)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "unknown device key"}
		}
		log.Error().Err(err).Msg("[tv] heartbeat lookup failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not record heartbeat"}
	}

	p.tracker.Touch(ctx.Request.Context(), screen.ID, time.Now())
	return packets.SuccessResponse{Success: true}, nil
}

// POST /api/tv/player/playback
//
// Fire-and-forget analytics: a failed insert is logged and swallowed so it
// can never stall the playback loop.
func (p *PlayerController) logPlayback(ctx *gin.Context) (any, *api.APIError) {
	var req packets.PlaybackLogRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := p.store.GetScreenByDeviceKey(req.DeviceKey)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "unknown device key"}
		}
		log.Error().Err(err).Msg("[tv] playback lookup failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not log playback"}
	}

	if err := p.store.InsertPlaybackEvent(screen.ID, req.ContentID, time.Now()); err != nil {
		log.Warn().Err(err).Int("screen_id", screen.ID).Int("content_id", req.ContentID).
			Msg("[tv] playback event write failed")
	}
	return packets.SuccessResponse{Success: true}, nil
}
