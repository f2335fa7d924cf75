package endpoints

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/admin/packets"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/signage/heartbeat"
	"github.com/overture-digital/marquee/internal/signage/pairing"
)

type ScreenController struct {
	store   db.Store
	machine *pairing.Machine
	tracker *heartbeat.Tracker
}

// ScreenModule mounts authenticated screen management, including the
// pairing-claim endpoint that turns a code into a provisioned screen.
func ScreenModule(store db.Store, machine *pairing.Machine, tracker *heartbeat.Tracker) api.Module {
	ctl := &ScreenController{store: store, machine: machine, tracker: tracker}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/screens", api.ResolveEndpointWithAuth(ctl.listScreens))
		c.POST("/screens", api.ResolveEndpointWithAuth(ctl.createScreen))
		c.GET("/screens/:id", api.ResolveEndpointWithAuth(ctl.getScreen))
		c.PUT("/screens/:id", api.ResolveEndpointWithAuth(ctl.updateScreen))
		c.DELETE("/screens/:id", api.ResolveEndpointWithAuth(ctl.deleteScreen))
		c.POST("/screens/:id/playlist", api.ResolveEndpointWithAuth(ctl.assignPlaylist))
		c.POST("/screens/pair", api.ResolveEndpointWithAuth(ctl.claimPairing))
	})
}

func (s *ScreenController) mapScreen(ctx *gin.Context, sc model.Screen, now time.Time) packets.ScreenResponse {
	resp := packets.ScreenResponse{
		ID:                sc.ID,
		Name:              sc.Name,
		Location:          sc.Location,
		CurrentPlaylistID: sc.CurrentPlaylistID,
		Online:            s.tracker.Online(ctx.Request.Context(), sc, now),
		CreatedAt:         sc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         sc.UpdatedAt.Format(time.RFC3339),
	}
	if sc.LastSeenAt != nil {
		resp.LastSeenAt = sc.LastSeenAt.Format(time.RFC3339)
	}
	return resp
}

// loadOwnedScreen fetches a screen and enforces tenant ownership.
func (s *ScreenController) loadOwnedScreen(ctx *gin.Context, user *model.User) (model.Screen, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Screen{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	sc, err := s.store.GetScreenByID(id)
	if err != nil {
		return model.Screen{}, &api.APIError{Code: http.StatusNotFound, Message: "screen not found"}
	}
	if sc.TenantID != user.ID {
		return model.Screen{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return sc, nil
}

func (s *ScreenController) listScreens(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := s.store.ListScreens(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list screens"}
	}
	now := time.Now()
	out := make([]packets.ScreenResponse, 0, len(all))
	for _, sc := range all {
		out = append(out, s.mapScreen(ctx, sc, now))
	}
	return out, nil
}

func (s *ScreenController) createScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if req.PlaylistID != nil {
		if apiErr := s.checkPlaylistOwnership(*req.PlaylistID, user.ID); apiErr != nil {
			return nil, apiErr
		}
	}

	deviceKey := pairing.NewDeviceKey()
	sc, err := s.store.CreateScreen(user.ID, req.Name, req.Location, deviceKey, req.PlaylistID)
	if err != nil {
		log.Error().Err(err).Msg("[admin] createScreen failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create screen"}
	}
	return s.mapScreen(ctx, sc, time.Now()), nil
}

func (s *ScreenController) getScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadOwnedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return s.mapScreen(ctx, sc, time.Now()), nil
}

func (s *ScreenController) updateScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadOwnedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateScreenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.store.UpdateScreen(sc.ID, req.Name, req.Location); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update screen"}
	}
	updated, err := s.store.GetScreenByID(sc.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reload screen"}
	}
	return s.mapScreen(ctx, updated, time.Now()), nil
}

// deleteScreen soft-deactivates: the row survives for playback history and
// the device key stops resolving.
func (s *ScreenController) deleteScreen(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadOwnedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.DeactivateScreen(sc.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete screen"}
	}
	return gin.H{"message": "deleted"}, nil
}

func (s *ScreenController) assignPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadOwnedScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AssignPlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.PlaylistID != nil {
		if apiErr := s.checkPlaylistOwnership(*req.PlaylistID, user.ID); apiErr != nil {
			return nil, apiErr
		}
	}
	if err := s.store.AssignPlaylistToScreen(sc.ID, req.PlaylistID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not assign playlist"}
	}
	return gin.H{"message": "assigned"}, nil
}

// POST /api/admin/screens/pair
func (s *ScreenController) claimPairing(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.ClaimPairingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	screen, err := s.machine.ClaimCode(req.PairingCode, user.ID, req.PlaylistID, req.ScreenName, time.Now())
	if err != nil {
		switch {
		case pairing.IsCodeNotFound(err):
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "pairing code not found"}
		case pairing.IsCodeExpired(err):
			return nil, &api.APIError{Code: http.StatusGone, Message: "pairing code expired"}
		case pairing.IsAlreadyPaired(err):
			return nil, &api.APIError{Code: http.StatusConflict, Message: "pairing code already claimed"}
		case pairing.IsPlaylistNotFound(err):
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
		case pairing.IsPlaylistForbidden(err):
			return nil, &api.APIError{Code: http.StatusForbidden, Message: "playlist not owned by you"}
		default:
			log.Error().Err(err).Msg("[admin] claimPairing failed")
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not claim pairing code"}
		}
	}

	return packets.ClaimPairingResponse{
		ScreenID:  screen.ID,
		ViewerURL: fmt.Sprintf("/viewer?device_key=%s", screen.DeviceKey),
	}, nil
}

func (s *ScreenController) checkPlaylistOwnership(playlistID, tenantID int) *api.APIError {
	pl, err := s.store.GetPlaylistByID(playlistID)
	if err != nil {
		return &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if pl.TenantID != tenantID {
		return &api.APIError{Code: http.StatusForbidden, Message: "playlist not owned by you"}
	}
	return nil
}
