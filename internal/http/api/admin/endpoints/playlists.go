package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/admin/packets"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/redis"
)

type PlaylistController struct {
	store db.Store
	cache *redis.VersionCache
}

// PlaylistModule mounts playlist and playlist-item management. Every mutation
// that can change what a player should show also drops the cached version
// fingerprint so devices pick the change up on their next poll.
func PlaylistModule(store db.Store, cache *redis.VersionCache) api.Module {
	ctl := &PlaylistController{store: store, cache: cache}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/playlists", api.ResolveEndpointWithAuth(ctl.listPlaylists))
		c.POST("/playlists", api.ResolveEndpointWithAuth(ctl.createPlaylist))
		c.GET("/playlists/:id", api.ResolveEndpointWithAuth(ctl.getPlaylist))
		c.PUT("/playlists/:id", api.ResolveEndpointWithAuth(ctl.updatePlaylist))
		c.DELETE("/playlists/:id", api.ResolveEndpointWithAuth(ctl.deletePlaylist))
		c.POST("/playlists/:id/default", api.ResolveEndpointWithAuth(ctl.setDefault))
		c.POST("/playlists/:id/share", api.ResolveEndpointWithAuth(ctl.share))
		c.POST("/playlists/:id/items", api.ResolveEndpointWithAuth(ctl.addItem))
		c.PUT("/playlists/:id/items/:itemId", api.ResolveEndpointWithAuth(ctl.updateItem))
		c.DELETE("/playlists/:id/items/:itemId", api.ResolveEndpointWithAuth(ctl.removeItem))
		c.POST("/playlists/:id/reorder", api.ResolveEndpointWithAuth(ctl.reorderItems))
	})
}

func mapPlaylist(pl model.Playlist, items []model.PlaylistItem) packets.PlaylistResponse {
	resp := packets.PlaylistResponse{
		ID:         pl.ID,
		Name:       pl.Name,
		Transition: pl.Transition,
		IsDefault:  pl.IsDefault,
		Shared:     pl.Shared,
		ShareToken: pl.ShareToken,
		CreatedAt:  pl.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  pl.UpdatedAt.Format(time.RFC3339),
		Items:      make([]packets.PlaylistItemResponse, 0, len(items)),
	}
	for _, it := range items {
		resp.Items = append(resp.Items, packets.PlaylistItemResponse{
			ID:        it.ID,
			ContentID: it.ContentID,
			Position:  it.Position,
			Duration:  it.Duration,
		})
	}
	return resp
}

func (p *PlaylistController) loadOwnedPlaylist(ctx *gin.Context, user *model.User) (model.Playlist, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	pl, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return model.Playlist{}, &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if pl.TenantID != user.ID {
		return model.Playlist{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return pl, nil
}

func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := p.store.ListPlaylists(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list playlists"}
	}
	out := make([]packets.PlaylistResponse, 0, len(all))
	for _, pl := range all {
		out = append(out, mapPlaylist(pl, nil))
	}
	return out, nil
}

func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var req packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	transition := model.TransitionFade
	if req.Transition != nil {
		if !model.ValidTransition(*req.Transition) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown transition"}
		}
		transition = *req.Transition
	}

	pl, err := p.store.CreatePlaylist(user.ID, req.Name, transition)
	if err != nil {
		log.Error().Err(err).Msg("[admin] createPlaylist failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}
	return mapPlaylist(pl, nil), nil
}

func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	items, err := p.store.ListPlaylistItems(pl.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load playlist items"}
	}
	return mapPlaylist(pl, items), nil
}

func (p *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.Transition != nil && !model.ValidTransition(*req.Transition) {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown transition"}
	}
	if err := p.store.UpdatePlaylist(pl.ID, req.Name, req.Transition); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update playlist"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)

	updated, err := p.store.GetPlaylistByID(pl.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reload playlist"}
	}
	return mapPlaylist(updated, nil), nil
}

func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.DeletePlaylist(pl.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)
	return gin.H{"message": "deleted"}, nil
}

// POST /api/admin/playlists/:id/default
//
// Marks this playlist as the tenant's fallback for screens with nothing else
// assigned. The store swaps the flag transactionally so the tenant never has
// two defaults.
func (p *PlaylistController) setDefault(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := p.store.SetDefaultPlaylist(user.ID, pl.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set default playlist"}
	}
	return gin.H{"message": "default set"}, nil
}

func (p *PlaylistController) share(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.SharePlaylistRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	var token *string
	if req.Shared {
		if pl.ShareToken != nil {
			token = pl.ShareToken
		} else {
			t := uuid.NewString()
			token = &t
		}
	}
	if err := p.store.SetPlaylistSharing(pl.ID, req.Shared, token); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update sharing"}
	}

	updated, err := p.store.GetPlaylistByID(pl.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reload playlist"}
	}
	return mapPlaylist(updated, nil), nil
}

func (p *PlaylistController) addItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.AddPlaylistItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	content, err := p.store.GetContentByID(req.ContentID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "content not found"}
	}
	if content.TenantID != user.ID {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "content not owned by you"}
	}

	position := 0
	if req.Position != nil {
		position = *req.Position
	} else {
		existing, err := p.store.ListPlaylistItems(pl.ID)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load playlist items"}
		}
		position = len(existing)
	}

	item, err := p.store.AddItemToPlaylist(pl.ID, req.ContentID, position, req.Duration)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add item"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)
	return packets.PlaylistItemResponse{
		ID:        item.ID,
		ContentID: item.ContentID,
		Position:  item.Position,
		Duration:  item.Duration,
	}, nil
}

func (p *PlaylistController) updateItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}

	var req packets.UpdatePlaylistItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.store.UpdatePlaylistItem(itemID, req.Position, req.Duration); err != nil {
		if db.IsNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "item not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update item"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)
	return gin.H{"message": "updated"}, nil
}

func (p *PlaylistController) removeItem(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	itemID, err := strconv.Atoi(ctx.Param("itemId"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid item id"}
	}
	if err := p.store.RemovePlaylistItem(pl.ID, itemID); err != nil {
		if db.IsNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "item not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove item"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)
	return gin.H{"message": "removed"}, nil
}

func (p *PlaylistController) reorderItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	pl, apiErr := p.loadOwnedPlaylist(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.ReorderPlaylistItemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.store.ReorderPlaylistItems(pl.ID, req.ItemIDs); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "could not reorder items"}
	}
	p.cache.Invalidate(ctx.Request.Context(), pl.ID)
	return gin.H{"message": "reordered"}, nil
}
