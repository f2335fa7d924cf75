package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/admin/packets"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/storage"
)

type ContentController struct {
	store   db.Store
	storage storage.Storage
}

// ContentModule mounts the media library. Uploads go through the configured
// storage backend; the database only keeps the resulting URL.
func ContentModule(store db.Store, st storage.Storage) api.Module {
	ctl := &ContentController{store: store, storage: st}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/content", api.ResolveEndpointWithAuth(ctl.listContent))
		c.POST("/content", api.ResolveEndpointWithAuth(ctl.uploadContent))
		c.GET("/content/:id", api.ResolveEndpointWithAuth(ctl.getContent))
		c.PUT("/content/:id", api.ResolveEndpointWithAuth(ctl.updateContent))
		c.DELETE("/content/:id", api.ResolveEndpointWithAuth(ctl.deleteContent))
	})
}

func mapContent(c model.Content) packets.ContentResponse {
	return packets.ContentResponse{
		ID:        c.ID,
		Name:      c.Name,
		Type:      c.Type,
		URL:       c.URL,
		Duration:  c.Duration,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
}

func (c *ContentController) loadOwnedContent(ctx *gin.Context, user *model.User) (model.Content, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return model.Content{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	content, err := c.store.GetContentByID(id)
	if err != nil {
		return model.Content{}, &api.APIError{Code: http.StatusNotFound, Message: "content not found"}
	}
	if content.TenantID != user.ID {
		return model.Content{}, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return content, nil
}

func (c *ContentController) listContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := c.store.ListContent(user.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list content"}
	}
	out := make([]packets.ContentResponse, 0, len(all))
	for _, item := range all {
		out = append(out, mapContent(item))
	}
	return out, nil
}

// POST /api/admin/content
//
// Multipart form: "file" is the media itself, "name" an optional display
// name, "duration" an optional per-content display duration in seconds.
func (c *ContentController) uploadContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
	}

	name := ctx.PostForm("name")
	if name == "" {
		name = fileHeader.Filename
	}

	var duration *int
	if raw := ctx.PostForm("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d <= 0 {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "duration must be a positive integer"}
		}
		duration = &d
	}

	url, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("filename", fileHeader.Filename).Msg("[admin] content upload failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store file"}
	}

	content, err := c.store.CreateContent(user.ID, name, storage.MediaTypeFor(fileHeader.Filename), url, duration)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create content"}
	}
	return mapContent(content), nil
}

func (c *ContentController) getContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	content, apiErr := c.loadOwnedContent(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	return mapContent(content), nil
}

func (c *ContentController) updateContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	content, apiErr := c.loadOwnedContent(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if req.Duration != nil && *req.Duration <= 0 {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "duration must be a positive integer"}
	}
	if err := c.store.UpdateContent(content.ID, req.Name, req.URL, req.Duration); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update content"}
	}

	updated, err := c.store.GetContentByID(content.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not reload content"}
	}
	return mapContent(updated), nil
}

// deleteContent deactivates rather than deletes: playlist items referencing
// the row keep their history, and resolved playlists simply stop including it.
func (c *ContentController) deleteContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	content, apiErr := c.loadOwnedContent(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := c.store.DeactivateContent(content.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete content"}
	}
	return gin.H{"message": "deleted"}, nil
}
