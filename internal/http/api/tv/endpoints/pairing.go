package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/tv/packets"
	"github.com/overture-digital/marquee/internal/signage/pairing"
)

type PairingController struct {
	machine *pairing.Machine
}

// PairingModule mounts the endpoints an unprovisioned device uses while it
// waits on its pairing screen. Both are tenant-agnostic until claim time.
func PairingModule(machine *pairing.Machine) api.Module {
	ctl := &PairingController{machine: machine}
	return api.ModuleFunc(func(c *api.Controller) {
		c.POST("/pairing/register", api.ResolveEndpoint(ctl.register))
		c.GET("/pairing/check", api.ResolveEndpoint(ctl.check))
	})
}

// POST /api/tv/pairing/register
//
// Idempotent: re-registering while a code is still live returns that same
// code instead of churning a new one.
func (p *PairingController) register(ctx *gin.Context) (any, *api.APIError) {
	var req packets.RegisterPairingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	now := time.Now()
	record, err := p.machine.IssueOrReuseCode(req.DeviceID, now)
	if err != nil {
		log.Error().Err(err).Str("device_id", req.DeviceID).Msg("[tv] pairing registration failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not issue pairing code"}
	}

	return packets.PairingCodeResponse{
		Code:      record.Code,
		ExpiresIn: int(record.ExpiresAt.Sub(now).Seconds()),
	}, nil
}

// GET /api/tv/pairing/check?device_id=D
func (p *PairingController) check(ctx *gin.Context) (any, *api.APIError) {
	deviceID := ctx.Query("device_id")
	if deviceID == "" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "device_id is required"}
	}

	status, err := p.machine.PollStatus(deviceID, time.Now())
	if err != nil {
		if pairing.IsDeviceNotFound(err) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "no pairing for device"}
		}
		log.Error().Err(err).Str("device_id", deviceID).Msg("[tv] pairing status poll failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not check pairing status"}
	}

	resp := packets.PairingStatusResponse{
		Paired:    status.Paired,
		Expired:   status.Expired,
		ExpiresIn: status.ExpiresIn,
	}
	if status.Paired {
		resp.ViewerURL = fmt.Sprintf("/viewer?device_key=%s", status.DeviceKey)
	}
	return resp, nil
}
