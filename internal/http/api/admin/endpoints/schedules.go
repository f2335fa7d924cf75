package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/overture-digital/marquee/internal/db"
	"github.com/overture-digital/marquee/internal/http/api"
	"github.com/overture-digital/marquee/internal/http/api/admin/packets"
	"github.com/overture-digital/marquee/internal/model"
	"github.com/overture-digital/marquee/internal/signage/schedule"
)

type ScheduleController struct {
	store db.Store
}

// ScheduleModule mounts schedule-rule management, nested under the screen
// the rules apply to.
func ScheduleModule(store db.Store) api.Module {
	ctl := &ScheduleController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/screens/:id/schedule", api.ResolveEndpointWithAuth(ctl.listRules))
		c.POST("/screens/:id/schedule", api.ResolveEndpointWithAuth(ctl.createRule))
		c.PUT("/screens/:id/schedule/:ruleId", api.ResolveEndpointWithAuth(ctl.updateRule))
		c.DELETE("/screens/:id/schedule/:ruleId", api.ResolveEndpointWithAuth(ctl.deleteRule))
	})
}

func mapRule(r model.ScheduleRule) packets.ScheduleRuleResponse {
	resp := packets.ScheduleRuleResponse{
		ID:         r.ID,
		ScreenID:   r.ScreenID,
		PlaylistID: r.PlaylistID,
		Name:       r.Name,
		StartTime:  r.StartTime,
		EndTime:    r.EndTime,
		DaysOfWeek: make([]int, 0, len(r.DaysOfWeek)),
		Priority:   r.Priority,
		Active:     r.Active,
	}
	for _, d := range r.DaysOfWeek {
		resp.DaysOfWeek = append(resp.DaysOfWeek, int(d))
	}
	if r.StartDate != nil {
		resp.StartDate = r.StartDate.Format("2006-01-02")
	}
	if r.EndDate != nil {
		resp.EndDate = r.EndDate.Format("2006-01-02")
	}
	return resp
}

// validateWindow rejects clocks the resolver could not evaluate and windows
// that end before they start.
func validateWindow(startTime, endTime string) *api.APIError {
	startMin, err := schedule.ParseClock(startTime)
	if err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	endMin, err := schedule.ParseClock(endTime)
	if err != nil {
		return &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if endMin < startMin {
		return &api.APIError{Code: http.StatusBadRequest, Message: "end_time is before start_time"}
	}
	return nil
}

func validateDays(days []int) *api.APIError {
	if len(days) == 0 {
		return &api.APIError{Code: http.StatusBadRequest, Message: "days_of_week must not be empty"}
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return &api.APIError{Code: http.StatusBadRequest, Message: "days_of_week values must be 0 (Sunday) through 6 (Saturday)"}
		}
	}
	return nil
}

func parseDate(s *string) (*time.Time, *api.APIError) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *s)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "dates must be YYYY-MM-DD"}
	}
	return &t, nil
}

func toInt64Array(days []int) pq.Int64Array {
	out := make(pq.Int64Array, 0, len(days))
	for _, d := range days {
		out = append(out, int64(d))
	}
	return out
}

func (s *ScheduleController) loadOwnedRule(ctx *gin.Context, screenID int) (model.ScheduleRule, *api.APIError) {
	ruleID, err := strconv.Atoi(ctx.Param("ruleId"))
	if err != nil {
		return model.ScheduleRule{}, &api.APIError{Code: http.StatusBadRequest, Message: "invalid rule id"}
	}
	rule, err := s.store.GetScheduleRule(ruleID)
	if err != nil {
		return model.ScheduleRule{}, &api.APIError{Code: http.StatusNotFound, Message: "schedule rule not found"}
	}
	if rule.ScreenID != screenID {
		return model.ScheduleRule{}, &api.APIError{Code: http.StatusNotFound, Message: "schedule rule not found"}
	}
	return rule, nil
}

func (s *ScheduleController) loadScreen(ctx *gin.Context, user *model.User) (model.Screen, *api.APIError) {
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

func (s *ScheduleController) checkPlaylist(playlistID, tenantID int) *api.APIError {
	pl, err := s.store.GetPlaylistByID(playlistID)
	if err != nil {
		return &api.APIError{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if pl.TenantID != tenantID {
		return &api.APIError{Code: http.StatusForbidden, Message: "playlist not owned by you"}
	}
	return nil
}

func (s *ScheduleController) listRules(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	rules, err := s.store.ListScheduleRulesForScreen(sc.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list schedule rules"}
	}
	out := make([]packets.ScheduleRuleResponse, 0, len(rules))
	for _, r := range rules {
		out = append(out, mapRule(r))
	}
	return out, nil
}

func (s *ScheduleController) createRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.CreateScheduleRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if apiErr := validateWindow(req.StartTime, req.EndTime); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := validateDays(req.DaysOfWeek); apiErr != nil {
		return nil, apiErr
	}
	if apiErr := s.checkPlaylist(req.PlaylistID, user.ID); apiErr != nil {
		return nil, apiErr
	}
	startDate, apiErr := parseDate(req.StartDate)
	if apiErr != nil {
		return nil, apiErr
	}
	endDate, apiErr := parseDate(req.EndDate)
	if apiErr != nil {
		return nil, apiErr
	}

	rule, err := s.store.CreateScheduleRule(model.ScheduleRule{
		ScreenID:   sc.ID,
		PlaylistID: req.PlaylistID,
		Name:       req.Name,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		DaysOfWeek: toInt64Array(req.DaysOfWeek),
		StartDate:  startDate,
		EndDate:    endDate,
		Priority:   req.Priority,
		Active:     true,
	})
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create schedule rule"}
	}
	return mapRule(rule), nil
}

func (s *ScheduleController) updateRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	rule, apiErr := s.loadOwnedRule(ctx, sc.ID)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateScheduleRuleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if req.Name != nil {
		rule.Name = *req.Name
	}
	if req.PlaylistID != nil {
		if apiErr := s.checkPlaylist(*req.PlaylistID, user.ID); apiErr != nil {
			return nil, apiErr
		}
		rule.PlaylistID = *req.PlaylistID
	}
	if req.StartTime != nil {
		rule.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		rule.EndTime = *req.EndTime
	}
	if apiErr := validateWindow(rule.StartTime, rule.EndTime); apiErr != nil {
		return nil, apiErr
	}
	if req.DaysOfWeek != nil {
		if apiErr := validateDays(req.DaysOfWeek); apiErr != nil {
			return nil, apiErr
		}
		rule.DaysOfWeek = toInt64Array(req.DaysOfWeek)
	}
	if req.StartDate != nil {
		startDate, apiErr := parseDate(req.StartDate)
		if apiErr != nil {
			return nil, apiErr
		}
		rule.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, apiErr := parseDate(req.EndDate)
		if apiErr != nil {
			return nil, apiErr
		}
		rule.EndDate = endDate
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	if err := s.store.UpdateScheduleRule(rule); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update schedule rule"}
	}
	return mapRule(rule), nil
}

func (s *ScheduleController) deleteRule(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	sc, apiErr := s.loadScreen(ctx, user)
	if apiErr != nil {
		return nil, apiErr
	}
	rule, apiErr := s.loadOwnedRule(ctx, sc.ID)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.DeleteScheduleRule(rule.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete schedule rule"}
	}
	return gin.H{"message": "deleted"}, nil
}
