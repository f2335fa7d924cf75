package packets

// REQUESTS FOR /api/admin

type SignupRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Email string  `json:"email" binding:"required,email"`
	Name  *string `json:"name"`
}

type CreateScreenRequest struct {
	Name       string  `json:"name" binding:"required"`
	Location   *string `json:"location"`
	PlaylistID *int    `json:"playlist_id"`
}

type UpdateScreenRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// AssignPlaylistRequest sets or clears (null) a screen's direct assignment.
type AssignPlaylistRequest struct {
	PlaylistID *int `json:"playlist_id"`
}

type ClaimPairingRequest struct {
	PairingCode string `json:"pairing_code" binding:"required"`
	ScreenName  string `json:"screen_name" binding:"required"`
	PlaylistID  int    `json:"playlist_id" binding:"required"`
}

type CreatePlaylistRequest struct {
	Name       string  `json:"name" binding:"required"`
	Transition *string `json:"transition"`
}

type UpdatePlaylistRequest struct {
	Name       *string `json:"name"`
	Transition *string `json:"transition"`
}

type AddPlaylistItemRequest struct {
	ContentID int  `json:"content_id" binding:"required"`
	Position  *int `json:"position"`
	Duration  *int `json:"duration"`
}

type UpdatePlaylistItemRequest struct {
	Position *int `json:"position"`
	Duration *int `json:"duration"`
}

type ReorderPlaylistItemsRequest struct {
	ItemIDs []int `json:"item_ids" binding:"required"`
}

type SharePlaylistRequest struct {
	Shared bool `json:"shared"`
}

type CreateScheduleRuleRequest struct {
	Name       string  `json:"name" binding:"required"`
	PlaylistID int     `json:"playlist_id" binding:"required"`
	StartTime  string  `json:"start_time" binding:"required"`
	EndTime    string  `json:"end_time" binding:"required"`
	DaysOfWeek []int   `json:"days_of_week" binding:"required"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Priority   int     `json:"priority"`
}

type UpdateScheduleRuleRequest struct {
	Name       *string `json:"name"`
	PlaylistID *int    `json:"playlist_id"`
	StartTime  *string `json:"start_time"`
	EndTime    *string `json:"end_time"`
	DaysOfWeek []int   `json:"days_of_week"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	Priority   *int    `json:"priority"`
	Active     *bool   `json:"active"`
}

type UpdateContentRequest struct {
	Name     *string `json:"name"`
	URL      *string `json:"url"`
	Duration *int    `json:"duration"`
}
