package packets

// RESPONSES FOR /api/admin

type TokenResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID    int     `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name,omitempty"`
}

type ScreenResponse struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	Location          *string `json:"location,omitempty"`
	CurrentPlaylistID *int    `json:"current_playlist_id,omitempty"`
	Online            bool    `json:"online"`
	LastSeenAt        string  `json:"last_seen_at,omitempty"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type ClaimPairingResponse struct {
	ScreenID  int    `json:"screen_id"`
	ViewerURL string `json:"viewer_url"`
}

type PlaylistItemResponse struct {
	ID        int  `json:"id"`
	ContentID int  `json:"content_id"`
	Position  int  `json:"position"`
	Duration  *int `json:"duration,omitempty"`
}

type PlaylistResponse struct {
	ID         int                    `json:"id"`
	Name       string                 `json:"name"`
	Transition string                 `json:"transition"`
	IsDefault  bool                   `json:"is_default"`
	Shared     bool                   `json:"shared"`
	ShareToken *string                `json:"share_token,omitempty"`
	CreatedAt  string                 `json:"created_at"`
	UpdatedAt  string                 `json:"updated_at"`
	Items      []PlaylistItemResponse `json:"items"`
}

type ScheduleRuleResponse struct {
	ID         int    `json:"id"`
	ScreenID   int    `json:"screen_id"`
	PlaylistID int    `json:"playlist_id"`
	Name       string `json:"name"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartDate  string `json:"start_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	Priority   int    `json:"priority"`
	Active     bool   `json:"active"`
}

type ContentResponse struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	URL       string `json:"url"`
	Duration  *int   `json:"duration,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}
