package models

// PolicyActiveTimeRange is the policy tag under which an offline playability
// computation is allowed.
const PolicyActiveTimeRange = "time_range"

// UserPolicyConfig is the per-user anti-addiction policy issued at startup.
// It is cached on disk verbatim and reused as the offline fallback source.
type UserPolicyConfig struct {
	AgeCheckResult AgeCheckResult `json:"age_check_result"`
	UserState      UserState      `json:"user_state"`
	Policy         Policy         `json:"policy"`
	LocalConfig    LocalConfig    `json:"local_config"`
}

type AgeCheckResult struct {
	Allow bool `json:"allow"`
}

type UserState struct {
	AgeLimit AgeLimit `json:"age_limit"`
	IsAdult  bool     `json:"is_adult"`
}

type Policy struct {
	Active string `json:"active"`
	// HeartbeatInterval is the poll interval in seconds.
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// LocalConfig carries what the client needs to judge playability offline.
type LocalConfig struct {
	TimeRange TimeRangeConfig `json:"time_range"`
	UI        PolicyCopy      `json:"ui_config"`
}

// TimeRangeConfig describes when minors may play.
type TimeRangeConfig struct {
	// Weekdays uses time.Weekday numbering (0 = Sunday).
	Weekdays []int `json:"weekdays,omitempty"`
	// Holidays are extra playable dates formatted YYYY-MM-DD.
	Holidays  []string `json:"holidays,omitempty"`
	TimeStart string   `json:"time_start,omitempty"`
	TimeEnd   string   `json:"time_end,omitempty"`
	// UTCOffsetMinutes is the offset of the jurisdiction's civil time.
	UTCOffsetMinutes *int `json:"utc_offset_minutes,omitempty"`
}

// PolicyCopy is server-supplied text for the health reminder.
type PolicyCopy struct {
	PlayableTitle     string `json:"playable_title,omitempty"`
	PlayableContent   string `json:"playable_content,omitempty"`
	UnplayableTitle   string `json:"unplayable_title,omitempty"`
	UnplayableContent string `json:"unplayable_content,omitempty"`
}

// GlobalConfig is the game-wide configuration fetched before verification.
// It is kept in memory only: there is no way to order a persisted copy
// against one bundled with the game.
type GlobalConfig struct {
	UploadUserAction bool     `json:"upload_user_action"`
	UI               GlobalUI `json:"ui_config"`
}

type GlobalUI struct {
	VerifyingTip Tip `json:"input_identify_blocking"`
}

// Tip is a one-button advisory dialog.
type Tip struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	PositiveButton string `json:"positive_button"`
}
