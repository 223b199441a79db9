package models

import "time"

// Clash statuses
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
)

// Option limits per clash
const (
	MinOptions = 2
	MaxOptions = 4
)

// User represents an authenticated account, upserted by email on sign-in
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Option is one selectable choice within a clash. IDs are stable within
// the clash ("option-1".."option-4"), never globally.
type Option struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// Clash is a shareable A/B (up to A/B/C/D) voting contest
type Clash struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Slug        string     `json:"slug"`
	Status      string     `json:"status"`
	Options     []Option   `json:"options"`
	ShowCTA     bool       `json:"show_cta"`
	CTAText     string     `json:"cta_text,omitempty"`
	CTAURL      string     `json:"cta_url,omitempty"`
	ShowResults bool       `json:"show_results"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Expired reports whether the clash has passed its expiry time
func (c *Clash) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

// Vote is an append-only fact: one option pick by one device.
// At most one vote exists per (clash_id, device_fingerprint);
// the database unique index is the enforcement point.
type Vote struct {
	ID                string    `json:"id"`
	ClashID           string    `json:"clash_id"`
	OptionIndex       int       `json:"option_index"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	UserAgent         string    `json:"user_agent"`
	CreatedAt         time.Time `json:"created_at"`
}

// View is an append-only page-load fact; no uniqueness, every load inserts
type View struct {
	ID                string    `json:"id"`
	ClashID           string    `json:"clash_id"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	Referrer          string    `json:"referrer"`
	UserAgent         string    `json:"user_agent"`
	CreatedAt         time.Time `json:"created_at"`
}

// TimeBucket is one point of the per-day vote series
type TimeBucket struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ReferrerCount is one entry of the top-referrers list
type ReferrerCount struct {
	Referrer string `json:"referrer"`
	Count    int    `json:"count"`
}

// Analytics is the aggregate view of a clash's views and votes.
// WinningOptions is always a list: empty with no votes, all tied
// indices on a tie.
type Analytics struct {
	TotalViews        int             `json:"total_views"`
	UniqueViews       int             `json:"unique_views"`
	TotalVotes        int             `json:"total_votes"`
	OptionCounts      map[int]int     `json:"option_counts"`
	OptionPercentages map[int]int     `json:"option_percentages"`
	WinningOptions    []int           `json:"winning_options"`
	VotesTimeSeries   []TimeBucket    `json:"votes_time_series"`
	TopReferrers      []ReferrerCount `json:"top_referrers"`
}
