package dto

import "github.com/google/uuid"

// LeaderboardQuery carries the filter/search/pagination parameters of a
// leaderboard read. TechStack/Language/Tag are taxonomy names (matched
// case-insensitively), not ids.
type LeaderboardQuery struct {
	Type      string `form:"type"`
	Search    string `form:"search"`
	TechStack string `form:"techStack"`
	Language  string `form:"language"`
	Tag       string `form:"tag"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

// LeaderboardRow is the explicit view model for one ranked row. It is built
// field-by-field from the ranking entry plus the directory record; nothing
// internal leaks into it.
type LeaderboardRow struct {
	Rank           int        `json:"rank"`
	Name           string     `json:"name"`
	Points         int        `json:"points"`
	UserID         *uuid.UUID `json:"user_id,omitempty"`
	TeamID         *uuid.UUID `json:"team_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	ProfilePicture *string    `json:"profile_picture,omitempty"`
	TeamLogo       *string    `json:"team_logo,omitempty"`
	Members        int        `json:"members,omitempty"`
	TechStack      string     `json:"tech_stack"`
	Language       string     `json:"language,omitempty"`
}

type LeaderboardPage struct {
	Results    []LeaderboardRow `json:"results"`
	TopThree   []LeaderboardRow `json:"top_three"`
	Pagination Pagination       `json:"pagination"`
}

type LeaderboardFilters struct {
	TechStacks []string `json:"tech_stacks"`
	Languages  []string `json:"languages"`
	Tags       []string `json:"tags"`
}

// RecomputeResult reports how many entries each full pass actually wrote.
type RecomputeResult struct {
	IndividualCount int `json:"individual_count"`
	TeamCount       int `json:"team_count"`
}

// RefreshResult reports the outcome of a reconciliation sweep.
type RefreshResult struct {
	IndividualsRegistered int `json:"individuals_registered"`
	TeamsRegistered       int `json:"teams_registered"`
	OrphansRemoved        int `json:"orphans_removed"`
	IndividualCount       int `json:"individual_count"`
	TeamCount             int `json:"team_count"`
}
