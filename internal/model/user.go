package model

import "time"

type User struct {
	ID        int64
	Username  string
	Email     string
	CreatedAt time.Time
	Progress
}

type LeaderboardEntry struct {
	Rank             int
	Username         string
	TotalCarbonSaved float64
	Streak           int
	LastActivityDate *time.Time
}
