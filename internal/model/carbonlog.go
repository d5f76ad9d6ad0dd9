package model

import "time"

type CarbonLogEntry struct {
	ID           int64
	UserID       int64
	Amount       float64
	Activity     string
	ActivityDate time.Time
	LoggedAt     time.Time
}

// LedgerAppend is one request to append to a user's ledger. When
// ChallengeID is set the append also records completion of that day's
// challenge.
type LedgerAppend struct {
	Username     string
	Amount       float64
	Activity     string
	ActivityDate time.Time
	LoggedAt     time.Time
	ChallengeID  *int
}
