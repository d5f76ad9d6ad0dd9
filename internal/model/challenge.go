package model

import (
	"errors"
	"strings"
	"time"
)

var ErrUnknownCategory = errors.New("unknown challenge category")

type Category string

const (
	CategoryTransport Category = "Transport"
	CategoryNature    Category = "Nature"
	CategoryDiet      Category = "Diet"
	CategoryWater     Category = "Water"
	CategoryWaste     Category = "Waste"
)

var categories = []Category{
	CategoryTransport,
	CategoryNature,
	CategoryDiet,
	CategoryWater,
	CategoryWaste,
}

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

type Challenge struct {
	ID          int
	Title       string
	Description string
	Category    Category
	Points      int
}

// ChallengeBinding is the persisted choice of challenge for one date.
type ChallengeBinding struct {
	Date        time.Time
	ChallengeID int
	CreatedAt   time.Time
}

type ChallengeOfDay struct {
	Date      time.Time
	Challenge Challenge
}

// Completion is the result of completing a day's challenge.
type Completion struct {
	Username  string
	Date      time.Time
	Challenge Challenge
	Progress  Progress
}
