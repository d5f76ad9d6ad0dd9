package coach

import "strings"

type carbonRule struct {
	keywords []string
	amount   float64
}

// First match wins.
var carbonRules = []carbonRule{
	{keywords: []string{"bottle", "plastic"}, amount: 1},
	{keywords: []string{"cycle", "bike"}, amount: 3},
	{keywords: []string{"tree"}, amount: 2},
	{keywords: []string{"light"}, amount: 1},
	{keywords: []string{"bus", "train"}, amount: 2},
	{keywords: []string{"meat"}, amount: 3},
}

// EstimateCarbon guesses the carbon saved by the action a message describes.
func EstimateCarbon(message string) float64 {
	msg := strings.ToLower(message)
	for _, rule := range carbonRules {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.amount
			}
		}
	}
	return 0
}
