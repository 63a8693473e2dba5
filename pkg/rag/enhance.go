package rag

import "strings"

var exerciseWords = []string{"exercise", "activity", "workout", "physical", "fitness", "movement"}

var healthConditions = []string{
	"diabetes", "hypertension", "arthritis", "copd", "dementia", "depression", "stroke", "parkinson",
}

// EnhanceQuery appends terms from the user's condition to query. Exercise
// questions from wheelchair users are steered to seated exercises.
func EnhanceQuery(query, condition string) string {
	query = strings.TrimSpace(query)
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return query
	}

	lq := strings.ToLower(query)
	lc := strings.ToLower(condition)
	wheelchair := strings.Contains(lc, "wheelchair")

	if wheelchair && containsAny(lq, exerciseWords) {
		return query + " wheelchair exercises wheelchair users seated exercises"
	}

	var terms []string
	if wheelchair {
		terms = append(terms, "wheelchair")
	}
	if strings.Contains(lc, "mobility") {
		terms = append(terms, "mobility")
	}
	for _, c := range healthConditions {
		if strings.Contains(lc, c) {
			terms = append(terms, c)
			break
		}
	}
	if len(terms) == 0 {
		return query + " " + condition
	}
	return query + " " + strings.Join(terms, " ") + " " + condition
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
