package assistant

import "strings"

var leaveOnPhrases = []string{
	"leave it on", "leave them on", "leave on",
	"keep it on", "keep them on", "keep on",
	"that's fine", "thats fine", "that is fine",
	"no problem", "it's fine", "its fine",
	"don't turn it off", "dont turn it off", "don't turn off",
	"no thanks", "no, thanks", "i'm using it", "im using it",
}

// isLeaveOn reports whether msg declines switching a device off.
func isLeaveOn(msg string) bool {
	msg = strings.ToLower(strings.TrimSpace(msg))
	for _, p := range leaveOnPhrases {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

var (
	controlWords = []string{
		"turn on", "turn off", "switch", "light", "tv", "fan", "alarm",
		"schedule", "add ", "delete", "change", "meeting", "appointment", "remind", "notification",
	}
	healthWords = []string{
		"symptom", "disease", "medication", "medicine", "treatment", "diagnos", "therapy",
		"health", "medical", "doctor", "hospital", "illness", "chronic", "pain",
		"blood pressure", "blood sugar", "glucose", "insulin", "heart", "breathing",
		"diabetes", "hypertension", "arthritis", "copd", "dementia", "depression",
		"stroke", "parkinson", "allerg", "wheelchair",
	}
	lifestyleWords = []string{
		"eat", "food", "meal", "breakfast", "lunch", "dinner", "snack", "diet",
		"exercise", "workout", "activity", "activities", "physical",
		"sleep", "rest", "routine", "lifestyle", "fitness", "recommend", "suggest",
	}
	guidanceQuestions = []string{"what should i do", "what do i need to do", "what do i do", "how should i"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// needsKnowledge decides whether to fetch health guidance before asking
// the model. current is the label of the current activity, if any.
func needsKnowledge(msg, condition, current string) bool {
	msg = strings.ToLower(strings.TrimSpace(msg))
	if msg == "" {
		return false
	}
	hasCondition := strings.TrimSpace(condition) != ""

	if hasCondition && containsAny(msg, guidanceQuestions) && containsAny(strings.ToLower(current), lifestyleWords) {
		return true
	}
	if containsAny(msg, controlWords) {
		return false
	}
	if containsAny(msg, healthWords) {
		return true
	}
	return hasCondition && containsAny(msg, lifestyleWords)
}
