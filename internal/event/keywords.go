package event

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	trainingKeywords = []string{"formation", "briefing", "animateur", "animatrice", "training"}
	kidsKeywords     = []string{"kids", "junior"}
	onlineKeywords   = []string{"en ligne", "online", "distanciel", "visio"}
	soldOutKeywords  = []string{"complet"}
	giftKeywords     = []string{"cadeau"}
)

// fold lowercases with French rules so "FORMATION" and "Formation" match
func fold(s string) string {
	return cases.Lower(language.French).String(s)
}

func containsAny(s string, keywords []string) bool {
	folded := fold(s)
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// IsTraining reports whether a title announces a facilitator training or briefing
func IsTraining(title string) bool {
	return containsAny(title, trainingKeywords)
}

// IsForKids reports whether a title targets children
func IsForKids(title string) bool {
	return containsAny(title, kidsKeywords)
}

// IsOnline reports whether a location (or title) text describes a remote session
func IsOnline(text string) bool {
	return containsAny(text, onlineKeywords)
}

// IsSoldOutTitle reports whether the title marks the session as full.
// Billetweb has no sold-out markup, organizers rename the event instead.
func IsSoldOutTitle(title string) bool {
	return containsAny(title, soldOutKeywords)
}

// IsGiftCard reports whether a listing entry sells gift cards rather than a session
func IsGiftCard(title string) bool {
	return containsAny(title, giftKeywords)
}
