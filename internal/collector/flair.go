package collector

import "strings"

// Flairs that never carry review content; matched posts skip the classifier
// entirely since classification is the expensive step.
var skipFlairs = []string{
	"recommendation",
	"collection pics",
	"bottle identification",
	"mod post",
	"look what i found",
}

// ShouldSkipFlair reports whether a post's flair matches the deny-list.
// Matching is a case-insensitive substring check; empty flair never matches.
func ShouldSkipFlair(flair string) bool {
	if flair == "" {
		return false
	}
	lower := strings.ToLower(flair)
	for _, skip := range skipFlairs {
		if strings.Contains(lower, skip) {
			return true
		}
	}
	return false
}
