package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldSkipFlair(t *testing.T) {
	tests := []struct {
		flair string
		skip  bool
	}{
		{"", false},
		{"Review", false},
		{"First Impressions", false},
		{"Recommendation", true},
		{"recommendation request", true},
		{"RECOMMENDATION", true},
		{"Collection Pics", true},
		{"Bottle Identification", true},
		{"Mod Post", true},
		{"Look What I Found", true},
		{"Discussion", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.skip, ShouldSkipFlair(tt.flair), "flair %q", tt.flair)
	}
}
