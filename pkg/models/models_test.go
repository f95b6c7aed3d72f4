package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuality_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Quality
		want int
	}{
		{"equal", Quality{}, Quality{}, 0},
		{"tier dominates area", Quality{Tier: TierOriginal}, Quality{Tier: TierSized, Area: 1 << 40}, 1},
		{"area", Quality{Tier: TierSized, Area: 100}, Quality{Tier: TierSized, Area: 200}, -1},
		{"resolution", Quality{Resolution: 1080}, Quality{Resolution: 720}, 1},
		{"format breaks ties only", Quality{Tier: TierSized, Area: 10, Format: 0}, Quality{Tier: TierSized, Area: 10, Format: 2}, -1},
		{"area beats format", Quality{Area: 20, Format: 0}, Quality{Area: 10, Format: 2}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Compare(tt.b))
			assert.Equal(t, -tt.want, tt.b.Compare(tt.a))
		})
	}
}

func TestDownloadResult_OK(t *testing.T) {
	assert.True(t, DownloadResult{Outcome: OutcomeSuccess}.OK())
	assert.False(t, DownloadResult{Outcome: OutcomeNoAsset}.OK())
}
