package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		name  string
		bytes uint64
		want  string
	}{
		{"bytes", 512, "512 B"},
		{"kibibytes", 2048, "2.00 KB"},
		{"mebibytes", 8 * 1024 * 1024, "8.00 MB"},
		{"gibibytes", 3 * 1024 * 1024 * 1024, "3.00 GB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatBytes(tt.bytes))
		})
	}
}

func TestFormatSpeed(t *testing.T) {
	assert.Equal(t, "0 B/s", FormatSpeed(1024, 0))
	assert.Equal(t, "1.00 KB/s", FormatSpeed(2048, 2))
}

func TestProgressBarBounds(t *testing.T) {
	// Degenerate inputs must not panic or produce negative repeats.
	assert.NotEmpty(t, ProgressBar(-5, 0, 0))
	assert.NotEmpty(t, ProgressBar(50, 10, 30))
	assert.NotEmpty(t, ProgressBar(5, 10, 30))
}
