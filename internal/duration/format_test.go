package duration

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		want    string
	}{
		{"zero", 0, "0 mins"},
		{"singular minute", 1, "1 min"},
		{"minutes", 5, "5 mins"},
		{"just under an hour", 59, "59 mins"},
		{"one hour", 60, "1 hr"},
		{"hour and a half", 90, "1h 30m"},
		{"two hours five", 125, "2h 5m"},
		{"two hours", 120, "2 hrs"},
		{"one hour one minute", 61, "1h 1m"},
		{"full day", 1440, "24 hrs"},
		{"negative clamps", -7, "0 mins"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.minutes))
		})
	}
}
