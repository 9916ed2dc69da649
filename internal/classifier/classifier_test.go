package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jason5545/trackpal/internal/config"
	"github.com/jason5545/trackpal/internal/contact"
)

func TestClassify(t *testing.T) {
	cfg := config.Default()

	cases := []struct {
		name string
		f    contact.Frame
		want Verdict
	}{
		{
			name: "valid finger",
			f:    contact.Frame{State: contact.StateContact, Density: 0.10, MajorAxis: 8, MinorAxis: 7},
			want: Valid,
		},
		{
			name: "palm rejected too large",
			f:    contact.Frame{State: contact.StateContact, Density: 0.30, MajorAxis: 22, MinorAxis: 18},
			want: TooLarge,
		},
		{
			name: "hover too light",
			f:    contact.Frame{State: contact.StateContact, Density: 0.01, MajorAxis: 5, MinorAxis: 4},
			want: TooLight,
		},
		{
			name: "lift-off bypasses density check",
			f:    contact.Frame{State: contact.StateReleased, Density: 0, MajorAxis: 0, MinorAxis: 0},
			want: Valid,
		},
		{
			name: "lifting bypasses density check",
			f:    contact.Frame{State: contact.StateLifting, Density: 0, MajorAxis: 0, MinorAxis: 0},
			want: Valid,
		},
		{
			name: "large minor axis alone rejects",
			f:    contact.Frame{State: contact.StateContact, Density: 0.10, MajorAxis: 8, MinorAxis: 13},
			want: TooLarge,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.f, cfg))
		})
	}
}

func TestClassifyFiltersDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.FilterLightTouches = false
	cfg.FilterLargeTouches = false

	f := contact.Frame{State: contact.StateContact, Density: 0.30, MajorAxis: 22, MinorAxis: 18}
	assert.Equal(t, Valid, Classify(f, cfg))
}

func TestCountersRecord(t *testing.T) {
	cfg := config.Default()
	var c Counters

	c.Record(contact.Frame{State: contact.StateContact, Density: 0.10, MajorAxis: 8, MinorAxis: 7}, cfg)
	c.Record(contact.Frame{State: contact.StateContact, Density: 0.30, MajorAxis: 22, MinorAxis: 18}, cfg)
	c.Record(contact.Frame{State: contact.StateContact, Density: 0.01, MajorAxis: 5, MinorAxis: 4}, cfg)

	assert.Equal(t, Counters{Valid: 1, TooLight: 1, TooLarge: 1}, c)
}
