package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sp(s string) *string { return &s }

func TestCountVotes(t *testing.T) {
	cases := []struct {
		name        string
		votes       map[string]*string
		wantEjected string
		wantOK      bool
	}{
		{
			name:   "empty votes ejects no one",
			votes:  map[string]*string{},
			wantOK: false,
		},
		{
			name: "tie between two players",
			votes: map[string]*string{
				"v1": sp("A"), "v2": sp("A"),
				"v3": sp("B"), "v4": sp("B"),
				"v5": nil,
			},
			wantOK: false,
		},
		{
			name: "strict majority ejects",
			votes: map[string]*string{
				"v1": sp("A"), "v2": sp("A"), "v3": sp("A"),
				"v4": sp("B"),
				"v5": nil,
			},
			wantEjected: "A",
			wantOK:      true,
		},
		{
			name: "skip winning ejects no one",
			votes: map[string]*string{
				"v1": nil, "v2": nil, "v3": sp("A"),
			},
			wantOK: false,
		},
		{
			name: "tie with skip ejects no one",
			votes: map[string]*string{
				"v1": nil, "v2": nil,
				"v3": sp("A"), "v4": sp("A"),
			},
			wantOK: false,
		},
		{
			name: "everyone skips",
			votes: map[string]*string{
				"v1": nil, "v2": nil, "v3": nil,
			},
			wantOK: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			counts, ejected, ok := CountVotes(tc.votes)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.wantEjected, ejected)
			} else {
				assert.Empty(t, ejected)
			}
			total := 0
			for _, n := range counts {
				total += n
			}
			assert.Equal(t, len(tc.votes), total, "every vote lands in exactly one bucket")
		})
	}
}
