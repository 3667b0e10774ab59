package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-server/internal/models"
)

func TestRedactedMeeting(t *testing.T) {
	target := "p2"
	m := &models.Meeting{
		ID:    "m1",
		Votes: map[string]*string{"p1": &target, "p3": nil},
	}

	red, n := redactedMeeting(m)
	require.NotNil(t, red)
	assert.Equal(t, "m1", red.ID)
	assert.Nil(t, red.Votes, "ballots stay server-side until resolution")
	assert.Equal(t, 2, n)

	// the engine's copy is untouched
	assert.Len(t, m.Votes, 2)

	red, n = redactedMeeting(nil)
	assert.Nil(t, red)
	assert.Zero(t, n)
}
