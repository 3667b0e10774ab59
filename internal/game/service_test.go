package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-server/internal/models"
)

func TestCreateGame(t *testing.T) {
	f := newFixture(t)

	g, err := f.svc.CreateGame(f.ctx, "friday night", "admin-1", nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSetup, g.Status)
	assert.Equal(t, models.DefaultSettings(), g.Settings)
	assert.Equal(t, "admin-1", g.CreatedBy)
	assert.Len(t, g.JoinCode, joinCodeLen)
	for _, c := range g.JoinCode {
		assert.Contains(t, joinCodeAlphabet, string(c))
	}

	_, err = f.svc.CreateGame(f.ctx, "", "admin-1", nil)
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestCreateGameRejectsBadSettings(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.GameSettings)
	}{
		{"zero impostors", func(s *models.GameSettings) { s.ImpostorCount = 0 }},
		{"short discussion", func(s *models.GameSettings) { s.DiscussionTimeSec = 10 }},
		{"short voting", func(s *models.GameSettings) { s.VotingTimeSec = 5 }},
		{"short cooldown", func(s *models.GameSettings) { s.KillCooldownSec = 2 }},
		{"negative meetings", func(s *models.GameSettings) { s.EmergencyMeetingsPerPlayer = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			settings := models.DefaultSettings()
			tc.mutate(&settings)
			_, err := f.svc.CreateGame(f.ctx, "friday night", "admin-1", &settings)
			require.Error(t, err)
			assert.IsType(t, &ValidationError{}, err)
		})
	}
}

func TestGetGameByJoinCodeNormalizesInput(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)

	g, err := f.svc.GetGameByJoinCode(f.ctx, "  "+f.game.JoinCode+" ")
	require.NoError(t, err)
	assert.Equal(t, f.game.ID, g.ID)

	_, err = f.svc.GetGameByJoinCode(f.ctx, "NOPE42")
	require.Error(t, err)
	assert.IsType(t, &NotFoundError{}, err)
}

func TestJoinGameAssignsDistinctColors(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addPlayers(8)

	seen := map[string]bool{}
	for _, p := range f.reloadPlayers() {
		require.NotEmpty(t, p.Color)
		assert.False(t, seen[p.Color], "color %s assigned twice", p.Color)
		seen[p.Color] = true
		assert.True(t, p.IsAlive)
		assert.True(t, p.Connected)
	}
}

func TestJoinGameCapacity(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addPlayers(len(models.Colors))

	_, err := f.svc.JoinGame(f.ctx, f.game.JoinCode, "one-too-many", "device-extra")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "game is full")
}

func TestJoinGameDeviceRejoin(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addPlayers(4)

	first := f.players[0]

	// same device joins again in setup: same player, updated name
	again, err := f.svc.JoinGame(f.ctx, f.game.JoinCode, "renamed", first.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "renamed", again.Name)
	assert.Len(t, f.reloadPlayers(), 4)

	// the rejoin path keeps working after the game starts
	f.addRoomAndTasks(4)
	f.start()

	back, err := f.svc.JoinGame(f.ctx, f.game.JoinCode, "renamed", first.DeviceID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, back.ID)
	assert.True(t, back.Connected)

	// a brand-new device cannot join a live game
	_, err = f.svc.JoinGame(f.ctx, f.game.JoinCode, "late", "device-late")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")
}

func TestJoinGameRacingStartIsSerialized(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addPlayers(4)
	f.addRoomAndTasks(4)

	// hold the game lock so a concurrent join parks on it
	unlock := f.svc.locks.lock(f.game.ID)

	joined := make(chan error, 1)
	go func() {
		_, err := f.svc.JoinGame(f.ctx, f.game.JoinCode, "late", "device-late")
		joined <- err
	}()

	// commit the start while the join waits; once it gets the lock it
	// must re-read the game and see the new status
	g := f.reloadGame()
	g.Status = models.StatusInProgress
	require.NoError(t, f.svc.store.Games.Update(f.ctx, g))
	unlock()

	err := <-joined
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already started")

	// the rejected join must not have clobbered the status or left an
	// unassigned player behind
	assert.Equal(t, models.StatusInProgress, f.reloadGame().Status)
	assert.Len(t, f.reloadPlayers(), 4)
}

func TestUpdateGameSettingsImmutableWhileLive(t *testing.T) {
	f := startedGame(t, 4, nil)

	settings := models.DefaultSettings()
	settings.KillCooldownSec = 45
	_, err := f.svc.UpdateGame(f.ctx, f.game.ID, nil, &settings)
	require.Error(t, err)
	assert.IsType(t, &StateConflictError{}, err)

	// ending the game reopens settings for the next round setup
	_, err = f.svc.EndGame(f.ctx, f.game.ID, "admin-1")
	require.NoError(t, err)
	g, err := f.svc.UpdateGame(f.ctx, f.game.ID, nil, &settings)
	require.NoError(t, err)
	assert.Equal(t, 45, g.Settings.KillCooldownSec)
}

func TestUpdateGameName(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)

	name := "saturday night"
	g, err := f.svc.UpdateGame(f.ctx, f.game.ID, &name, nil)
	require.NoError(t, err)
	assert.Equal(t, name, g.Name)

	empty := ""
	_, err = f.svc.UpdateGame(f.ctx, f.game.ID, &empty, nil)
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestDeleteGameCascades(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addPlayers(4)
	f.addRoomAndTasks(4)

	require.NoError(t, f.svc.DeleteGame(f.ctx, f.game.ID))

	_, err := f.svc.GetGame(f.ctx, f.game.ID)
	assert.IsType(t, &NotFoundError{}, err)
	for _, p := range f.players {
		_, err := f.svc.GetPlayer(f.ctx, f.game.ID, p.ID)
		assert.IsType(t, &NotFoundError{}, err)
	}
	_, err = f.svc.GetRoom(f.ctx, f.room.ID)
	assert.IsType(t, &NotFoundError{}, err)
	_, err = f.svc.GetTask(f.ctx, f.tasks[0].ID)
	assert.IsType(t, &NotFoundError{}, err)
}

func TestLeaveGame(t *testing.T) {
	t.Run("leaving in setup removes the player", func(t *testing.T) {
		f := newFixture(t)
		f.createGame(nil)
		f.addPlayers(4)

		require.NoError(t, f.svc.LeaveGame(f.ctx, f.game.ID, f.players[0].ID))
		assert.Len(t, f.reloadPlayers(), 3)
	})

	t.Run("leaving a live game only disconnects", func(t *testing.T) {
		f := startedGame(t, 4, nil)
		p := f.players[0]

		require.NoError(t, f.svc.LeaveGame(f.ctx, f.game.ID, p.ID))
		assert.Len(t, f.reloadPlayers(), 4)
		left := f.reloadPlayer(p.ID)
		assert.False(t, left.Connected)
		assert.True(t, left.IsAlive, "disconnecting is not dying")
	})
}

func TestSetConnected(t *testing.T) {
	f := startedGame(t, 4, nil)
	p := f.players[0]

	require.NoError(t, f.svc.SetConnected(f.ctx, f.game.ID, p.ID, false))
	assert.False(t, f.reloadPlayer(p.ID).Connected)
	require.NoError(t, f.svc.SetConnected(f.ctx, f.game.ID, p.ID, true))
	assert.True(t, f.reloadPlayer(p.ID).Connected)
}

func TestEntityWritesAreSetupOnly(t *testing.T) {
	f := startedGame(t, 4, nil)

	_, err := f.svc.CreateRoom(f.ctx, f.game.ID, "garage", "", nil)
	require.Error(t, err)
	assert.IsType(t, &StateConflictError{}, err)

	_, err = f.svc.CreateTask(f.ctx, f.game.ID, f.room.ID, "late task", "",
		models.Verification{Method: models.VerifyManual}, nil)
	require.Error(t, err)

	err = f.svc.DeleteRoom(f.ctx, f.room.ID)
	require.Error(t, err)
	err = f.svc.DeleteTask(f.ctx, f.tasks[0].ID)
	require.Error(t, err)
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture(t)
	f.createGame(nil)
	f.addRoomAndTasks(1)

	// a room from another game cannot host the task
	other, err := f.svc.CreateGame(f.ctx, "other", "admin-2", nil)
	require.NoError(t, err)
	foreign, err := f.svc.CreateRoom(f.ctx, other.ID, "cellar", "", nil)
	require.NoError(t, err)

	_, err = f.svc.CreateTask(f.ctx, f.game.ID, foreign.ID, "misplaced", "",
		models.Verification{Method: models.VerifyManual}, nil)
	require.Error(t, err)

	_, err = f.svc.CreateTask(f.ctx, f.game.ID, f.room.ID, "weird", "",
		models.Verification{Method: "telepathy"}, nil)
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
}

func TestStats(t *testing.T) {
	f := startedGame(t, 4, nil)
	crew := f.crewmate()

	_, err := f.svc.CompleteTask(f.ctx, f.game.ID, crew.ID, crew.AssignedTasks[0])
	require.NoError(t, err)

	stats, err := f.svc.Stats(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, f.game.ID, stats.Game.ID)
	assert.Equal(t, 4, stats.PlayerCount)
	assert.Equal(t, 1, stats.AliveImpostors)
	assert.Equal(t, 3, stats.AliveCrewmates)
	assert.InDelta(t, 1.0/12.0, stats.TaskProgress, 1e-9)
	for _, ps := range stats.Players {
		if ps.ID == crew.ID {
			assert.Equal(t, 1, ps.TasksCompleted)
		}
	}
}

func TestJoinCodesAreUniqueAcrossGames(t *testing.T) {
	f := newFixture(t)
	codes := map[string]bool{}
	for i := 0; i < 20; i++ {
		g, err := f.svc.CreateGame(f.ctx, fmt.Sprintf("game-%d", i), "admin-1", nil)
		require.NoError(t, err)
		assert.False(t, codes[g.JoinCode], "join code %s reused", g.JoinCode)
		codes[g.JoinCode] = true
	}
}
