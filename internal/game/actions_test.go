package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlink/crewlink-server/internal/models"
)

func TestKillPreconditions(t *testing.T) {
	t.Run("only impostors can kill", func(t *testing.T) {
		f := startedGame(t, 5, nil)
		crew := f.byRole(models.RoleCrewmate)
		f.moveToRoom(crew[0].ID, crew[1].ID)

		_, err := f.svc.Kill(f.ctx, f.game.ID, crew[0].ID, crew[1].ID)
		require.Error(t, err)
		assert.IsType(t, &StateConflictError{}, err)
		assert.Contains(t, err.Error(), "only impostors can kill")
	})

	t.Run("target must share the room", func(t *testing.T) {
		f := startedGame(t, 5, nil)
		imp, victim := f.impostor(), f.crewmate()
		f.moveToRoom(imp.ID) // the victim never scanned anything

		_, err := f.svc.Kill(f.ctx, f.game.ID, imp.ID, victim.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not in the same room")
	})

	t.Run("target must be alive", func(t *testing.T) {
		f := startedGame(t, 5, nil)
		imp, victim := f.impostor(), f.crewmate()
		f.moveToRoom(imp.ID, victim.ID)

		_, err := f.svc.Kill(f.ctx, f.game.ID, imp.ID, victim.ID)
		require.NoError(t, err)

		f.advance(time.Duration(f.game.Settings.KillCooldownSec) * time.Second)
		_, err = f.svc.Kill(f.ctx, f.game.ID, imp.ID, victim.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already dead")
	})
}

func TestKillCooldown(t *testing.T) {
	f := startedGame(t, 6, nil)
	imp := f.impostor()
	crew := f.byRole(models.RoleCrewmate)
	f.moveToRoom(imp.ID, crew[0].ID, crew[1].ID)

	_, err := f.svc.Kill(f.ctx, f.game.ID, imp.ID, crew[0].ID)
	require.NoError(t, err)

	// one second short of the cooldown
	f.advance(29 * time.Second)
	_, err = f.svc.Kill(f.ctx, f.game.ID, imp.ID, crew[1].ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kill cooldown")

	// exactly at the cooldown boundary the kill goes through
	f.advance(1 * time.Second)
	target, err := f.svc.Kill(f.ctx, f.game.ID, imp.ID, crew[1].ID)
	require.NoError(t, err)
	assert.False(t, target.IsAlive)
}

func TestKillReachingParityEndsTheGame(t *testing.T) {
	settings := models.DefaultSettings()
	settings.ImpostorCount = 2

	f := newFixture(t)
	f.createGame(&settings)
	f.addPlayers(6)
	f.addRoomAndTasks(6)
	f.start()

	imps := f.byRole(models.RoleImpostor)
	crew := f.byRole(models.RoleCrewmate)
	f.moveToRoom(imps[0].ID, imps[1].ID, crew[0].ID, crew[1].ID)

	_, err := f.svc.Kill(f.ctx, f.game.ID, imps[0].ID, crew[0].ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, f.reloadGame().Status)

	// second impostor has its own cooldown clock, no need to wait
	_, err = f.svc.Kill(f.ctx, f.game.ID, imps[1].ID, crew[1].ID)
	require.NoError(t, err)

	g := f.reloadGame()
	assert.Equal(t, models.StatusCompleted, g.Status)
	assert.Equal(t, models.WinnerImpostors, g.Winner)
	assert.Equal(t, "elimination", g.WinReason)
	require.NotNil(t, g.EndTime)
	require.NotNil(t, f.rec.last(EventGameEnded))
}

func TestCompleteTask(t *testing.T) {
	f := startedGame(t, 5, nil)
	crew := f.crewmate()
	taskID := crew.AssignedTasks[0]

	p, err := f.svc.CompleteTask(f.ctx, f.game.ID, crew.ID, taskID)
	require.NoError(t, err)
	require.Len(t, p.CompletedTasks, 1)
	assert.Equal(t, taskID, p.CompletedTasks[0].TaskID)
	assert.Equal(t, f.now, p.CompletedTasks[0].CompletedAt)

	// completing the same task twice is rejected
	_, err = f.svc.CompleteTask(f.ctx, f.game.ID, crew.ID, taskID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already completed")

	// only assigned tasks count
	unassigned := ""
	for _, task := range f.tasks {
		if !p.IsAssigned(task.ID) {
			unassigned = task.ID
			break
		}
	}
	if unassigned != "" {
		_, err = f.svc.CompleteTask(f.ctx, f.game.ID, crew.ID, unassigned)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not assigned")
	}
}

func TestAllTasksDoneWinsForCrewmates(t *testing.T) {
	f := startedGame(t, 4, nil)

	for _, p := range f.byRole(models.RoleCrewmate) {
		for _, taskID := range p.AssignedTasks {
			_, err := f.svc.CompleteTask(f.ctx, f.game.ID, p.ID, taskID)
			require.NoError(t, err)
		}
	}

	g := f.reloadGame()
	assert.Equal(t, models.StatusCompleted, g.Status)
	assert.Equal(t, models.WinnerCrewmates, g.Winner)
	assert.Equal(t, "tasks", g.WinReason)
}

func TestImpostorTasksDoNotCountTowardTheWin(t *testing.T) {
	f := startedGame(t, 4, nil)
	imp := f.impostor()

	for _, taskID := range imp.AssignedTasks {
		_, err := f.svc.CompleteTask(f.ctx, f.game.ID, imp.ID, taskID)
		require.NoError(t, err)
	}

	assert.Equal(t, models.StatusInProgress, f.reloadGame().Status)
}

func TestUpdateLocation(t *testing.T) {
	f := startedGame(t, 5, nil)
	p := f.crewmate()

	room, err := f.svc.UpdateLocation(f.ctx, f.game.ID, p.ID, f.room.QRToken)
	require.NoError(t, err)
	assert.Equal(t, f.room.ID, room.ID)
	assert.Equal(t, f.room.ID, f.reloadPlayer(p.ID).CurrentRoomID)

	_, err = f.svc.UpdateLocation(f.ctx, f.game.ID, p.ID, "no-such-token")
	require.Error(t, err)
	assert.IsType(t, &NotFoundError{}, err)
}

func TestDeadPlayersStillMove(t *testing.T) {
	f := startedGame(t, 5, nil)
	imp, victim := f.impostor(), f.crewmate()
	f.moveToRoom(imp.ID, victim.ID)
	_, err := f.svc.Kill(f.ctx, f.game.ID, imp.ID, victim.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateLocation(f.ctx, f.game.ID, victim.ID, f.room.QRToken)
	require.NoError(t, err)
}

func TestCompletedGameAbsorbsEverything(t *testing.T) {
	f := startedGame(t, 5, nil)
	_, err := f.svc.EndGame(f.ctx, f.game.ID, "admin-1")
	require.NoError(t, err)

	g := f.reloadGame()
	require.Equal(t, models.StatusCompleted, g.Status)
	assert.Equal(t, "ended-by-admin", g.WinReason)

	imp, crew := f.impostor(), f.crewmate()

	_, err = f.svc.Kill(f.ctx, f.game.ID, imp.ID, crew.ID)
	assert.Error(t, err)
	_, err = f.svc.CompleteTask(f.ctx, f.game.ID, crew.ID, crew.AssignedTasks[0])
	assert.Error(t, err)
	_, err = f.svc.CallMeeting(f.ctx, f.game.ID, crew.ID, models.MeetingReasonEmergency, "")
	assert.Error(t, err)
	_, err = f.svc.SubmitVote(f.ctx, f.game.ID, crew.ID, SkipVote)
	assert.Error(t, err)
	_, err = f.svc.UpdateLocation(f.ctx, f.game.ID, crew.ID, f.room.QRToken)
	assert.Error(t, err)
	_, err = f.svc.StartGame(f.ctx, f.game.ID)
	assert.Error(t, err)
	err = f.svc.Chat(f.ctx, f.game.ID, crew.ID, "anyone there?")
	assert.Error(t, err)
}

func TestChat(t *testing.T) {
	f := startedGame(t, 5, nil)
	p := f.crewmate()

	require.Error(t, f.svc.Chat(f.ctx, f.game.ID, p.ID, ""))
	require.NoError(t, f.svc.Chat(f.ctx, f.game.ID, p.ID, "sus"))

	g := f.reloadGame()
	last := g.Events[len(g.Events)-1]
	assert.Equal(t, "chat", last.Type)
	assert.Equal(t, p.ID, last.Actor)
	assert.Equal(t, "sus", last.Message)

	e := f.rec.last(EventChatMessage)
	require.NotNil(t, e)
	assert.Equal(t, "sus", e.Message)
}
