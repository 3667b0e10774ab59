package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/models"
)

// CallMeeting opens the discussion phase, either because a body was
// reported or because a player spent an emergency meeting. The meeting
// gets one stable id at creation; every timer and vote refers to it.
func (s *Service) CallMeeting(ctx context.Context, gameID, callerID string, reason models.MeetingReason, reportedBodyID string) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != models.StatusInProgress {
		return nil, conflictf("a meeting can only be called while the game is in progress")
	}

	caller, err := s.loadPlayer(ctx, gameID, callerID)
	if err != nil {
		return nil, err
	}
	if !caller.IsAlive {
		return nil, conflictf("dead players cannot call meetings")
	}

	switch reason {
	case models.MeetingReasonReport:
		body, err := s.loadPlayer(ctx, gameID, reportedBodyID)
		if err != nil {
			return nil, err
		}
		if body.IsAlive {
			return nil, conflictf("%s is not dead", body.Name)
		}
	case models.MeetingReasonEmergency:
		if caller.EmergencyMeetingsLeft <= 0 {
			return nil, conflictf("%s has no emergency meetings left", caller.Name)
		}
		caller.EmergencyMeetingsLeft--
		if err := s.store.Players.Update(ctx, caller); err != nil {
			return nil, internal("failed to update player", err)
		}
	default:
		return nil, invalidf("unknown meeting reason %q", reason)
	}

	now := s.now()
	discussion := time.Duration(g.Settings.DiscussionTimeSec) * time.Second
	voting := time.Duration(g.Settings.VotingTimeSec) * time.Second

	m := &models.Meeting{
		ID:                 uuid.New().String(),
		CalledBy:           caller.ID,
		Reason:             reason,
		ReportedBody:       reportedBodyID,
		OpensAt:            now,
		DiscussionDeadline: now.Add(discussion),
		VotingDeadline:     now.Add(discussion + voting),
		Votes:              make(map[string]*string),
	}

	g.Status = models.StatusDiscussion
	g.Meeting = m
	g.AppendEvent(models.GameEvent{
		Type:      "meeting-called",
		Actor:     caller.ID,
		Target:    reportedBodyID,
		Message:   string(reason),
		Timestamp: now,
	})

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to persist meeting", err)
	}

	s.publish(Event{Type: EventMeetingStarted, GameID: g.ID, ActorID: caller.ID, ActorName: caller.Name, Reason: string(reason), Game: g, Meeting: m})
	s.schedule(discussion, func() { s.beginVoting(g.ID, m.ID) })

	return g, nil
}

// beginVoting is the discussion timer callback. It re-reads the game
// and no-ops if the game has already moved past the expected state.
func (s *Service) beginVoting(gameID, meetingID string) {
	ctx := context.Background()

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		log.Errorf("voting transition for game %s: %v", gameID, err)
		return
	}
	if g.Status != models.StatusDiscussion || g.Meeting == nil || g.Meeting.ID != meetingID {
		log.Debugf("stale discussion timer for game %s meeting %s", gameID, meetingID)
		return
	}

	g.Status = models.StatusVoting
	g.AppendEvent(models.GameEvent{Type: "voting-started", Timestamp: s.now()})

	if err := s.store.Games.Update(ctx, g); err != nil {
		log.Errorf("failed to persist voting transition for game %s: %v", gameID, err)
		return
	}

	s.publish(Event{Type: EventVotingStarted, GameID: g.ID, Game: g, Meeting: g.Meeting})
	s.schedule(g.Meeting.VotingDeadline.Sub(s.now()), func() { s.resolveByTimer(g.ID, meetingID) })
}

// SubmitVote records a vote for the current meeting. Repeat votes from
// the same player overwrite the earlier choice. An empty or "skip"
// target counts as a skip. Once every alive player has voted the
// meeting resolves immediately, bypassing the remaining timer.
func (s *Service) SubmitVote(ctx context.Context, gameID, voterID, targetID string) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.InMeeting() || g.Meeting == nil {
		return nil, conflictf("no meeting is in progress")
	}

	voter, err := s.loadPlayer(ctx, gameID, voterID)
	if err != nil {
		return nil, err
	}
	if !voter.IsAlive {
		return nil, conflictf("dead players cannot vote")
	}

	var vote *string
	if targetID != "" && targetID != SkipVote {
		target, err := s.loadPlayer(ctx, gameID, targetID)
		if err != nil {
			return nil, err
		}
		if !target.IsAlive {
			return nil, conflictf("cannot vote for a dead player")
		}
		vote = &target.ID
	}

	g.Meeting.Votes[voter.ID] = vote
	g.AppendEvent(models.GameEvent{Type: "vote-cast", Actor: voter.ID, Timestamp: s.now()})

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		return nil, internal("failed to list players", err)
	}

	if g.Meeting.AllVoted(aliveIDs(players)) {
		if err := s.resolveMeetingLocked(ctx, g, players); err != nil {
			return nil, err
		}
		return g, nil
	}

	if err := s.store.Games.Update(ctx, g); err != nil {
		return nil, internal("failed to persist vote", err)
	}

	s.publish(Event{Type: EventVoteRecorded, GameID: g.ID, ActorID: voter.ID, ActorName: voter.Name, Meeting: g.Meeting})
	return g, nil
}

// resolveByTimer is the voting deadline callback, guarded the same way
// as beginVoting so an early all-voted resolution makes it a no-op.
func (s *Service) resolveByTimer(gameID, meetingID string) {
	ctx := context.Background()

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		log.Errorf("meeting resolution for game %s: %v", gameID, err)
		return
	}
	if g.Status != models.StatusVoting || g.Meeting == nil || g.Meeting.ID != meetingID {
		log.Debugf("stale voting timer for game %s meeting %s", gameID, meetingID)
		return
	}

	players, err := s.store.Players.ListByGame(ctx, g.ID)
	if err != nil {
		log.Errorf("meeting resolution for game %s: %v", gameID, err)
		return
	}

	if err := s.resolveMeetingLocked(ctx, g, players); err != nil {
		log.Errorf("meeting resolution for game %s: %v", gameID, err)
	}
}

// resolveMeetingLocked tallies the current meeting and either ejects
// the unique-majority target or records that no one was ejected, then
// evaluates the win condition. Caller holds the game lock.
func (s *Service) resolveMeetingLocked(ctx context.Context, g *models.Game, players []*models.Player) error {
	m := g.Meeting
	counts, ejectedID, ejected := CountVotes(m.Votes)
	now := s.now()

	var ejectedPlayer *models.Player
	if ejected {
		for _, p := range players {
			if p.ID == ejectedID {
				ejectedPlayer = p
				break
			}
		}
	}

	if ejectedPlayer != nil {
		ejectedPlayer.IsAlive = false
		if err := s.store.Players.Update(ctx, ejectedPlayer); err != nil {
			return internal("failed to persist ejection", err)
		}
		g.AppendEvent(models.GameEvent{Type: "player-ejected", Target: ejectedPlayer.ID, Message: ejectedPlayer.Name, Timestamp: now})
	} else {
		g.AppendEvent(models.GameEvent{Type: "no-ejection", Timestamp: now})
	}

	won := s.applyWin(g, players, triggerEjection)
	if !won {
		g.Status = models.StatusInProgress
		g.Meeting = nil
		g.CurrentRound++
	}

	if err := s.store.Games.Update(ctx, g); err != nil {
		return internal("failed to persist meeting resolution", err)
	}

	resolved := Event{Type: EventMeetingResolved, GameID: g.ID, Counts: counts, Game: g, Meeting: m}
	if ejectedPlayer != nil {
		resolved.TargetID = ejectedPlayer.ID
		resolved.TargetName = ejectedPlayer.Name
	}
	s.publish(resolved)

	if won {
		s.publish(Event{Type: EventGameEnded, GameID: g.ID, Winner: g.Winner, Reason: g.WinReason, Game: g})
	} else {
		s.publish(Event{Type: EventGameUpdated, GameID: g.ID, Game: g, Message: "game continues"})
	}
	return nil
}

// RecoverMeetings is the startup sweep. Timers do not survive a
// restart, but meeting deadlines are persisted on the game document, so
// overdue meetings are resolved and pending ones rescheduled.
func (s *Service) RecoverMeetings(ctx context.Context) error {
	games, err := s.store.Games.ListByStatus(ctx, models.StatusDiscussion, models.StatusVoting)
	if err != nil {
		return internal("failed to list games for recovery", err)
	}

	now := s.now()
	for _, g := range games {
		if g.Meeting == nil {
			continue
		}
		meetingID := g.Meeting.ID

		switch {
		case now.After(g.Meeting.VotingDeadline):
			log.Infof("recovering overdue meeting %s in game %s", meetingID, g.ID)
			if g.Status == models.StatusDiscussion {
				s.beginVoting(g.ID, meetingID)
			}
			s.resolveByTimer(g.ID, meetingID)
		case g.Status == models.StatusDiscussion && now.After(g.Meeting.DiscussionDeadline):
			s.beginVoting(g.ID, meetingID)
		case g.Status == models.StatusDiscussion:
			s.schedule(g.Meeting.DiscussionDeadline.Sub(now), func() { s.beginVoting(g.ID, meetingID) })
		default:
			s.schedule(g.Meeting.VotingDeadline.Sub(now), func() { s.resolveByTimer(g.ID, meetingID) })
		}
	}
	return nil
}

func aliveIDs(players []*models.Player) []string {
	var ids []string
	for _, p := range players {
		if p.IsAlive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
