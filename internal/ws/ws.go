package ws

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/crewlink/crewlink-server/internal/comm"
	"github.com/crewlink/crewlink-server/internal/game"
	"github.com/crewlink/crewlink-server/internal/models"
)

// session is what a socket has proven about itself.
type session struct {
	GameID   string
	PlayerID string
	Admin    bool
}

// client wraps a connection with a write lock; gorilla connections do
// not allow concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Ws is the push surface: it keeps the socket registry, dispatches
// inbound messages to the game engine, and as an engine sink fans
// events out to game, admin and single-player audiences.
type Ws struct {
	svc        *game.Service
	tokenAuth  *jwtauth.JWTAuth
	connMap    sync.Map // socketId -> *client
	sessionMap sync.Map // socketId -> *session
}

func NewWs(svc *game.Service) *Ws {
	jwtKey := os.Getenv("JWT_SECRET_KEY")
	return &Ws{
		svc:       svc,
		tokenAuth: jwtauth.New("HS256", []byte(jwtKey), nil),
	}
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, &client{conn: conn})
}

func (s *Ws) HandleDisconnect(socketId string) {
	if v, ok := s.sessionMap.Load(socketId); ok {
		sess := v.(*session)
		if sess.PlayerID != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			if err := s.svc.SetConnected(ctx, sess.GameID, sess.PlayerID, false); err != nil {
				log.Errorf("failed to mark player %s disconnected: %v", sess.PlayerID, err)
			}
			cancel()
		}
	}
	s.connMap.Delete(socketId)
	s.sessionMap.Delete(socketId)
}

// SocketMessage handles an inbound frame from a web client.
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch message.Type {
	case "admin-auth":
		s.handleAdminAuth(socketId, message)
	case "player-auth":
		s.handlePlayerAuth(ctx, socketId, message)
	case "admin-join-game":
		s.handleAdminJoinGame(ctx, socketId, message)
	case "meeting-call":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.MeetingCall
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			_, err := s.svc.CallMeeting(ctx, sess.GameID, sess.PlayerID, models.MeetingReason(req.Reason), req.ReportedBodyID)
			return err
		})
	case "vote":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.VoteSubmit
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			_, err := s.svc.SubmitVote(ctx, sess.GameID, sess.PlayerID, req.TargetID)
			return err
		})
	case "task-complete":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.TaskComplete
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			_, err := s.svc.CompleteTask(ctx, sess.GameID, sess.PlayerID, req.TaskID)
			return err
		})
	case "kill":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.KillRequest
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			_, err := s.svc.Kill(ctx, sess.GameID, sess.PlayerID, req.TargetID)
			return err
		})
	case "location":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.LocationUpdate
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			_, err := s.svc.UpdateLocation(ctx, sess.GameID, sess.PlayerID, req.RoomToken)
			return err
		})
	case "chat-message":
		s.withPlayer(socketId, func(sess *session) error {
			var req comm.ChatMessage
			if err := json.Unmarshal(message.Data, &req); err != nil {
				return err
			}
			return s.svc.Chat(ctx, sess.GameID, sess.PlayerID, req.Message)
		})
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

func (s *Ws) handleAdminAuth(socketId string, msg *comm.WSMessage) {
	var req comm.AdminAuth
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendError(socketId, "malformed admin-auth payload")
		return
	}

	token, err := s.tokenAuth.Decode(req.Token)
	if err != nil || token == nil {
		log.Warnf("admin auth failed for socket %s: %v", socketId, err)
		s.sendTo(socketId, "auth-result", comm.AuthResult{OK: false, Error: "invalid token"})
		return
	}

	s.sessionMap.Store(socketId, &session{Admin: true})
	s.sendTo(socketId, "auth-result", comm.AuthResult{OK: true})
}

func (s *Ws) handlePlayerAuth(ctx context.Context, socketId string, msg *comm.WSMessage) {
	var req comm.PlayerAuth
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendError(socketId, "malformed player-auth payload")
		return
	}

	player, err := s.svc.GetPlayerByDevice(ctx, req.GameID, req.DeviceID)
	if err != nil {
		s.sendTo(socketId, "auth-result", comm.AuthResult{OK: false, Error: err.Error()})
		return
	}

	s.sessionMap.Store(socketId, &session{GameID: player.GameID, PlayerID: player.ID})
	if err := s.svc.SetConnected(ctx, player.GameID, player.ID, true); err != nil {
		log.Errorf("failed to mark player %s connected: %v", player.ID, err)
	}

	s.sendTo(socketId, "auth-result", comm.AuthResult{OK: true, PlayerID: player.ID, Player: player})
}

func (s *Ws) handleAdminJoinGame(ctx context.Context, socketId string, msg *comm.WSMessage) {
	v, ok := s.sessionMap.Load(socketId)
	if !ok || !v.(*session).Admin {
		s.sendError(socketId, "not authenticated as admin")
		return
	}

	var req comm.AdminJoinGame
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.sendError(socketId, "malformed admin-join-game payload")
		return
	}

	g, err := s.svc.GetGame(ctx, req.GameID)
	if err != nil {
		s.sendError(socketId, err.Error())
		return
	}
	players, err := s.svc.ListPlayers(ctx, g.ID)
	if err != nil {
		s.sendError(socketId, err.Error())
		return
	}

	sess := v.(*session)
	sess.GameID = g.ID
	s.sessionMap.Store(socketId, sess)

	s.sendTo(socketId, "game-update", comm.GameData{Game: g, Players: players})
}

// withPlayer runs fn for an authenticated player socket and reports any
// engine error back on the same socket.
func (s *Ws) withPlayer(socketId string, fn func(*session) error) {
	v, ok := s.sessionMap.Load(socketId)
	if !ok || v.(*session).PlayerID == "" {
		s.sendError(socketId, "not authenticated as player")
		return
	}
	if err := fn(v.(*session)); err != nil {
		s.sendError(socketId, err.Error())
	}
}

func (s *Ws) sendError(socketId, errMsg string) {
	s.sendTo(socketId, "error", comm.ErrorData{Error: errMsg})
}

func (s *Ws) sendTo(socketId, msgType string, payload interface{}) {
	v, ok := s.connMap.Load(socketId)
	if !ok {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("failed to marshal %s payload: %v", msgType, err)
		return
	}
	m := &comm.WSMessage{Type: msgType, Data: data, SocketId: socketId}
	if err := v.(*client).send(m); err != nil {
		log.Errorf("failed to write to socket %s: %v", socketId, err)
	}
}

// audience selectors

func (s *Ws) eachSocket(fn func(socketId string, sess *session)) {
	s.sessionMap.Range(func(key, value interface{}) bool {
		fn(key.(string), value.(*session))
		return true
	})
}

// broadcastGame sends to every player and admin socket subscribed to a
// game.
func (s *Ws) broadcastGame(gameID, msgType string, payload interface{}) {
	s.eachSocket(func(socketId string, sess *session) {
		if sess.GameID == gameID {
			s.sendTo(socketId, msgType, payload)
		}
	})
}

// broadcastAdmins sends to admin sockets of a game only.
func (s *Ws) broadcastAdmins(gameID, msgType string, payload interface{}) {
	s.eachSocket(func(socketId string, sess *session) {
		if sess.Admin && sess.GameID == gameID {
			s.sendTo(socketId, msgType, payload)
		}
	})
}

// sendToPlayer targets the socket(s) a player is connected on.
func (s *Ws) sendToPlayer(gameID, playerID, msgType string, payload interface{}) {
	s.eachSocket(func(socketId string, sess *session) {
		if sess.GameID == gameID && sess.PlayerID == playerID {
			s.sendTo(socketId, msgType, payload)
		}
	})
}

// redactedMeeting strips the ballot from a meeting before broadcast.
// Who voted for whom stays server-side until resolution; live clients
// only get the running count.
func redactedMeeting(m *models.Meeting) (*models.Meeting, int) {
	if m == nil {
		return nil, 0
	}
	cp := *m
	cp.Votes = nil
	return &cp, len(m.Votes)
}

// Publish implements game.Sink: realtime fan-out of engine events.
// Kills go only to the two players involved and the admins; everything
// else that changes shared state goes to the whole game audience.
func (s *Ws) Publish(e game.Event) {
	switch e.Type {
	case game.EventPlayerKilled:
		data := comm.KillData{ActorName: e.ActorName, TargetID: e.TargetID, TargetName: e.TargetName}
		s.sendToPlayer(e.GameID, e.ActorID, string(e.Type), data)
		s.sendToPlayer(e.GameID, e.TargetID, string(e.Type), data)
		s.broadcastAdmins(e.GameID, string(e.Type), data)
	case game.EventGameEnded:
		s.broadcastGame(e.GameID, string(e.Type), comm.GameEndData{Winner: string(e.Winner), Reason: e.Reason})
	case game.EventMeetingStarted, game.EventVotingStarted:
		m, n := redactedMeeting(e.Meeting)
		s.broadcastGame(e.GameID, string(e.Type), comm.MeetingData{Meeting: m, CalledBy: e.ActorName, Reason: e.Reason, VotesCast: n})
	case game.EventVoteRecorded:
		m, n := redactedMeeting(e.Meeting)
		s.broadcastGame(e.GameID, string(e.Type), comm.MeetingData{Meeting: m, Voter: e.ActorName, VotesCast: n})
	case game.EventMeetingResolved:
		s.broadcastGame(e.GameID, string(e.Type), comm.MeetingData{
			Meeting:    e.Meeting,
			Ejected:    e.TargetName,
			EjectedID:  e.TargetID,
			VoteCounts: e.Counts,
		})
	case game.EventChatMessage:
		s.broadcastGame(e.GameID, string(e.Type), comm.ChatData{PlayerID: e.ActorID, Name: e.ActorName, Message: e.Message})
	case game.EventTaskCompleted:
		s.sendToPlayer(e.GameID, e.ActorID, string(e.Type), e)
		s.broadcastAdmins(e.GameID, string(e.Type), e)
	case game.EventLocationChanged:
		s.broadcastAdmins(e.GameID, string(e.Type), e)
	default:
		s.broadcastGame(e.GameID, string(e.Type), e)
	}
}
