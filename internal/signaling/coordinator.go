// Package signaling owns the session core: presence transitions,
// point-to-point WebRTC signal relay and chat fan-out. It reconciles the
// ephemeral connection registry with the durable meeting store and fans
// results out through the room broadcaster.
package signaling

import (
	"context"
	"errors"
	"sync"
	"time"

	"meet-app/internal/database"
	"meet-app/internal/models"
	"meet-app/internal/registry"
	"meet-app/pkg/logger"

	"github.com/google/uuid"
)

// Broadcaster is the delivery primitive the coordinator fans out through.
// Implemented by the websocket hub; faked in tests.
type Broadcaster interface {
	Subscribe(meetingCode, connID string)
	Unsubscribe(meetingCode, connID string)
	BroadcastToRoom(meetingCode string, event models.EventType, payload interface{}, excludeID string)
	SendToConnection(connID string, event models.EventType, payload interface{})
}

type Coordinator struct {
	store        database.MeetingStore
	registry     *registry.Registry
	rooms        Broadcaster
	storeTimeout time.Duration

	// locksMu guards locks; each entry serializes read-modify-write
	// cycles for one meeting code so racing joins cannot lose updates.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewCoordinator(store database.MeetingStore, reg *registry.Registry, rooms Broadcaster, storeTimeout time.Duration) *Coordinator {
	return &Coordinator{
		store:        store,
		registry:     reg,
		rooms:        rooms,
		storeTimeout: storeTimeout,
		locks:        make(map[string]*sync.Mutex),
	}
}

// Join attaches a connection to a meeting, creating the meeting on first
// reference. A stale entry for the same connection (reconnect without a
// clean leave) is replaced, never duplicated. The registry is bound before
// any broadcast so a racing disconnect can already resolve the code.
func (co *Coordinator) Join(ctx context.Context, connID, meetingCode, userName string) error {
	if meetingCode == "" {
		return nil
	}

	lock := co.codeLock(meetingCode)
	lock.Lock()
	defer lock.Unlock()

	sctx, cancel := co.storeContext(ctx)
	defer cancel()

	meeting, err := co.store.GetOrCreate(sctx, meetingCode)
	if err != nil {
		logger.Error("Join failed for %s in %s: %v", connID, meetingCode, err)
		co.sendError(connID, "could not join meeting")
		return err
	}

	meeting.RemoveParticipant(connID)
	meeting.Participants = append(meeting.Participants, models.Participant{
		ID:       connID,
		Name:     userName,
		JoinedAt: time.Now().UTC(),
	})

	if err := co.store.Save(sctx, meeting); err != nil {
		logger.Error("Join persist failed for %s in %s: %v", connID, meetingCode, err)
		co.sendError(connID, "could not join meeting")
		return err
	}

	co.registry.Bind(connID, meetingCode, userName)
	co.rooms.Subscribe(meetingCode, connID)

	co.rooms.BroadcastToRoom(meetingCode, models.EventUserJoined, models.UserJoinedPayload{
		UserID:       connID,
		UserName:     userName,
		Participants: meeting.Participants,
	}, connID)
	co.rooms.SendToConnection(connID, models.EventMeetingJoined, models.MeetingJoinedPayload{
		MeetingCode:  meetingCode,
		Participants: meeting.Participants,
	})

	logger.Info("User %s (%s) joined meeting %s", userName, connID, meetingCode)
	return nil
}

// Leave handles an explicit leave-meeting event.
func (co *Coordinator) Leave(ctx context.Context, connID, meetingCode string) error {
	return co.removeFromMeeting(ctx, connID, meetingCode)
}

// Disconnect handles a transport-level disconnect. The meeting code is
// recovered from the registry binding; without one this is a no-op.
func (co *Coordinator) Disconnect(ctx context.Context, connID string) error {
	binding, ok := co.registry.Lookup(connID)
	if !ok {
		return nil
	}
	return co.removeFromMeeting(ctx, connID, binding.MeetingCode)
}

func (co *Coordinator) removeFromMeeting(ctx context.Context, connID, meetingCode string) error {
	if meetingCode == "" {
		return nil
	}

	lock := co.codeLock(meetingCode)
	lock.Lock()
	defer lock.Unlock()

	sctx, cancel := co.storeContext(ctx)
	defer cancel()

	meeting, err := co.store.FindByCode(sctx, meetingCode)
	if errors.Is(err, database.ErrMeetingNotFound) {
		// Record is gone; drop the ephemeral state and move on.
		co.registry.Unbind(connID)
		co.rooms.Unsubscribe(meetingCode, connID)
		return nil
	}
	if err != nil {
		logger.Error("Leave failed for %s in %s: %v", connID, meetingCode, err)
		co.sendError(connID, "could not leave meeting")
		return err
	}

	if !meeting.RemoveParticipant(connID) {
		co.registry.Unbind(connID)
		co.rooms.Unsubscribe(meetingCode, connID)
		return nil
	}

	if err := co.store.Save(sctx, meeting); err != nil {
		logger.Error("Leave persist failed for %s in %s: %v", connID, meetingCode, err)
		co.sendError(connID, "could not leave meeting")
		return err
	}

	co.registry.Unbind(connID)
	co.rooms.Unsubscribe(meetingCode, connID)
	co.rooms.BroadcastToRoom(meetingCode, models.EventUserLeft, models.UserLeftPayload{
		UserID:       connID,
		Participants: meeting.Participants,
	}, "")

	logger.Info("User %s left meeting %s", connID, meetingCode)
	return nil
}

// RelayOffer forwards an SDP offer to the target connection only.
func (co *Coordinator) RelayOffer(fromID string, p models.SignalPayload) {
	co.relay(fromID, models.EventOffer, p)
}

// RelayAnswer forwards an SDP answer to the target connection only.
func (co *Coordinator) RelayAnswer(fromID string, p models.SignalPayload) {
	co.relay(fromID, models.EventAnswer, p)
}

// RelayIceCandidate forwards an ICE candidate to the target connection only.
func (co *Coordinator) RelayIceCandidate(fromID string, p models.SignalPayload) {
	co.relay(fromID, models.EventICECandidate, p)
}

// relay is a pure forward: no persistence, no membership check. An unknown
// target means the frame silently goes nowhere; WebRTC retries signaling
// at a higher layer.
func (co *Coordinator) relay(fromID string, event models.EventType, p models.SignalPayload) {
	if p.TargetID == "" {
		return
	}
	co.rooms.SendToConnection(p.TargetID, event, models.SignalRelayPayload{
		FromID:    fromID,
		SDP:       p.SDP,
		Candidate: p.Candidate,
	})
}

// SendChat appends a message to the meeting history and echoes it to every
// room member, sender included. Chat to an unknown meeting is dropped.
func (co *Coordinator) SendChat(ctx context.Context, connID, meetingCode string, msg models.ChatMessage) error {
	if meetingCode == "" {
		return nil
	}

	lock := co.codeLock(meetingCode)
	lock.Lock()
	defer lock.Unlock()

	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.SenderID == "" {
		msg.SenderID = connID
	}
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}

	sctx, cancel := co.storeContext(ctx)
	defer cancel()

	if err := co.store.AppendMessage(sctx, meetingCode, &msg); err != nil {
		if errors.Is(err, database.ErrMeetingNotFound) {
			return nil
		}
		logger.Error("Chat persist failed for %s in %s: %v", connID, meetingCode, err)
		co.sendError(connID, "could not send message")
		return err
	}

	co.rooms.BroadcastToRoom(meetingCode, models.EventChatMessage, msg, "")
	return nil
}

func (co *Coordinator) sendError(connID, message string) {
	co.rooms.SendToConnection(connID, models.EventError, models.ErrorPayload{Message: message})
}

func (co *Coordinator) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if co.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, co.storeTimeout)
}

func (co *Coordinator) codeLock(meetingCode string) *sync.Mutex {
	co.locksMu.Lock()
	defer co.locksMu.Unlock()

	lock, ok := co.locks[meetingCode]
	if !ok {
		lock = &sync.Mutex{}
		co.locks[meetingCode] = lock
	}
	return lock
}
