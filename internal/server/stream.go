package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/claude/formcoach/internal/engine"
)

const handshakeTimeout = 5 * time.Second

// wsConn serializes writes. Events arrive from the read loop and the tick
// goroutine, so the connection needs a single write path.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsConn) writeError(code, message string, close bool) {
	_ = c.writeJSON(ErrorMessage{Type: "error", Code: code, Message: message, Close: close})
	if close {
		c.mu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message),
			time.Now().Add(2*time.Second))
		c.mu.Unlock()
	}
}

// wsSpeaker plays voice cues by sending them to the client. The client owns
// audio playback and replaces the current cue when a new one arrives, so
// Stop has nothing to do on the wire.
type wsSpeaker struct {
	conn *wsConn
}

func (s wsSpeaker) Speak(text string) {
	_ = s.conn.writeJSON(CueMessage{Type: "cue", Text: text})
}

func (s wsSpeaker) Stop() {}

// handleSessionStream runs one exercise session over a websocket. The first
// client message must be hello; after the ack the client streams pose
// frames and control messages while the server streams events and cues.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	wc := &wsConn{conn: conn}

	_ = conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, first, err := conn.ReadMessage()
	if err != nil {
		wc.writeError("bad_request", "failed to read hello", true)
		return
	}
	msg, err := DecodeClientMessage(first)
	if err != nil || msg.Type != MsgHello {
		wc.writeError("bad_request", "first message must be hello", true)
		return
	}
	if msg.SensorReady == nil || !*msg.SensorReady {
		wc.writeError("sensor_unavailable", engine.ErrSensorUnavailable.Error(), true)
		return
	}
	def, ok := s.findExercise(msg.ExerciseID)
	if !ok {
		wc.writeError("unknown_exercise", "unknown exercise id", true)
		return
	}

	emitter := engine.NewFeedbackEmitter(wsSpeaker{conn: wc}, s.cueWindow)
	sess, err := engine.NewSession(def, s.session, func(ev engine.Event) {
		// Persist before touching the socket: the result must survive a
		// client that drops right at the final rep, and the request
		// context dies with the connection.
		if ev.Kind == engine.EventSessionComplete && ev.Result != nil {
			if err := s.store.InsertExerciseResult(context.Background(), *ev.Result); err != nil {
				s.log.Error("result persist failed", "session_id", ev.Result.ID, "error", err)
			}
		}
		if err := wc.writeJSON(EventMessage{Type: "event", Event: ev}); err != nil {
			return
		}
		emitter.Handle(ev, time.Now())
	})
	if err != nil {
		wc.writeError("bad_request", err.Error(), true)
		return
	}

	if err := wc.writeJSON(HelloAck{
		Type:               "hello_ack",
		SessionID:          sess.ID.String(),
		Exercise:           def,
		CalibrationSeconds: int(s.session.Calibration / time.Second),
	}); err != nil {
		return
	}
	_ = conn.SetReadDeadline(time.Time{})

	s.log.Info("session started", "session_id", sess.ID, "exercise", def.ID)

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case now := <-ticker.C:
				sess.Tick(now)
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			// Client went away mid-session: discard in-flight state.
			if sess.State() != engine.StateComplete {
				sess.Cancel()
				emitter.Flush()
			}
			s.log.Info("session stream closed", "session_id", sess.ID, "state", sess.State())
			return
		}

		msg, err := DecodeClientMessage(data)
		if err != nil {
			wc.writeError("bad_request", err.Error(), false)
			continue
		}

		switch msg.Type {
		case MsgFrame:
			sess.HandleFrame(msg.Landmarks, time.Now())
		case MsgPause:
			sess.Pause(time.Now())
		case MsgResume:
			sess.Resume(time.Now())
		case MsgCancel:
			sess.Cancel()
			emitter.Flush()
			s.log.Info("session canceled", "session_id", sess.ID)
			return
		case MsgHello:
			wc.writeError("bad_request", "session already started", false)
		}
	}
}
