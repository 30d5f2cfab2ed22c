package server

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/appinstall/internal/flow"
	"github.com/muurk/appinstall/internal/logging"
	"github.com/muurk/appinstall/internal/loop"
	"github.com/muurk/appinstall/internal/operation"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next message or pong from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

// errConnectionLost is returned by send after a write has failed once
var errConnectionLost = errors.New("widget connection lost")

// session is one attached widget. Every field except conn's read side is
// owned by the session loop.
type session struct {
	id     string
	remote string
	conn   *websocket.Conn
	loop   *loop.Loop
	ctrl   *flow.Controller
	broken bool
}

func newSession(conn *websocket.Conn, remote string) *session {
	return &session{
		id:     uuid.NewString(),
		remote: remote,
		conn:   conn,
		loop:   loop.New(),
	}
}

// serve runs the session until the connection closes
func (s *session) serve(ctx context.Context, config *Config) {
	go func() {
		// Only Stop ends the loop, so the detach below always runs
		_ = s.loop.Run(context.Background())
	}()
	defer s.detach()

	if err := s.loop.Do(ctx, func() { s.attach(ctx, config) }); err != nil {
		logging.Warn("Failed to attach widget",
			zap.String("remote_addr", s.remote),
			zap.Error(err),
		)
		return
	}

	stop := make(chan struct{})
	defer close(stop)
	go s.keepAlive(stop)

	s.readMessages()
}

// attach creates the controller. Runs on the loop.
func (s *session) attach(ctx context.Context, config *Config) {
	post := operation.Poster(func(fn func()) {
		if !s.loop.Post(fn) {
			logging.Debug("Completion dropped after detach", zap.String("instance", s.id))
		}
	})

	var nav flow.Navigator = s
	if config.Navigator != nil {
		nav = config.Navigator(s)
	}

	s.ctrl = flow.New(flow.Options{
		ID:               s.id,
		App:              config.App,
		Renderer:         s,
		Notifier:         s,
		Navigator:        nav,
		Gate:             config.Gate,
		Operations:       config.Operations(post),
		OperationTimeout: config.OperationTimeout,
		Logger:           logging.GetLogger().With(zap.String("remote_addr", s.remote)),
	})

	if err := s.ctrl.RefreshGate(ctx); err != nil {
		_ = s.send(errorMessage("install permission unavailable: " + err.Error()))
	}
}

// detach closes the controller on the loop and waits for the loop to exit
func (s *session) detach() {
	closeCtrl := func() {
		if s.ctrl != nil {
			s.ctrl.Close()
		}
	}
	if s.loop.Post(closeCtrl) {
		s.loop.Stop()
		<-s.loop.Done()
	} else {
		<-s.loop.Done()
		closeCtrl()
	}
	_ = s.conn.Close()
	logging.LogConnection(s.remote, "widget_detached")
}

func (s *session) readMessages() {
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Connection closed unexpectedly",
					zap.String("remote_addr", s.remote),
					zap.Error(err),
				)
			} else {
				logging.Debug("Connection closed",
					zap.String("remote_addr", s.remote),
					zap.Error(err),
				)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
		logging.LogWebSocketMessage(s.remote, "received", data)

		s.loop.Post(s.handlerFor(data))
	}
}

// handlerFor decodes one client message into work for the loop
func (s *session) handlerFor(data []byte) func() {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return func() { _ = s.send(errorMessage("malformed message")) }
	}

	switch in.Type {
	case TypeActivate:
		return func() {
			if err := s.ctrl.Activate(); err != nil {
				_ = s.send(errorMessage(err.Error()))
			}
		}
	case TypePing:
		return func() { _ = s.send(Outbound{Type: TypePong}) }
	default:
		return func() { _ = s.send(errorMessage("unsupported message type: " + in.Type)) }
	}
}

func (s *session) keepAlive(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.loop.Post(func() {
				if s.broken {
					return
				}
				if err := s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					s.broken = true
				}
			})
		}
	}
}

// send writes one message. Runs on the loop.
func (s *session) send(msg Outbound) error {
	if s.broken {
		return errConnectionLost
	}
	msg.Instance = s.id

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.broken = true
		logging.Warn("Failed to write to widget",
			zap.String("remote_addr", s.remote),
			zap.Error(err),
		)
		return err
	}
	logging.LogWebSocketMessage(s.remote, "sent", data)
	return nil
}

// Render implements flow.Renderer
func (s *session) Render(state flow.State, payload flow.Payload) {
	_ = s.send(renderMessage(state, payload))
}

// Focus implements flow.Focuser
func (s *session) Focus() {
	_ = s.send(Outbound{Type: TypeFocus})
}

// Notify implements flow.Notifier
func (s *session) Notify(n flow.Notice) {
	_ = s.send(noticeMessage(n))
}

// Open implements flow.Navigator by asking the client to navigate
func (s *session) Open(url string) error {
	return s.send(Outbound{Type: TypeNavigate, URL: url})
}
