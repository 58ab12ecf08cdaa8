package service

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
	"tutorhub_backend/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = (feedPongWait * 9) / 10
	feedSendBuffer = 32
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// FeedEvent is pushed to the owning tutor whenever a submission is stored.
type FeedEvent struct {
	AssignmentID      string    `json:"assignmentId"`
	SubmissionID      string    `json:"submissionId"`
	StudentName       string    `json:"studentName"`
	StudentID         *string   `json:"studentId,omitempty"`
	Score             int       `json:"score"`
	MaxScore          int       `json:"maxScore"`
	IsGuestSubmission bool      `json:"isGuestSubmission"`
	SubmittedAt       time.Time `json:"submittedAt"`
}

type feedMessage struct {
	Type string    `json:"type"`
	Data FeedEvent `json:"data"`
}

// ResultsFeed receives stored submissions. Publishing never blocks the caller.
type ResultsFeed interface {
	Publish(tutorID uint, ev FeedEvent)
}

type feedClient struct {
	hub     *ResultsHub
	conn    *websocket.Conn
	send    chan []byte
	tutorID uint
}

// ResultsHub fans submission events out to the tutor's open dashboards on this node.
type ResultsHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*feedClient]struct{}
}

func NewResultsHub() *ResultsHub {
	return &ResultsHub{clients: make(map[uint]map[*feedClient]struct{})}
}

func (h *ResultsHub) register(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.tutorID]
	if !ok {
		set = make(map[*feedClient]struct{})
		h.clients[c.tutorID] = set
	}
	set[c] = struct{}{}
}

func (h *ResultsHub) unregister(c *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.tutorID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.tutorID)
	}
}

// Subscribers reports how many dashboards a tutor has open.
func (h *ResultsHub) Subscribers(tutorID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[tutorID])
}

func (h *ResultsHub) Publish(tutorID uint, ev FeedEvent) {
	payload, err := json.Marshal(feedMessage{Type: "SUBMISSION", Data: ev})
	if err != nil {
		logger.Log.Error("Feed marshal failed", zap.Error(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[tutorID] {
		select {
		case c.send <- payload:
		default:
			// 慢连接直接丢弃
			logger.Log.Debug("Feed client lagging, event dropped", zap.Uint("tutor_id", tutorID))
		}
	}
}

// ServeFeed upgrades the request and streams events for tutorID until the socket closes.
func ServeFeed(h *ResultsHub, w http.ResponseWriter, r *http.Request, tutorID uint) {
	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Warn("Feed upgrade failed", zap.Error(err))
		return
	}
	c := &feedClient{hub: h, conn: conn, send: make(chan []byte, feedSendBuffer), tutorID: tutorID}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

// readPump only drains control frames; the feed is one-way.
func (c *feedClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Info("Feed closed unexpectedly", zap.Error(err), zap.Uint("tutor_id", c.tutorID))
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
