// Package wslog implements client.QueryLogSink over a websocket fan-out: any
// number of subscriber connections can watch the GraphQL/WOQL calls a Client
// makes in real time.
package wslog

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"

	"github.com/terminusdb-labs/terminusdb-go/client"
	"github.com/terminusdb-labs/terminusdb-go/internal/common"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Sink fans out QueryLogRecord values to every connected websocket
// subscriber. A full queue drops the record rather than block the client
// operation that produced it.
type Sink struct {
	logger arbor.ILogger
	queue  chan client.QueryLogRecord

	mu      sync.RWMutex
	clients map[*websocket.Conn]*sync.Mutex
}

// NewSink starts a Sink with the given queue depth, draining records to
// subscribers on a panic-recovering background goroutine.
func NewSink(logger arbor.ILogger, queueDepth int) *Sink {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	s := &Sink{
		logger:  logger,
		queue:   make(chan client.QueryLogRecord, queueDepth),
		clients: make(map[*websocket.Conn]*sync.Mutex),
	}
	common.SafeGo(logger, "wslog.Sink.drain", s.drain)
	return s
}

// Record implements client.QueryLogSink.
func (s *Sink) Record(rec client.QueryLogRecord) {
	select {
	case s.queue <- rec:
	default:
		s.logger.Debug().Str("endpoint", rec.Endpoint).Msg("wslog: queue full, dropping record")
	}
}

func (s *Sink) drain() {
	for rec := range s.queue {
		s.broadcast(rec)
	}
}

// HandleWebSocket upgrades r and registers the connection as a subscriber
// until it disconnects.
func (s *Sink) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("wslog: failed to upgrade connection")
		return
	}

	s.mu.Lock()
	s.clients[conn] = &sync.Mutex{}
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *Sink) broadcast(rec client.QueryLogRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn().Err(err).Msg("wslog: failed to marshal record")
		return
	}

	s.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	mutexes := make([]*sync.Mutex, 0, len(s.clients))
	for conn, mu := range s.clients {
		conns = append(conns, conn)
		mutexes = append(mutexes, mu)
	}
	s.mu.RUnlock()

	for i, conn := range conns {
		mutexes[i].Lock()
		err := conn.WriteMessage(websocket.TextMessage, data)
		mutexes[i].Unlock()
		if err != nil {
			s.logger.Warn().Err(err).Msg("wslog: failed to send record to subscriber")
		}
	}
}

// Close stops accepting new records and drains the queue.
func (s *Sink) Close() {
	close(s.queue)
}
