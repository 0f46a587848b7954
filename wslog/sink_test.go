package wslog

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/terminusdb-labs/terminusdb-go/client"
)

func TestSinkBroadcastsToMultipleSubscribers(t *testing.T) {
	sink := NewSink(arbor.NewLogger(), 16)
	defer sink.Close()

	server := httptest.NewServer(http.HandlerFunc(sink.HandleWebSocket))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	const numSubscribers = 3
	received := make([][]client.QueryLogRecord, numSubscribers)
	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(numSubscribers)

	conns := make([]*websocket.Conn, numSubscribers)
	for i := 0; i < numSubscribers; i++ {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		conns[i] = conn

		idx := i
		go func() {
			defer wg.Done()
			var rec client.QueryLogRecord
			if err := conn.ReadJSON(&rec); err != nil {
				return
			}
			mu.Lock()
			received[idx] = append(received[idx], rec)
			mu.Unlock()
		}()
	}
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()

	time.Sleep(50 * time.Millisecond) // let subscribers register
	sink.Record(client.QueryLogRecord{Endpoint: "woql", DB: "mydb", Query: "select", Success: true})

	wg.Wait()
	for i, recs := range received {
		require.Lenf(t, recs, 1, "subscriber %d", i)
		require.Equal(t, "woql", recs[0].Endpoint)
	}
}

func TestSinkDropsRecordWhenQueueFull(t *testing.T) {
	sink := &Sink{logger: arbor.NewLogger(), queue: make(chan client.QueryLogRecord, 1), clients: make(map[*websocket.Conn]*sync.Mutex)}
	sink.Record(client.QueryLogRecord{Endpoint: "first"})
	sink.Record(client.QueryLogRecord{Endpoint: "second"})
	require.Len(t, sink.queue, 1)
}
