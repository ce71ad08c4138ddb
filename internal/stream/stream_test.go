package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"grayscott/internal/driver"
)

func snap(step int) driver.Snapshot {
	return driver.Snapshot{
		Step: step, Total: 10, Rows: 2, Cols: 2,
		U: []float64{1, 0.5, 0.25, 1},
		V: []float64{0, 0.25, 0.5, 0},
	}
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitClients(t *testing.T, s *Server, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for s.Clients() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients=%d, want %d", s.Clients(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatal(err)
	}
	var f Frame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read: %v", err)
	}
	return f
}

func TestBroadcastReachesClients(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	a, b := dial(t, srv), dial(t, srv)
	waitClients(t, s, 2)

	if err := s.Consume(context.Background(), snap(3)); err != nil {
		t.Fatal(err)
	}
	for _, conn := range []*websocket.Conn{a, b} {
		f := readFrame(t, conn)
		if f.Type != "frame" || f.Step != 3 || f.Total != 10 || len(f.U) != 4 {
			t.Fatalf("frame %+v", f)
		}
		if f.U[1] != 0.5 || f.UStat.Min != 0.25 || f.VStat.Max != 0.5 {
			t.Fatalf("frame payload %+v", f)
		}
	}
}

func TestLateClientGetsLatestFrame(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	if err := s.Consume(context.Background(), snap(7)); err != nil {
		t.Fatal(err)
	}
	conn := dial(t, srv)
	if f := readFrame(t, conn); f.Step != 7 {
		t.Fatalf("initial frame step %d", f.Step)
	}
}

func TestClientRemovedOnClose(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	waitClients(t, s, 1)
	conn.Close()
	waitClients(t, s, 0)
}

func TestSnapshotEndpoint(t *testing.T) {
	s := NewServer(nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status %d before any frame", resp.StatusCode)
	}

	if err := s.Consume(context.Background(), snap(5)); err != nil {
		t.Fatal(err)
	}
	resp, err = http.Get(srv.URL + "/snapshot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var f Frame
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		t.Fatal(err)
	}
	if f.Step != 5 || f.Rows != 2 {
		t.Fatalf("snapshot %+v", f)
	}
}
