package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"notes-service/models"
)

func dialNotes(t *testing.T, server *httptest.Server, user, password string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/notes/ws"
	header := http.Header{}
	if user != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
		header.Set("Authorization", "Basic "+auth)
	}
	return websocket.DefaultDialer.Dial(url, header)
}

func TestWebSocket_OwnerReceivesOwnNotesOnly(t *testing.T) {
	deps := newTestDeps()
	deps.Hub = NewHub()
	server := httptest.NewServer(newTestRouter(deps))
	defer server.Close()

	aliceConn, _, err := dialNotes(t, server, "alice", "alice-pw")
	require.NoError(t, err)
	defer aliceConn.Close()

	bobConn, _, err := dialNotes(t, server, "bob", "bob-pw")
	require.NoError(t, err)
	defer bobConn.Close()

	require.Eventually(t, func() bool {
		return deps.Hub.Count("alice") == 1 && deps.Hub.Count("bob") == 1
	}, time.Second, 10*time.Millisecond)

	rec := submit(server.Config.Handler, "alice", "alice-pw", "Hello world")
	require.Equal(t, http.StatusOK, rec.Code)

	aliceConn.SetReadDeadline(time.Now().Add(time.Second))
	var msg struct {
		Type    string      `json:"type"`
		Payload models.Note `json:"payload"`
	}
	_, data, err := aliceConn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, models.WSNoteCreated, msg.Type)
	assert.Equal(t, models.Note{ID: 1, Content: "Hello world", Owner: "alice"}, msg.Payload)

	bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err)
}

func TestWebSocket_RequiresCredentials(t *testing.T) {
	deps := newTestDeps()
	deps.Hub = NewHub()
	server := httptest.NewServer(newTestRouter(deps))
	defer server.Close()

	_, resp, err := dialNotes(t, server, "alice", "wrong")
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestWebSocket_UnregisterOnClose(t *testing.T) {
	deps := newTestDeps()
	deps.Hub = NewHub()
	server := httptest.NewServer(newTestRouter(deps))
	defer server.Close()

	conn, _, err := dialNotes(t, server, "carol", "carol-pw")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return deps.Hub.Count("carol") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return deps.Hub.Count("carol") == 0 }, time.Second, 10*time.Millisecond)
}

func TestWebSocket_StalledClientDoesNotBlockSubmits(t *testing.T) {
	deps := newTestDeps()
	deps.Hub = NewHub()
	deps.Hub.writeWait = 2 * time.Second
	server := httptest.NewServer(newTestRouter(deps))
	defer server.Close()

	// alice apre il socket e non legge mai
	stalled, _, err := dialNotes(t, server, "alice", "alice-pw")
	require.NoError(t, err)
	defer stalled.Close()
	require.Eventually(t, func() bool { return deps.Hub.Count("alice") == 1 }, time.Second, 10*time.Millisecond)

	content := strings.Repeat("a", 1<<20)
	aliceDone := make(chan struct{})
	go func() {
		defer close(aliceDone)
		for i := 0; i < 64 && deps.Hub.Count("alice") > 0; i++ {
			submit(server.Config.Handler, "alice", "alice-pw", content)
		}
	}()

	time.Sleep(500 * time.Millisecond)

	bobDone := make(chan int, 1)
	go func() {
		bobDone <- submit(server.Config.Handler, "bob", "bob-pw", "Hello world").Code
	}()

	select {
	case code := <-bobDone:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(time.Second):
		t.Fatal("la POST di bob è rimasta bloccata")
	}

	select {
	case <-aliceDone:
	case <-time.After(30 * time.Second):
		t.Fatal("le POST di alice sono rimaste bloccate")
	}
	assert.Zero(t, deps.Hub.Count("alice"))
}
