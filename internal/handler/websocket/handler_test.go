package websocket

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"collaborative-workspace/internal/domain"
	"collaborative-workspace/internal/hub"
	"collaborative-workspace/internal/presence"
	"collaborative-workspace/internal/repository/mocks"
	"collaborative-workspace/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]string

func (s stubVerifier) VerifyToken(token string) (string, error) {
	if userID, ok := s[token]; ok {
		return userID, nil
	}
	return "", errors.New("invalid token")
}

func newTestServer(t *testing.T) (*httptest.Server, *mocks.RoomRepository) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	userRepo := mocks.NewUserRepository(t)
	roomRepo := mocks.NewRoomRepository(t)
	fileRepo := mocks.NewFileRepository(t)
	folderRepo := mocks.NewFolderRepository(t)
	auth, err := service.NewAuthService(userRepo, "ws-test-secret", 1)
	require.NoError(t, err)

	h := hub.NewHub(hub.Services{
		Auth:  auth,
		Rooms: service.NewRoomService(roomRepo, userRepo, fileRepo, folderRepo, nil),
		Tree:  service.NewTreeService(folderRepo, fileRepo),
		Docs:  service.NewDocumentService(fileRepo, mocks.NewStateRepository(t), 0, time.Second),
		Chat:  service.NewChatService(mocks.NewConversationRepository(t), userRepo),
	}, presence.NewStore(), time.Second)
	go h.Run()
	t.Cleanup(h.Stop)

	r := gin.New()
	r.GET("/ws", NewWebSocketHandler(h, stubVerifier{"good": "alice"}, "").HandleConnection)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, roomRepo
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	var f frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestHandleConnection_InvalidTokenGetsAuthError(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, query := range []string{"", "?token=forged"} {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, query), nil)
		require.NoError(t, err)

		f := readFrame(t, conn)
		assert.Equal(t, "auth_error", f.Event)
		assert.JSONEq(t, `{"message":"Invalid token"}`, string(f.Data))

		_, _, err = conn.ReadMessage()
		assert.Error(t, err, "连接在 auth_error 之后被关闭")
		conn.Close()
	}
}

func TestHandleConnection_BindsIdentityAndServesCommands(t *testing.T) {
	srv, roomRepo := newTestServer(t)
	roomRepo.On("FindByMember", mock.Anything, "alice").
		Return([]domain.Room{{ID: "r1", Name: "Room", Members: []string{"alice"}}}, nil).Once()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "?token=good"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	f := readFrame(t, conn)
	assert.Equal(t, "error", f.Event)
	assert.JSONEq(t, `{"message":"Invalid message format"}`, string(f.Data))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"getMyRooms"}`)))
	f = readFrame(t, conn)
	assert.Equal(t, "myRoomsUpdate", f.Event)
	var rooms []map[string]interface{}
	require.NoError(t, json.Unmarshal(f.Data, &rooms))
	require.Len(t, rooms, 1)
	assert.Equal(t, "r1", rooms[0]["id"])
}

func TestHandleConnection_BearerHeader(t *testing.T) {
	srv, roomRepo := newTestServer(t)
	roomRepo.On("FindByMember", mock.Anything, "alice").Return(nil, nil).Once()

	header := map[string][]string{"Authorization": {"Bearer good"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"getMyRooms","data":{}}`)))
	f := readFrame(t, conn)
	assert.Equal(t, "myRoomsUpdate", f.Event)
	assert.JSONEq(t, `[]`, string(f.Data))
}
