package ws

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"

	"tender_chat/internal/domain"
	"tender_chat/pkg/logger"
)

func TestHub_RoomMembership(t *testing.T) {
	hub := NewHub(logger.New("error", "test"))
	c := newServerConn(t)
	hub.Register(c)

	room := domain.ConversationRoom("t1", "d1")
	group := domain.GroupRoom(domain.PrincipalTypeAdmin, "tn", "")
	assert.False(t, hub.InRoom(c, room))

	hub.Join(c, room)
	assert.True(t, hub.InRoom(c, room))

	hub.Leave(c, room)
	assert.False(t, hub.InRoom(c, room))

	// Unregister снимает сокет со всех комнат разом
	hub.Join(c, room)
	hub.Join(c, group)
	hub.Unregister(c)
	assert.False(t, hub.InRoom(c, room))
	assert.False(t, hub.InRoom(c, group))
}

func TestHub_BroadcastSurvivesClosedMember(t *testing.T) {
	hub := NewHub(logger.New("error", "test"))

	a := newServerConn(t)
	b := newServerConn(t)
	hub.Register(a)
	hub.Register(b)

	room := domain.ConversationRoom("t1", "d1")
	hub.Join(a, room)
	hub.Join(b, room)

	// Сокет b закрылся (например, по переполнению буфера), но еще числится
	// в комнате: рассылка доставляет живым и не падает
	b.Close(websocket.CloseGoingAway, "send buffer full")

	for i := 0; i < 40; i++ {
		delivered := hub.BroadcastToRoom(room, "", EventNewMessage, map[string]string{"tenderId": "t1"})
		assert.Equal(t, 1, delivered)
	}
}
