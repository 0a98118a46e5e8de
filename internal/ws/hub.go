package ws

import (
	"encoding/json"
	"sync"

	"tender_chat/pkg/logger"
)

// Hub ведет комнаты и рассылку внутри одного процесса. Один пользователь
// может держать несколько сокетов (вкладки), поэтому исключение при
// рассылке идет по id сокета, а не по пользователю.
type Hub struct {
	mu        sync.RWMutex
	conns     map[string]*Connection            // socketID -> соединение
	rooms     map[string]map[string]*Connection // комната -> socketID -> соединение
	connRooms map[string]map[string]struct{}    // socketID -> комнаты

	log logger.Logger
}

func NewHub(log logger.Logger) *Hub {
	return &Hub{
		conns:     make(map[string]*Connection),
		rooms:     make(map[string]map[string]*Connection),
		connRooms: make(map[string]map[string]struct{}),
		log:       log,
	}
}

func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.connRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()
}

// Unregister снимает соединение со всех комнат и убирает его из хаба
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	if _, ok := h.conns[conn.ID]; ok {
		for room := range h.connRooms[conn.ID] {
			h.leaveLocked(room, conn.ID)
		}
		delete(h.connRooms, conn.ID)
		delete(h.conns, conn.ID)
	}
	h.mu.Unlock()
}

func (h *Hub) Join(conn *Connection, room string) {
	h.mu.Lock()
	if _, ok := h.conns[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}

	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		h.rooms[room] = members
	}
	members[conn.ID] = conn

	memberships := h.connRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.connRooms[conn.ID] = memberships
	}
	memberships[room] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) Leave(conn *Connection, room string) {
	h.mu.Lock()
	h.leaveLocked(room, conn.ID)
	h.mu.Unlock()
}

// InRoom сообщает, состоит ли сокет в комнате
func (h *Hub) InRoom(conn *Connection, room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][conn.ID]
	return ok
}

// BroadcastToRoom шлет кадр всем участникам комнаты, кроме excludeSocketID
// (пустая строка - без исключений). Возвращает число доставок.
func (h *Hub) BroadcastToRoom(room, excludeSocketID, event string, data interface{}) int {
	payload, err := json.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		h.log.Error("Failed to marshal broadcast frame", "event", event, "error", err)
		return 0
	}

	h.mu.RLock()
	members := h.rooms[room]
	if len(members) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for id, conn := range members {
		if excludeSocketID != "" && id == excludeSocketID {
			continue
		}
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()

	return delivered
}

// Close завершает все соединения, используется при остановке сервера
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.conns))
	for _, conn := range h.conns {
		conns = append(conns, conn)
	}
	h.conns = make(map[string]*Connection)
	h.rooms = make(map[string]map[string]*Connection)
	h.connRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "server shutdown")
	}
}

func (h *Hub) leaveLocked(room, socketID string) {
	members := h.rooms[room]
	if members == nil {
		return
	}
	delete(members, socketID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
	if memberships, ok := h.connRooms[socketID]; ok {
		delete(memberships, room)
	}
}
