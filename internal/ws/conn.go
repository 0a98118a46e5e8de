package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"tender_chat/internal/domain"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxFrameSize   = 1 << 20
	sendBufferSize = 128
)

// Connection оборачивает websocket и выносит все записи в один writer через
// буферизованный канал. Безопасен для конкурентной отправки.
type Connection struct {
	ID        string
	Principal domain.Principal

	ws     *websocket.Conn
	send   chan []byte
	once   sync.Once
	closec chan struct{}
}

func NewConnection(p domain.Principal, ws *websocket.Conn) *Connection {
	return &Connection{
		ID:        uuid.NewString(),
		Principal: p,
		ws:        ws,
		send:      make(chan []byte, sendBufferSize),
		closec:    make(chan struct{}),
	}
}

// Start запускает writer. Вызывается ровно один раз на соединение.
func (c *Connection) Start() {
	go c.writeLoop()
}

// SendEvent сериализует кадр {event, data} и ставит его в очередь отправки
func (c *Connection) SendEvent(event string, data interface{}) error {
	payload, err := json.Marshal(outboundFrame{Event: event, Data: data})
	if err != nil {
		return err
	}
	return c.Send(payload)
}

// Send ставит кадр в очередь. Медленный клиент с переполненным буфером
// отключается, чтобы не блокировать рассылку остальным.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.closec:
		return errors.New("connection closed")
	default:
	}

	select {
	case <-c.closec:
		return errors.New("connection closed")
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return errors.New("connection buffer exceeded")
	}
}

// Close завершает соединение. Канал send не закрывается никогда:
// отправители могут держать ссылку на соединение после Close, writer
// выходит по closec.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.closec)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closec:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
