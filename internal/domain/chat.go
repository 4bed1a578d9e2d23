package domain

import "fmt"

// ChatEvent - событие, влияющее на статус участия в чате.
type ChatEvent int

const (
	// ChatOpened - пользователь сам открыл переписку.
	ChatOpened ChatEvent = iota
	// ChatClosedByUser - явное закрытие переписки пользователем.
	ChatClosedByUser
	// MessageReceived - в чат пришло новое сообщение.
	MessageReceived
)

func (e ChatEvent) String() string {
	switch e {
	case ChatOpened:
		return "opened"
	case ChatClosedByUser:
		return "closed"
	case MessageReceived:
		return "message"
	default:
		return fmt.Sprintf("ChatEvent(%d)", int(e))
	}
}

// Next возвращает статус участия после события.
// CLOSE_CHAT достигается только явным закрытием; любое новое сообщение снова открывает чат.
// Конечного состояния нет.
func (s ChatStatus) Next(e ChatEvent) ChatStatus {
	switch e {
	case ChatClosedByUser:
		return ChatClosed
	case ChatOpened, MessageReceived:
		return ChatOpen
	default:
		return s
	}
}
