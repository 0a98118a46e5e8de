package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Conversation - переписка по паре (тендер, дилер). Одна на пару внутри
// тенанта, сообщения встроены в документ.
type Conversation struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TenantID              string             `bson:"tenant_id" json:"tenantId"`
	TenderID              string             `bson:"tender_id" json:"tenderId"`
	DealershipID          string             `bson:"dealership_id" json:"dealershipId"`
	Messages              []Message          `bson:"messages" json:"messages"`
	UnreadCountAdmin      int                `bson:"unread_count_admin" json:"unreadCountAdmin"`
	UnreadCountDealership int                `bson:"unread_count_dealership" json:"unreadCountDealership"`
	LastMessageAt         *time.Time         `bson:"last_message_at,omitempty" json:"lastMessageAt,omitempty"`
	ArchivedByAdmin       bool               `bson:"archived_by_admin" json:"archivedByAdmin"`
	ArchivedByDealership  bool               `bson:"archived_by_dealership" json:"archivedByDealership"`
	CreatedAt             time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt             time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Message - элемент переписки, append-only. После записи меняются только
// is_read и read_at, и только в одну сторону.
type Message struct {
	ID          string     `bson:"_id" json:"id"`
	SenderID    string     `bson:"sender_id" json:"senderId"`
	SenderType  string     `bson:"sender_type" json:"senderType"`
	SenderName  string     `bson:"sender_name" json:"senderName"`
	MessageType string     `bson:"message_type" json:"messageType"`
	Content     string     `bson:"content" json:"content"`
	FileURL     string     `bson:"file_url,omitempty" json:"fileUrl,omitempty"`
	FileKey     string     `bson:"file_key,omitempty" json:"fileKey,omitempty"`
	FileSize    int64      `bson:"file_size,omitempty" json:"fileSize,omitempty"`
	FileType    string     `bson:"file_type,omitempty" json:"fileType,omitempty"`
	FileName    string     `bson:"file_name,omitempty" json:"fileName,omitempty"`
	IsRead      bool       `bson:"is_read" json:"isRead"`
	ReadAt      *time.Time `bson:"read_at,omitempty" json:"readAt,omitempty"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
}

const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeVideo = "video"
	MessageTypeFile  = "file"
	MessageTypeAudio = "audio"
)

// UnreadFor возвращает счетчик непрочитанного для стороны
func (c *Conversation) UnreadFor(partyType string) int {
	if partyType == PrincipalTypeAdmin {
		return c.UnreadCountAdmin
	}
	return c.UnreadCountDealership
}

// ArchivedFor возвращает флаг архивации для стороны
func (c *Conversation) ArchivedFor(partyType string) bool {
	if partyType == PrincipalTypeAdmin {
		return c.ArchivedByAdmin
	}
	return c.ArchivedByDealership
}

// LastMessage возвращает последнее сообщение или nil для пустой переписки
func (c *Conversation) LastMessage() *Message {
	if len(c.Messages) == 0 {
		return nil
	}
	return &c.Messages[len(c.Messages)-1]
}
