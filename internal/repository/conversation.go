package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tender_chat/internal/domain"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

type ConversationFilter struct {
	DealershipID string // пусто - без ограничения по дилеру (админ)
	ViewerType   string
	Archived     *bool
}

type ConversationRepository interface {
	GetByPair(ctx context.Context, tenderID, dealershipID string) (*domain.Conversation, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error)
	Create(ctx context.Context, conv *domain.Conversation) error
	AppendMessage(ctx context.Context, tenderID, dealershipID string, msg *domain.Message) (*domain.Conversation, error)
	MarkMessagesRead(ctx context.Context, tenderID, dealershipID, readerType string, readAt time.Time) (int, error)
	List(ctx context.Context, filter ConversationFilter) ([]*domain.Conversation, error)
	SetArchived(ctx context.Context, id primitive.ObjectID, partyType string, archived bool) error
}

type conversationRepository struct {
	col      *mongo.Collection
	tenantID string
	log      logger.Logger
}

func NewConversationRepository(db *mongo.Database, tenantID string, log logger.Logger) ConversationRepository {
	return &conversationRepository{
		col:      db.Collection("conversations"),
		tenantID: tenantID,
		log:      log,
	}
}

func (r *conversationRepository) GetByPair(ctx context.Context, tenderID, dealershipID string) (*domain.Conversation, error) {
	filter := bson.M{"tender_id": tenderID, "dealership_id": dealershipID}

	var conv domain.Conversation
	err := r.col.FindOne(ctx, filter).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation", "tender_id", tenderID, "dealership_id", dealershipID, "error", err)
		return nil, apperrors.Store("conversations.get", err)
	}

	return &conv, nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to get conversation by id", "conversation_id", id.Hex(), "error", err)
		return nil, apperrors.Store("conversations.get_by_id", err)
	}

	return &conv, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	conv.TenantID = r.tenantID

	res, err := r.col.InsertOne(ctx, conv)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Параллельный создатель успел первым
			return apperrors.ErrConversationExists
		}
		r.log.Error("Failed to create conversation", "tender_id", conv.TenderID, "dealership_id", conv.DealershipID, "error", err)
		return apperrors.Store("conversations.insert", err)
	}

	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		conv.ID = oid
	}
	return nil
}

// AppendMessage дописывает сообщение одним атомарным обновлением: push в
// массив, инкремент счетчика противоположной стороны, last_message_at.
// Конкурентные отправители сериализуются на уровне документа, оба сообщения
// остаются в массиве.
func (r *conversationRepository) AppendMessage(ctx context.Context, tenderID, dealershipID string, msg *domain.Message) (*domain.Conversation, error) {
	unreadField := "unread_count_dealership"
	if domain.OppositeParty(msg.SenderType) == domain.PrincipalTypeAdmin {
		unreadField = "unread_count_admin"
	}

	filter := bson.M{"tender_id": tenderID, "dealership_id": dealershipID}
	update := bson.M{
		"$push": bson.M{"messages": msg},
		"$inc":  bson.M{unreadField: 1},
		"$set":  bson.M{"last_message_at": msg.CreatedAt, "updated_at": msg.CreatedAt},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conv domain.Conversation
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to append message", "tender_id", tenderID, "dealership_id", dealershipID, "error", err)
		return nil, apperrors.Store("conversations.append", err)
	}

	return &conv, nil
}

// MarkMessagesRead помечает прочитанными все входящие сообщения читателя и
// обнуляет его счетчик одним обновлением. Возвращает число помеченных.
func (r *conversationRepository) MarkMessagesRead(ctx context.Context, tenderID, dealershipID, readerType string, readAt time.Time) (int, error) {
	senderType := domain.OppositeParty(readerType)

	unreadField := "unread_count_admin"
	if readerType == domain.PrincipalTypeDealership {
		unreadField = "unread_count_dealership"
	}

	filter := bson.M{"tender_id": tenderID, "dealership_id": dealershipID}
	update := bson.M{
		"$set": bson.M{
			"messages.$[m].is_read": true,
			"messages.$[m].read_at": readAt,
			unreadField:             0,
			"updated_at":            readAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetArrayFilters(options.ArrayFilters{Filters: []interface{}{
			bson.M{"m.sender_type": senderType, "m.is_read": false},
		}}).
		SetReturnDocument(options.Before)

	var before domain.Conversation
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, apperrors.ErrConversationNotFound
		}
		r.log.Error("Failed to mark messages read", "tender_id", tenderID, "dealership_id", dealershipID, "error", err)
		return 0, apperrors.Store("conversations.mark_read", err)
	}

	count := 0
	for i := range before.Messages {
		if before.Messages[i].SenderType == senderType && !before.Messages[i].IsRead {
			count++
		}
	}
	return count, nil
}

func (r *conversationRepository) List(ctx context.Context, f ConversationFilter) ([]*domain.Conversation, error) {
	filter := bson.M{}
	if f.DealershipID != "" {
		filter["dealership_id"] = f.DealershipID
	}
	if f.Archived != nil {
		field := "archived_by_admin"
		if f.ViewerType == domain.PrincipalTypeDealership {
			field = "archived_by_dealership"
		}
		filter[field] = *f.Archived
	}

	// В списке нужны только превью: последнее сообщение и счетчики
	opts := options.Find().
		SetSort(bson.D{{Key: "last_message_at", Value: -1}}).
		SetProjection(bson.M{"messages": bson.M{"$slice": -1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		r.log.Error("Failed to list conversations", "error", err)
		return nil, apperrors.Store("conversations.list", err)
	}

	var out []*domain.Conversation
	if err := cursor.All(ctx, &out); err != nil {
		r.log.Error("Failed to decode conversations", "error", err)
		return nil, apperrors.Store("conversations.list_decode", err)
	}

	return out, nil
}

func (r *conversationRepository) SetArchived(ctx context.Context, id primitive.ObjectID, partyType string, archived bool) error {
	field := "archived_by_admin"
	if partyType == domain.PrincipalTypeDealership {
		field = "archived_by_dealership"
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{field: archived, "updated_at": time.Now()},
	})
	if err != nil {
		r.log.Error("Failed to set archived flag", "conversation_id", id.Hex(), "error", err)
		return apperrors.Store("conversations.set_archived", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrConversationNotFound
	}

	return nil
}
