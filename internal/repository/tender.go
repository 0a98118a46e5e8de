package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"tender_chat/internal/domain"
	apperrors "tender_chat/pkg/errors"
	"tender_chat/pkg/logger"
)

type TenderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Tender, error)
}

type tenderRepository struct {
	col *mongo.Collection
	log logger.Logger
}

func NewTenderRepository(db *mongo.Database, log logger.Logger) TenderRepository {
	return &tenderRepository{col: db.Collection("tenders"), log: log}
}

func (r *tenderRepository) GetByID(ctx context.Context, id string) (*domain.Tender, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrTenderNotFound
	}

	var tender domain.Tender
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&tender)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrTenderNotFound
		}
		r.log.Error("Failed to get tender", "tender_id", id, "error", err)
		return nil, apperrors.Store("tenders.get", err)
	}

	return &tender, nil
}
