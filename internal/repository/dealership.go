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

type DealershipRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Dealership, error)
}

type dealershipRepository struct {
	col *mongo.Collection
	log logger.Logger
}

func NewDealershipRepository(db *mongo.Database, log logger.Logger) DealershipRepository {
	return &dealershipRepository{col: db.Collection("dealerships"), log: log}
}

func (r *dealershipRepository) GetByID(ctx context.Context, id string) (*domain.Dealership, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.ErrDealershipNotFound
	}

	var dealership domain.Dealership
	err = r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&dealership)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrDealershipNotFound
		}
		r.log.Error("Failed to get dealership", "dealership_id", id, "error", err)
		return nil, apperrors.Store("dealerships.get", err)
	}

	return &dealership, nil
}
