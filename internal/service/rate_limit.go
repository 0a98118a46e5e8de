package service

import (
	"context"
	"time"

	"tender_chat/internal/repository"
	"tender_chat/pkg/logger"
)

type RateLimitService interface {
	Allow(ctx context.Context, key string, limit int, windowSeconds int) (bool, int, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, key string, limit int, windowSeconds int) (bool, int, error) {
	return s.rateLimitRepo.Allow(ctx, key, limit, time.Duration(windowSeconds)*time.Second)
}
