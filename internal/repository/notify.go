package repository

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"tender_chat/internal/domain"
	"tender_chat/pkg/logger"
)

// NotifyRepository ставит задачи для внешнего почтового сервиса. Сам чат
// письма не шлет: когда получатель оффлайн, задача уходит в очередь, дальше
// ее разбирает воркер нотификаций.
type NotifyRepository interface {
	EnqueueMessageNotice(ctx context.Context, notice *domain.MessageNotice) error
}

type notifyRepository struct {
	client   *asynq.Client
	taskType string
	log      logger.Logger
}

func NewNotifyRepository(client *asynq.Client, taskType string, log logger.Logger) NotifyRepository {
	return &notifyRepository{client: client, taskType: taskType, log: log}
}

func (r *notifyRepository) EnqueueMessageNotice(ctx context.Context, notice *domain.MessageNotice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return err
	}

	task := asynq.NewTask(r.taskType, payload)
	info, err := r.client.EnqueueContext(ctx, task, asynq.MaxRetry(5))
	if err != nil {
		r.log.Error("Failed to enqueue message notice", "error", err)
		return err
	}

	r.log.Debug("Message notice enqueued", "task_id", info.ID, "recipient_type", notice.RecipientType)
	return nil
}
