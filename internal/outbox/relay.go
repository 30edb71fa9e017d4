package outbox

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"resume-match-go/internal/constants"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/storage/models"
	"resume-match-go/internal/tracing"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultPollingInterval = 5 * time.Second // 轮询outbox表的间隔
	defaultBatchSize       = 10              // 每次轮询处理的消息批量大小
	maxRetryCount          = 5               // 消息发布失败的最大重试次数
	publishConfirmTimeout  = 5 * time.Second // 等待broker发布确认的超时
)

// MessageRelay 轮询outbox表并把待投递消息发布到消息代理。
// 业务写库与消息入表在同一事务中完成，投递由本服务异步兜底，
// 保证"写库成功但消息丢失"不会发生。
type MessageRelay struct {
	db              *gorm.DB
	publisher       *storage.RabbitMQ
	logger          *log.Logger
	pollingInterval time.Duration
	batchSize       int
	done            chan struct{}
	tracer          trace.Tracer
}

// NewMessageRelay 创建消息中继实例
func NewMessageRelay(db *gorm.DB, publisher *storage.RabbitMQ, logger *log.Logger) *MessageRelay {
	return &MessageRelay{
		db:              db,
		publisher:       publisher,
		logger:          logger,
		pollingInterval: defaultPollingInterval,
		batchSize:       defaultBatchSize,
		done:            make(chan struct{}),
		tracer:          otel.Tracer("resume-match-go/outbox"),
	}
}

// Start 启动后台轮询
func (r *MessageRelay) Start() {
	r.logger.Println("MessageRelay starting...")
	ticker := time.NewTicker(r.pollingInterval)

	go func() {
		for {
			select {
			case <-r.done:
				ticker.Stop()
				r.logger.Println("MessageRelay stopped.")
				return
			case <-ticker.C:
				if err := r.processPendingMessages(context.Background()); err != nil {
					r.logger.Printf("Error processing pending messages: %v", err)
				}
			}
		}
	}()
}

// Stop 停止轮询，已在处理中的批次会完成后退出
func (r *MessageRelay) Stop() {
	r.logger.Println("MessageRelay stopping...")
	close(r.done)
}

// processPendingMessages 取出一批PENDING消息并逐条发布。
// 查询本身不开Span，避免空轮询产生大量无意义的追踪数据。
func (r *MessageRelay) processPendingMessages(ctx context.Context) error {
	var messages []models.OutboxMessage

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	defer tx.Rollback()

	// FOR UPDATE SKIP LOCKED 允许多实例并行消费，已被其他事务锁定的行直接跳过
	err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", constants.OutboxStatusPending).
		Order("created_at asc").
		Limit(r.batchSize).
		Find(&messages).Error

	if err != nil {
		r.logger.Printf("Failed to fetch pending outbox messages: %v", err)
		return err
	}

	if len(messages) == 0 {
		return tx.Commit().Error
	}

	ctx, span := r.tracer.Start(ctx, "outbox.ProcessBatch",
		trace.WithAttributes(
			attribute.Int("messaging.batch.message_count", len(messages)),
		),
	)
	defer span.End()

	r.logger.Printf("Fetched %d pending messages to process.", len(messages))

	for _, msg := range messages {
		// confirm模式投递，只有broker确认后才标记SENT
		err := r.publisher.PublishMessageWithConfirm(
			ctx,
			msg.TargetExchange,
			msg.TargetRoutingKey,
			[]byte(msg.Payload),
			publishConfirmTimeout,
		)

		if err != nil {
			r.logger.Printf("Failed to publish message ID %d (AggregateID: %s): %v. Retries: %d", msg.ID, msg.AggregateID, err, msg.RetryCount+1)
			msgID := strconv.FormatUint(msg.ID, 10)
			switch {
			case errors.Is(err, storage.ErrPublishNacked):
				tracing.RecordRabbitMQNack(span, msgID, err.Error())
			case errors.Is(err, storage.ErrPublishConfirmTimeout):
				tracing.RecordRabbitMQTimeout(span, msgID, publishConfirmTimeout.String())
			default:
				tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeRabbitMQ,
					attribute.String("outbox.aggregate_id", msg.AggregateID),
					attribute.String("outbox.event_type", msg.EventType),
				)
			}
			msg.RetryCount++
			msg.ErrorMessage = err.Error()
			if msg.RetryCount >= maxRetryCount {
				msg.Status = constants.OutboxStatusFailed
			}
		} else {
			msg.Status = constants.OutboxStatusSent
			now := time.Now()
			msg.ProcessedAt = &now
			msg.ErrorMessage = ""
		}

		// 状态更新失败会回滚整批，消息保持PENDING，下次轮询重新拾取
		if err := tx.Save(&msg).Error; err != nil {
			r.logger.Printf("Failed to update outbox message ID %d: %v", msg.ID, err)
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			return err
		}
	}

	return tx.Commit().Error
}
