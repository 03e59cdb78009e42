package events

import (
	"context"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/common/domain"
	"github.com/staynest/service-booking/internal/common/kafka"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// BookingCompleter is the part of the booking service the consumer drives.
type BookingCompleter interface {
	CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*application.BookingDTO, error)
}

// StayEventConsumer listens to stay events and completes bookings on check-out.
type StayEventConsumer struct {
	consumer *kafka.Consumer
	service  BookingCompleter
	logger   *zap.Logger
}

// NewStayEventConsumer creates a new StayEventConsumer.
func NewStayEventConsumer(
	brokers []string,
	groupID string,
	service BookingCompleter,
	logger *zap.Logger,
) *StayEventConsumer {
	return &StayEventConsumer{
		consumer: kafka.NewConsumer(brokers, groupID, TopicStayEvents, logger),
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming stay events. This blocks until the context is cancelled.
func (c *StayEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *StayEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *StayEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from stay topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case StayCheckedOut:
		return c.handleCheckedOut(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled stay event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *StayEventConsumer) handleCheckedOut(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt StayCheckedOutEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.BookingID == uuid.Nil {
		c.logger.Error("failed to parse StayCheckedOutEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	_, err := c.service.CompleteBooking(ctx, evt.BookingID, bookingDomain.SystemActor)
	if err != nil {
		// Replays and early check-outs land here; retrying cannot help.
		if domain.IsDomainError(err) && domain.KindOf(err) != domain.KindConflict {
			c.logger.Warn("stay check-out did not complete booking",
				zap.String("booking_id", evt.BookingID.String()),
				zap.String("reason", string(domain.KindOf(err))),
			)
			return nil
		}
		c.logger.Error("failed to complete booking after check-out",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking completed after check-out",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
