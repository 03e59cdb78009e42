package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/common/domain"
	"github.com/staynest/service-booking/internal/common/kafka"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) CompleteBooking(ctx context.Context, id uuid.UUID, actor bookingDomain.Actor) (*application.BookingDTO, error) {
	args := m.Called(ctx, id, actor)
	dto, _ := args.Get(0).(*application.BookingDTO)
	return dto, args.Error(1)
}

func newTestConsumer(svc BookingCompleter) *StayEventConsumer {
	return &StayEventConsumer{service: svc, logger: zap.NewNop()}
}

func stayMessage(t *testing.T, eventType string, data interface{}) kafkago.Message {
	t.Helper()
	ce, err := kafka.NewCloudEvent("service-stay", eventType, data)
	require.NoError(t, err)
	raw, err := json.Marshal(ce)
	require.NoError(t, err)
	return kafkago.Message{Value: raw}
}

func TestCheckedOutCompletesBookingAsSystem(t *testing.T) {
	id := uuid.New()
	svc := &mockCompleter{}
	svc.On("CompleteBooking", mock.Anything, id, bookingDomain.SystemActor).
		Return(&application.BookingDTO{ID: id, Status: string(bookingDomain.StatusCompleted)}, nil).Once()

	err := newTestConsumer(svc).handleMessage(context.Background(), stayMessage(t, StayCheckedOut, StayCheckedOutEvent{BookingID: id}))

	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestMalformedMessagesAreDropped(t *testing.T) {
	svc := &mockCompleter{}
	c := newTestConsumer(svc)

	assert.NoError(t, c.handleMessage(context.Background(), kafkago.Message{Value: []byte("not json")}))
	assert.NoError(t, c.handleMessage(context.Background(), stayMessage(t, StayCheckedOut, map[string]string{"booking_id": "nope"})))
	assert.NoError(t, c.handleMessage(context.Background(), stayMessage(t, StayCheckedOut, map[string]string{})))

	svc.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestUnknownEventTypeIgnored(t *testing.T) {
	svc := &mockCompleter{}
	err := newTestConsumer(svc).handleMessage(context.Background(), stayMessage(t, "stay.checked_in", StayCheckedOutEvent{BookingID: uuid.New()}))

	assert.NoError(t, err)
	svc.AssertNotCalled(t, "CompleteBooking", mock.Anything, mock.Anything, mock.Anything)
}

func TestDomainRejectionIsNotRetried(t *testing.T) {
	id := uuid.New()
	svc := &mockCompleter{}
	svc.On("CompleteBooking", mock.Anything, id, bookingDomain.SystemActor).
		Return(nil, domain.NewInvalidStateError("completed", "completed"))

	err := newTestConsumer(svc).handleMessage(context.Background(), stayMessage(t, StayCheckedOut, StayCheckedOutEvent{BookingID: id}))

	assert.NoError(t, err)
}

func TestStorageFailureIsRetried(t *testing.T) {
	id := uuid.New()
	svc := &mockCompleter{}
	svc.On("CompleteBooking", mock.Anything, id, bookingDomain.SystemActor).
		Return(nil, errors.New("connection reset"))

	err := newTestConsumer(svc).handleMessage(context.Background(), stayMessage(t, StayCheckedOut, StayCheckedOutEvent{BookingID: id}))

	assert.Error(t, err)
}
