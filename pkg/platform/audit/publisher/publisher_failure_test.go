package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	audit "ballotbox/pkg/platform/audit"
	"ballotbox/pkg/platform/audit/mocks"
)

func TestPublisher_SyncMode_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	storeDown := errors.New("store unavailable")
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(storeDown)

	pub := NewPublisher(store)
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "obf-1",
		Action:  string(audit.EventBallotCounted),
	})
	assert.ErrorIs(t, err, storeDown)
}

func TestPublisher_SyncMode_SinkFailureAfterAppend(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(nil)

	sinkDown := errors.New("sink unavailable")
	pub := NewPublisher(store, WithSink(failingSink{err: sinkDown}))
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "obf-1",
		Action:  string(audit.EventFraudDetected),
	})
	assert.ErrorIs(t, err, sinkDown)
}

func TestPublisher_AsyncMode_StoreFailureDoesNotBlockEmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	storeDown := errors.New("store unavailable")
	store.EXPECT().Append(gomock.Any(), gomock.Any()).Return(storeDown).MinTimes(1)

	pub := NewPublisher(store, WithAsyncBuffer(10))

	err := pub.Emit(context.Background(), audit.Event{
		Subject: "obf-1",
		Action:  string(audit.EventBallotCounted),
	})
	require.NoError(t, err, "async emit must not surface delivery failures")

	time.Sleep(50 * time.Millisecond)
	pub.Close()
}

type failingSink struct {
	err error
}

func (s failingSink) Publish(context.Context, audit.Event) error {
	return s.err
}
