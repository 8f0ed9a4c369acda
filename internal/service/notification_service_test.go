package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-course-api/internal/dto"
	"github.com/noah-isme/gema-course-api/internal/models"
	"github.com/noah-isme/gema-course-api/internal/repository"
)

func TestNotificationServicePublishDeliversLocallyAndAcrossNodes(t *testing.T) {
	db := setupServiceTestDB(t)
	repo := repository.NewNotificationRepository(db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	validate := validator.New()
	publisher := NewNotificationService(repo, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "gema", nil, validate, testLogger())
	remote := NewNotificationService(repo, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "gema", nil, validate, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	remote.Start(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("gema:notifications")["gema:notifications"] == 1
	}, time.Second, 10*time.Millisecond)

	local, stopLocal := publisher.Subscribe(42)
	defer stopLocal()
	other, stopOther := remote.Subscribe(42)
	defer stopOther()

	sent, err := publisher.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  42,
		Type:    models.NotificationTypeTaskGraded,
		Message: "<script>x</script>Your submission was passed.",
	})
	require.NoError(t, err)
	require.Equal(t, "Your submission was passed.", sent.Message)

	select {
	case received := <-local:
		require.Equal(t, sent.ID, received.ID)
	case <-time.After(time.Second):
		t.Fatal("local subscriber did not receive the notification")
	}

	select {
	case received := <-other:
		require.Equal(t, sent.ID, received.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("remote subscriber did not receive the notification")
	}
}

func TestNotificationServiceFansOutToEveryRemoteNodeOnce(t *testing.T) {
	db := setupServiceTestDB(t)
	repo := repository.NewNotificationRepository(db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	validate := validator.New()
	newNode := func() NotificationService {
		return NewNotificationService(repo, redis.NewClient(&redis.Options{Addr: mr.Addr()}), "gema", nil, validate, testLogger())
	}
	publisher, nodeB, nodeC := newNode(), newNode(), newNode()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	publisher.Start(ctx)
	nodeB.Start(ctx)
	nodeC.Start(ctx)
	require.Eventually(t, func() bool {
		return mr.PubSubNumSub("gema:notifications")["gema:notifications"] == 3
	}, time.Second, 10*time.Millisecond)

	local, stopLocal := publisher.Subscribe(8)
	defer stopLocal()
	streamB, stopB := nodeB.Subscribe(8)
	defer stopB()
	streamC, stopC := nodeC.Subscribe(8)
	defer stopC()

	sent, err := publisher.Publish(ctx, dto.NotificationCreateRequest{
		UserID:  8,
		Type:    models.NotificationTypeCertificateIssued,
		Message: "Certificate issued for Web Fundamentals.",
	})
	require.NoError(t, err)

	for name, stream := range map[string]<-chan dto.NotificationResponse{"publisher": local, "node b": streamB, "node c": streamC} {
		select {
		case received := <-stream:
			require.Equal(t, sent.ID, received.ID, name)
		case <-time.After(2 * time.Second):
			t.Fatalf("%s did not receive the notification", name)
		}
	}

	// A redelivery of the same event from another transport is dropped.
	payload, err := json.Marshal(notificationEvent{Source: "another-node", Notification: sent, SentAt: time.Now().UTC()})
	require.NoError(t, err)
	nodeB.(*notificationService).handleEvent(payload)
	publisher.(*notificationService).handleEvent(payload)

	require.Never(t, func() bool {
		return len(local) > 0 || len(streamB) > 0 || len(streamC) > 0
	}, 200*time.Millisecond, 20*time.Millisecond)
}

func TestDeliveredSetForgetsOldestIDs(t *testing.T) {
	set := newDeliveredSet(2)

	require.True(t, set.add(1))
	require.False(t, set.add(1))
	require.True(t, set.add(2))
	require.True(t, set.add(3))
	require.True(t, set.add(1), "id 1 was evicted by id 3")
	require.False(t, set.add(3))
}

func TestNotificationServiceListAndMarkRead(t *testing.T) {
	db := setupServiceTestDB(t)
	svc := NewNotificationService(repository.NewNotificationRepository(db), nil, "", nil, validator.New(), testLogger())
	ctx := context.Background()

	sent, err := svc.Publish(ctx, dto.NotificationCreateRequest{UserID: 3, Type: models.NotificationTypeCertificateIssued, Message: "Congratulations!"})
	require.NoError(t, err)

	items, err := svc.List(ctx, 3, 10, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.False(t, items[0].Read)

	_, err = svc.MarkRead(ctx, sent.ID, 4)
	require.ErrorIs(t, err, ErrNotificationNotFound)

	read, err := svc.MarkRead(ctx, sent.ID, 3)
	require.NoError(t, err)
	require.True(t, read.Read)

	_, err = svc.Publish(ctx, dto.NotificationCreateRequest{UserID: 3, Type: "x", Message: "<b></b>"})
	require.Error(t, err)
}
