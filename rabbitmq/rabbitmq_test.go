package rabbitmq_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/classfund/classfund.go/rabbitmq"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAMQPClient struct {
	mu         sync.Mutex
	deliveries chan amqp.Delivery
	published  []amqp.Publishing
	exchange   string
	routingKey string
	queueName  string
}

func (f *fakeAMQPClient) Listen(ctx context.Context, exchange string, routingKey string, queueName string) (<-chan amqp.Delivery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchange = exchange
	f.routingKey = routingKey
	f.queueName = queueName
	return f.deliveries, nil
}

func (f *fakeAMQPClient) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchange = exchange
	f.routingKey = key
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeAMQPClient) Close() error { return nil }

func TestSubscribeToProofJobs(t *testing.T) {
	t.Parallel()

	amqpClient := &fakeAMQPClient{deliveries: make(chan amqp.Delivery, 3)}
	client, err := rabbitmq.NewClient(amqpClient)
	require.NoError(t, err)

	firstJob, err := json.Marshal(&rabbitmq.ProofJob{PaymentID: 7})
	require.NoError(t, err)
	secondJob, err := json.Marshal(&rabbitmq.ProofJob{PaymentID: 8})
	require.NoError(t, err)

	amqpClient.deliveries <- amqp.Delivery{Body: firstJob}
	// malformed payloads must be dropped, not loop the consumer
	amqpClient.deliveries <- amqp.Delivery{Body: []byte("{not json")}
	amqpClient.deliveries <- amqp.Delivery{Body: secondJob}

	var mu sync.Mutex
	var handled []int64
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.SubscribeToProofJobs(ctx, func(ctx context.Context, job *rabbitmq.ProofJob) error {
			mu.Lock()
			defer mu.Unlock()
			handled = append(handled, job.PaymentID)
			return nil
		})
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []int64{7, 8}, handled)
	mu.Unlock()

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestPublishProofJob(t *testing.T) {
	t.Parallel()

	amqpClient := &fakeAMQPClient{deliveries: make(chan amqp.Delivery)}
	client, err := rabbitmq.NewClient(amqpClient,
		rabbitmq.WithProofExchange("test_proof"),
	)
	require.NoError(t, err)

	err = client.PublishProofJob(context.Background(), &rabbitmq.ProofJob{PaymentID: 42})
	require.NoError(t, err)

	amqpClient.mu.Lock()
	defer amqpClient.mu.Unlock()
	require.Len(t, amqpClient.published, 1)
	assert.Equal(t, "test_proof", amqpClient.exchange)
	assert.Equal(t, "proof.submitted", amqpClient.routingKey)

	var job rabbitmq.ProofJob
	require.NoError(t, json.Unmarshal(amqpClient.published[0].Body, &job))
	assert.Equal(t, int64(42), job.PaymentID)
}
