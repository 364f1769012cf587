package rabbitmq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/gommon/log"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/ziflex/lecho/v3"
)

// bufPool reuses encode buffers between publishes. With a single
// publisher there is one buffer in the pool at all times; with more
// goroutines the pool scales with them.
var bufPool = sync.Pool{
	New: func() interface{} { return new(bytes.Buffer) },
}

const contentTypeJSON = "application/json"

// ProofJob is the unit of work handed to the proof-verification
// pipeline. It intentionally carries only the payment id: the worker
// re-reads the payment so stale queue entries cannot resurrect old state.
type ProofJob struct {
	PaymentID int64 `json:"payment_id"`
}

type ProofJobHandler = func(ctx context.Context, job *ProofJob) error

type Client interface {
	// SubscribeToProofJobs consumes proof jobs until the context is
	// cancelled, invoking the handler once per delivery.
	SubscribeToProofJobs(ctx context.Context, handler ProofJobHandler) error
	PublishProofJob(ctx context.Context, job *ProofJob) error
	// Close will close all connections to rabbitmq
	Close() error
}

type DefaultClient struct {
	amqpClient AMQPClient

	logger *lecho.Logger

	proofExchange          string
	proofRoutingKey        string
	proofConsumerQueueName string
}

type ClientOption = func(client *DefaultClient)

func WithProofExchange(exchange string) ClientOption {
	return func(client *DefaultClient) {
		client.proofExchange = exchange
	}
}

func WithProofConsumerQueueName(name string) ClientOption {
	return func(client *DefaultClient) {
		client.proofConsumerQueueName = name
	}
}

func WithLogger(logger *lecho.Logger) ClientOption {
	return func(client *DefaultClient) {
		client.logger = logger
	}
}

// NewClient wraps an AMQP connection into a client ready to publish and
// consume proof jobs.
func NewClient(amqpClient AMQPClient, options ...ClientOption) (Client, error) {
	client := &DefaultClient{
		amqpClient: amqpClient,

		logger: lecho.New(
			os.Stdout,
			lecho.WithLevel(log.DEBUG),
			lecho.WithTimestamp(),
		),

		proofExchange:          "classfund_proof",
		proofRoutingKey:        "proof.submitted",
		proofConsumerQueueName: "proof_job_consumer",
	}

	for _, opt := range options {
		opt(client)
	}

	return client, nil
}

func (client *DefaultClient) Close() error { return client.amqpClient.Close() }

func (client *DefaultClient) SubscribeToProofJobs(ctx context.Context, handler ProofJobHandler) error {
	deliveryChan, err := client.amqpClient.Listen(ctx, client.proofExchange, client.proofRoutingKey, client.proofConsumerQueueName)
	if err != nil {
		return err
	}

	client.logger.Info("Starting proof job rabbitmq consumer")
	for {
		select {
		case <-ctx.Done():
			return context.Canceled
		case delivery, ok := <-deliveryChan:
			if !ok {
				return fmt.Errorf("disconnected from rabbitmq")
			}
			var job ProofJob

			err := json.Unmarshal(delivery.Body, &job)
			if err != nil {
				captureErr(client.logger, err)

				// A message we cannot even unmarshal is badly formatted.
				// Nack without requeue so it does not loop.
				err = delivery.Nack(false, false)
				if err != nil {
					captureErr(client.logger, err)
				}

				continue
			}

			err = handler(ctx, &job)
			if err != nil {
				captureErr(client.logger, err)

				// Handler failures are also not requeued: the pipeline
				// records its own failure reasons on the payment, and
				// requeueing pressures the database and the logs.
				err := delivery.Nack(false, false)
				if err != nil {
					captureErr(client.logger, err)
				}

				continue
			}

			err = delivery.Ack(false)
			if err != nil {
				captureErr(client.logger, err)
			}
		}
	}
}

func (client *DefaultClient) PublishProofJob(ctx context.Context, job *ProofJob) error {
	payload := bufPool.Get().(*bytes.Buffer)
	payload.Reset()
	defer bufPool.Put(payload)

	err := json.NewEncoder(payload).Encode(job)
	if err != nil {
		return err
	}

	err = client.amqpClient.PublishWithContext(ctx,
		client.proofExchange,
		client.proofRoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: contentTypeJSON,
			Body:        payload.Bytes(),
		},
	)
	if err != nil {
		captureErr(client.logger, err)
		return err
	}

	client.logger.Debugf("Successfully published proof job for payment %d", job.PaymentID)

	return nil
}

func captureErr(logger *lecho.Logger, err error) {
	logger.Error(err)
	sentry.CaptureException(err)
}
