// Package servicebus publishes work item events to an Azure Service Bus queue.
package servicebus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

// DefaultQueue receives every work item event.
const DefaultQueue = "delivery-work-items"

var _ ports.WorkItemPublisher = (*Publisher)(nil)
var _ ports.WorkItemPublisher = (*LogPublisher)(nil)

// sender is the part of *azservicebus.Sender the publisher uses.
type sender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// Publisher sends outbox messages to one queue. Consumers filter on the
// "role" application property.
type Publisher struct {
	client *azservicebus.Client
	sender sender
	queue  string
	source string
}

// NewPublisher connects to the namespace and opens a sender for queue.
func NewPublisher(connectionString, queue string) (*Publisher, error) {
	if connectionString == "" {
		return nil, errors.New("service bus connection string is empty")
	}
	if queue == "" {
		queue = DefaultQueue
	}

	client, err := azservicebus.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create service bus client: %w", err)
	}
	s, err := client.NewSender(queue, nil)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("create service bus sender: %w", err)
	}

	return &Publisher{
		client: client,
		sender: s,
		queue:  queue,
		source: "sigah-delivery",
	}, nil
}

func newPublisherWithSender(s sender, queue string) *Publisher {
	return &Publisher{sender: s, queue: queue, source: "sigah-delivery"}
}

func (p *Publisher) Publish(ctx context.Context, message ports.OutboxMessage) error {
	msg, err := p.toMessage(message)
	if err != nil {
		return err
	}
	if err = p.sender.SendMessage(ctx, msg, nil); err != nil {
		return fmt.Errorf("send %s to %s: %w", message.Name, p.queue, err)
	}
	return nil
}

func (p *Publisher) toMessage(message ports.OutboxMessage) (*azservicebus.Message, error) {
	var head struct {
		Status string `json:"status"`
		Role   string `json:"role"`
	}
	if err := json.Unmarshal(message.Payload, &head); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", message.Name, err)
	}

	messageID := message.ID.String()
	subject := message.Name
	contentType := "application/json"
	props := map[string]any{
		"source":      p.source,
		"name":        message.Name,
		"deliveryId":  message.AggregateID.String(),
		"status":      head.Status,
		"occurred_at": message.OccurredAt.UTC().Format(time.RFC3339Nano),
	}
	if head.Role != "" {
		props["role"] = head.Role
	}

	return &azservicebus.Message{
		MessageID:             &messageID,
		Subject:               &subject,
		ContentType:           &contentType,
		Body:                  message.Payload,
		ApplicationProperties: props,
	}, nil
}

// Close releases the sender and the client.
func (p *Publisher) Close(ctx context.Context) error {
	var errSender, errClient error
	if p.sender != nil {
		errSender = p.sender.Close(ctx)
	}
	if p.client != nil {
		errClient = p.client.Close(ctx)
	}
	return errors.Join(errSender, errClient)
}

// LogPublisher writes work item events to the structured log. It stands in
// for the bus when no connection string is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "work_item_publisher")}
}

func (p *LogPublisher) Publish(ctx context.Context, message ports.OutboxMessage) error {
	p.logger.InfoContext(ctx, "work item event",
		"id", message.ID.String(),
		"name", message.Name,
		"delivery_id", message.AggregateID.String(),
		"payload", string(message.Payload),
	)
	return nil
}
