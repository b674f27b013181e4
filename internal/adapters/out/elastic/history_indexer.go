// Package elastic projects delivery history into an Elasticsearch index used
// for compliance search.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ticinfraestructura/sigah-sub000/internal/core/domain/model/delivery"
	"github.com/ticinfraestructura/sigah-sub000/internal/core/ports"
)

// DefaultIndex holds one document per history record.
const DefaultIndex = "delivery-history"

var _ ports.HistoryIndexer = (*HistoryIndexer)(nil)

type Config struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

type HistoryIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewHistoryIndexer(cfg Config) (*HistoryIndexer, error) {
	if len(cfg.Addresses) == 0 {
		return nil, errors.New("elasticsearch addresses are empty")
	}
	esCfg := elasticsearch.Config{Addresses: cfg.Addresses}
	if cfg.Username != "" && cfg.Password != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	return &HistoryIndexer{client: client, index: index}, nil
}

// Ping checks that the cluster answers.
func (i *HistoryIndexer) Ping(ctx context.Context) error {
	res, err := i.client.Info(i.client.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("connect to elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch info: %s", res.String())
	}
	return nil
}

// Index stores a TransitionRecorded payload under its history id, so a
// message relayed twice overwrites the same document.
func (i *HistoryIndexer) Index(ctx context.Context, message ports.OutboxMessage) error {
	if message.Name != delivery.TransitionRecordedEvent {
		return fmt.Errorf("cannot index outbox message %q", message.Name)
	}

	var record delivery.TransitionRecorded
	if err := json.Unmarshal(message.Payload, &record); err != nil {
		return fmt.Errorf("decode %s payload: %w", message.Name, err)
	}
	if record.HistoryID == "" {
		return fmt.Errorf("outbox message %s has no history id", message.ID.String())
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.HistoryID,
		Body:       bytes.NewReader(message.Payload),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index history %s: %w", record.HistoryID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index history %s: %s", record.HistoryID, res.String())
	}
	return nil
}

// LogIndexer writes transition records to the structured log. It stands in
// for the index when no cluster is configured.
type LogIndexer struct {
	logger *slog.Logger
}

var _ ports.HistoryIndexer = (*LogIndexer)(nil)

func NewLogIndexer(logger *slog.Logger) *LogIndexer {
	return &LogIndexer{logger: logger.With("component", "history_indexer")}
}

func (i *LogIndexer) Index(ctx context.Context, message ports.OutboxMessage) error {
	i.logger.InfoContext(ctx, "delivery transition",
		"id", message.ID.String(),
		"delivery_id", message.AggregateID.String(),
		"payload", string(message.Payload),
	)
	return nil
}
