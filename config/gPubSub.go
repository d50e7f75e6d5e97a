package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// PubSubSettings configures the optional order event publisher.
type PubSubSettings struct {
	ProjectID       string
	Topic           string
	CredentialsJSON string
}

// Enabled reports whether a topic is configured.
func (s PubSubSettings) Enabled() bool {
	return s.Topic != ""
}

func getPubSubProjectID() string {
	// Prefer explicit override.
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	// Cloud Run sets this.
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

func loadPubSubSettings() PubSubSettings {
	return PubSubSettings{
		ProjectID:       getPubSubProjectID(),
		Topic:           os.Getenv("PUBSUB_TOPIC"),
		CredentialsJSON: os.Getenv("PUBSUB_CREDENTIALS_JSON"),
	}
}

// PubSubPublisher publishes JSON events to a single topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// NewPubSubPublisher wraps an existing client. The topic must already exist.
func NewPubSubPublisher(client *pubsub.Client, topic string) (*PubSubPublisher, error) {
	if client == nil {
		return nil, errors.New("pubsub client is nil")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	return &PubSubPublisher{client: client, topic: client.Topic(topic)}, nil
}

// ConnectPubSubWithRetry builds a client from settings. maxAttempts <= 0 retries forever.
// Uses Application Default Credentials unless CredentialsJSON is set; the client library
// honours PUBSUB_EMULATOR_HOST on its own.
func ConnectPubSubWithRetry(ctx context.Context, s PubSubSettings, maxAttempts int) (*PubSubPublisher, error) {
	if s.ProjectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	var opts []option.ClientOption
	if s.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(s.CredentialsJSON)))
	}

	var attempt int
	for {
		attempt++
		c, err := pubsub.NewClient(ctx, s.ProjectID, opts...)
		if err == nil {
			log.Printf("pubsub client ready (project_id=%s attempt=%d)", s.ProjectID, attempt)
			return NewPubSubPublisher(c, s.Topic)
		}
		if maxAttempts > 0 && attempt >= maxAttempts {
			return nil, fmt.Errorf("failed to init pubsub client after %d attempts: %w", attempt, err)
		}

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v; retrying in %s", s.ProjectID, attempt, err, sleep)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// Publish sends payload as JSON and waits for the server-assigned message ID.
func (p *PubSubPublisher) Publish(ctx context.Context, eventType string, attributes map[string]string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	attrs := make(map[string]string, len(attributes)+1)
	for k, v := range attributes {
		attrs[k] = v
	}
	attrs["event_type"] = eventType

	result := p.topic.Publish(ctx, &pubsub.Message{Data: data, Attributes: attrs})
	return result.Get(ctx)
}

// Close flushes pending messages and closes the client.
func (p *PubSubPublisher) Close() error {
	p.topic.Stop()
	return p.client.Close()
}
