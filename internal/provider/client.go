package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
)

// Sender is the logical "send message" contract consumed by services.
// Implementations report delivery as a boolean and never return transport
// errors to the caller.
type Sender interface {
	SendMessage(ctx context.Context, req SendRequest) bool
}

// SendRequest describes one outbound dispatch.
type SendRequest struct {
	To          string
	Content     string
	Type        domain.MessageType
	MediaURL    *string
	InstanceKey string
}

// InstanceConfig is the credential set for one provider instance.
type InstanceConfig struct {
	APIURL      string
	Token       string
	InstanceKey string
}

// Client talks to the Evolution-style messaging provider over HTTP with a
// bounded per-request timeout.
type Client struct {
	mu      sync.RWMutex
	configs map[string]InstanceConfig
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client; Configure must be called before dispatching.
func NewClient(cfg config.ProviderConfig, logger *zap.Logger) *Client {
	return &Client{
		configs: make(map[string]InstanceConfig),
		http:    &http.Client{Timeout: cfg.RequestTimeout()},
		logger:  logger,
	}
}

// Configure replaces the cached instance credentials, usually from the
// instance repository at startup and after instance creation.
func (c *Client) Configure(instances []domain.ProviderInstance) {
	configs := make(map[string]InstanceConfig, len(instances))
	for _, instance := range instances {
		configs[instance.InstanceKey] = InstanceConfig{
			APIURL:      instance.APIURL,
			Token:       instance.Token,
			InstanceKey: instance.InstanceKey,
		}
	}
	c.mu.Lock()
	c.configs = configs
	c.mu.Unlock()
}

// SendMessage forwards one message to the provider. An empty InstanceKey
// selects any configured instance; single-instance deployments are the
// common case. Any transport or provider failure yields false.
func (c *Client) SendMessage(ctx context.Context, req SendRequest) bool {
	cfg, ok := c.selectConfig(req.InstanceKey)
	if !ok {
		c.logger.Warn("no provider instance configured", zap.String("instance_key", req.InstanceKey))
		return false
	}

	payload := buildPayload(req)
	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("marshal provider payload", zap.Error(err))
		return false
	}

	url := fmt.Sprintf("%s/message/sendText/%s", cfg.APIURL, cfg.InstanceKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("build provider request", zap.Error(err))
		return false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("apikey", cfg.Token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Warn("provider dispatch failed",
			zap.String("to", req.To),
			zap.String("instance_key", cfg.InstanceKey),
			zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Warn("provider rejected dispatch",
			zap.String("to", req.To),
			zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

func (c *Client) selectConfig(instanceKey string) (InstanceConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if instanceKey != "" {
		cfg, ok := c.configs[instanceKey]
		return cfg, ok
	}
	for _, cfg := range c.configs {
		return cfg, true
	}
	return InstanceConfig{}, false
}

// buildPayload shapes the request per message type: plain text, or media
// with caption/filename.
func buildPayload(req SendRequest) map[string]any {
	payload := map[string]any{"number": req.To}

	switch {
	case req.Type == domain.MessageTypeText || req.MediaURL == nil:
		payload["text"] = req.Content
	case req.Type == domain.MessageTypeDocument:
		payload["mediaMessage"] = map[string]any{
			"mediatype": "document",
			"media":     *req.MediaURL,
			"fileName":  req.Content,
		}
	default:
		payload["mediaMessage"] = map[string]any{
			"mediatype": string(req.Type),
			"media":     *req.MediaURL,
			"caption":   req.Content,
		}
	}
	return payload
}
