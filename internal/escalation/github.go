// Package escalation opens issues in the external tracker when a
// ticket is escalated. Delivery is best-effort: the ticket write has
// already committed by the time anything here runs, and no failure in
// this package ever reaches the caller that triggered it.
package escalation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sinless777/helix-support/internal/config"
	"github.com/sinless777/helix-support/internal/domain"
)

// Escalation is the summary submitted to the tracker.
type Escalation struct {
	TicketKey   string
	OwnerID     string
	Title       string
	Description string
	Category    domain.TicketCategory
	Status      domain.TicketStatus
}

// Notifier submits one escalation to the tracker.
type Notifier interface {
	Notify(ctx context.Context, esc Escalation) error
}

// GitHubNotifier opens issues through the GitHub REST API.
type GitHubNotifier struct {
	cfg    config.EscalationConfig
	client *http.Client
	logger *zap.Logger
}

// NewGitHubNotifier constructs the notifier.
func NewGitHubNotifier(cfg config.EscalationConfig, logger *zap.Logger) *GitHubNotifier {
	return &GitHubNotifier{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout()},
		logger: logger,
	}
}

type issueRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Notify creates one tracker issue for the escalation. A missing
// credential is not an error: the integration is optional and the
// escalation is logged and skipped. A non-2xx response or transport
// failure is returned so the worker can retry.
func (n *GitHubNotifier) Notify(ctx context.Context, esc Escalation) error {
	if n.cfg.GitHubToken == "" {
		n.logger.Warn("github token not configured; skipping escalation",
			zap.String("ticket_key", esc.TicketKey))
		return nil
	}

	body := fmt.Sprintf("**Ticket ID:** %s\n**User ID:** %s\n**Status:** %s\n**Category:** %s\n\n%s",
		esc.TicketKey, esc.OwnerID, esc.Status, esc.Category, esc.Description)
	payload, err := json.Marshal(issueRequest{
		Title: "[Ticket Escalation] " + esc.Title,
		Body:  body,
	})
	if err != nil {
		return fmt.Errorf("encode issue: %w", err)
	}

	url := fmt.Sprintf("%s/repos/%s/issues", n.cfg.APIBaseURL, n.cfg.GitHubRepo)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build issue request: %w", err)
	}
	req.Header.Set("Authorization", "token "+n.cfg.GitHubToken)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("create issue: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("create issue: status %d: %s", resp.StatusCode, string(detail))
	}

	n.logger.Info("escalation issue created",
		zap.String("ticket_key", esc.TicketKey),
		zap.String("repo", n.cfg.GitHubRepo))
	return nil
}
