package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/mbichler/pulse/internal/models"
)

// SuggestedTask holds a single follow-up task extracted from session activity.
type SuggestedTask struct {
	Title    string `json:"title"`
	Owner    string `json:"owner"`
	Priority string `json:"priority"`
	Reason   string `json:"reason"`
}

// Client wraps the Anthropic API for activity digests.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildDigestPrompt constructs the system and user prompts for an activity digest.
func buildDigestPrompt(snap *models.StatusSnapshot) (system string, user string) {
	system = `You summarize the recent activity of an autonomous coding agent for its operator. You receive the agent's current status and a list of recent activities, most recent first.

Write a short digest in plain prose:
- Open with one sentence stating what the agent is doing right now (or that it is idle/offline)
- Follow with 2-5 sentences covering the most notable recent work: files touched, commands run, messages exchanged
- Mention anything that looks stuck or unanswered
- No markdown headings, no bullet lists, no preamble`

	var sb strings.Builder
	sb.WriteString("Status: ")
	sb.WriteString(string(snap.Status))
	sb.WriteString("\n")
	if snap.CurrentTask != nil {
		sb.WriteString("Current task: ")
		sb.WriteString(*snap.CurrentTask)
		sb.WriteString("\n")
	}
	if snap.Model != "" {
		sb.WriteString("Model: ")
		sb.WriteString(snap.Model)
		sb.WriteString("\n")
	}
	sb.WriteString("\nRecent activities (most recent first):\n")
	for _, act := range snap.Activities {
		sb.WriteString("- [")
		sb.WriteString(act.Timestamp.Format("15:04:05"))
		sb.WriteString("] ")
		sb.WriteString(string(act.Kind))
		sb.WriteString(": ")
		sb.WriteString(act.Description)
		if act.Details != "" {
			sb.WriteString(" (")
			sb.WriteString(act.Details)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	user = sb.String()
	return
}

// Digest sends the snapshot to the LLM and returns a prose summary.
func (c *Client) Digest(ctx context.Context, snap *models.StatusSnapshot) (string, error) {
	systemPrompt, userPrompt := buildDigestPrompt(snap)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	text := responseText(msg)
	if text == "" {
		return "", fmt.Errorf("no text content in API response")
	}

	return strings.TrimSpace(text), nil
}

// buildSuggestPrompt constructs the system and user prompts for task suggestion.
func buildSuggestPrompt(snap *models.StatusSnapshot) (system string, user string) {
	system = `You review the recent activity of an autonomous coding agent and suggest follow-up tasks for its task board. Return ONLY a JSON array of objects with these fields:
- "title": concise task title
- "owner": "agent" if the agent should do it, "operator" if a human must act
- "priority": one of "low", "medium", "high"
- "reason": one sentence explaining why this task follows from the activity

Rules:
- Suggest at most 5 tasks
- Only suggest tasks clearly implied by the activity (unanswered questions, failed commands, unfinished edits)
- Return an empty array if nothing needs follow-up
- Return valid JSON only, no markdown fencing or explanation`

	_, user = buildDigestPrompt(snap)
	return
}

// SuggestTasks asks the LLM for follow-up tasks implied by recent activity.
func (c *Client) SuggestTasks(ctx context.Context, snap *models.StatusSnapshot) ([]SuggestedTask, error) {
	systemPrompt, userPrompt := buildSuggestPrompt(snap)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	text := responseText(msg)
	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	text = stripFencing(text)

	var tasks []SuggestedTask
	if err := json.Unmarshal([]byte(text), &tasks); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}

	return tasks, nil
}

func responseText(msg *anthropic.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// stripFencing removes markdown code fencing if present.
func stripFencing(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}
	return text
}
