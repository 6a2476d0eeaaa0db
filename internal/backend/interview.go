package backend

import (
	"context"
	"fmt"
	"strings"

	"anamnesa/internal/domain"
)

// StartInterview opens a new interview and returns the first question.
func (c *Client) StartInterview(ctx context.Context) (domain.StartInfo, error) {
	doc, err := c.post(ctx, c.cfg.StartPath, nil, "", c.schemas.start)
	if err != nil {
		return domain.StartInfo{}, err
	}
	var info domain.StartInfo
	if err := remarshal(doc, &info); err != nil {
		return domain.StartInfo{}, err
	}
	return info, nil
}

// FinishInterview asks the backend to analyze all answers.
func (c *Client) FinishInterview(ctx context.Context) (domain.Summary, error) {
	doc, err := c.post(ctx, c.cfg.FinishPath, nil, "", c.schemas.finish)
	if err != nil {
		return nil, err
	}
	if success, _ := doc["success"].(bool); !success {
		return nil, &domain.ServerError{Message: "summary generation failed"}
	}
	return normalizeSummary(doc["data"])
}

// normalizeSummary accepts the shapes analysis backends produce: an object,
// a string holding JSON (optionally fenced) or plain prose.
func normalizeSummary(data any) (domain.Summary, error) {
	switch v := data.(type) {
	case map[string]any:
		if message, ok := v["error"].(string); ok && strings.TrimSpace(message) != "" {
			return nil, &domain.ServerError{Message: strings.TrimSpace(message)}
		}
		return domain.Summary(v), nil
	case string:
		text := stripFences(v)
		if text == "" {
			return nil, fmt.Errorf("%w: summary is empty", domain.ErrProtocol)
		}
		var parsed any
		if err := decodeJSON([]byte(text), &parsed); err == nil {
			if obj, ok := parsed.(map[string]any); ok {
				return normalizeSummary(obj)
			}
		}
		return domain.Summary{"ringkasan": text}, nil
	case nil:
		return nil, fmt.Errorf("%w: summary data missing", domain.ErrProtocol)
	default:
		return nil, fmt.Errorf("%w: summary data has unexpected type %T", domain.ErrProtocol, data)
	}
}

func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
