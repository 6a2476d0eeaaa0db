package backend

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strconv"

	"anamnesa/internal/domain"
)

// SubmitStep uploads one recorded answer for stepID. It never retries.
func (c *Client) SubmitStep(ctx context.Context, artifact domain.Artifact, stepID int) (domain.StepResult, error) {
	body, contentType, err := encodeAnswer(artifact, stepID)
	if err != nil {
		return domain.StepResult{}, err
	}

	doc, err := c.post(ctx, c.cfg.StepPath, body, contentType, c.schemas.step)
	if err != nil {
		return domain.StepResult{}, err
	}

	// A finished step carries no continuation; whatever the backend put there is ignored.
	if finished, _ := doc["finished"].(bool); finished {
		delete(doc, "next_step")
		delete(doc, "next_question")
	}

	var result domain.StepResult
	if err := remarshal(doc, &result); err != nil {
		return domain.StepResult{}, err
	}
	return result, nil
}

func encodeAnswer(artifact domain.Artifact, stepID int) ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, artifact.Filename))
	header.Set("Content-Type", artifact.MIMEType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create audio part: %w", err)
	}
	if _, err := part.Write(artifact.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write audio part: %w", err)
	}
	if err := writer.WriteField("step_id", strconv.Itoa(stepID)); err != nil {
		return nil, "", fmt.Errorf("failed to write step_id: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return buf.Bytes(), writer.FormDataContentType(), nil
}
