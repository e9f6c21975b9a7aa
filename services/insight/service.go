package insightsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/shikshaconnect/shiksha/core"
)

const systemPrompt = "You are an AI education analyst. Analyze attendance data and provide actionable insights for school administrators."

type service struct {
	conf   *core.Config
	client *http.Client
}

var _ core.InsightService = (*service)(nil)

// NewService returns an InsightService backed by an OpenAI-compatible
// chat-completions endpoint.
func NewService(conf *core.Config) core.InsightService {
	return &service{
		conf:   conf,
		client: &http.Client{Timeout: conf.Insight.Timeout},
	}
}

type (
	chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}

	chatRequest struct {
		Model    string        `json:"model"`
		User     string        `json:"user,omitempty"`
		Messages []chatMessage `json:"messages"`
	}

	chatResponse struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
)

// Generate asks the model for commentary on the serialized summary.
// Errors are returned as-is; the caller degrades to a fallback message
// and must not retry.
func (svc *service) Generate(ctx context.Context, data interface{}) (string, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return "", errors.Wrap(err, "marshalling analytics data")
	}

	body, err := json.Marshal(chatRequest{
		Model: svc.conf.Insight.Model,
		User:  "analytics_" + uuid.New().String(),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Analyze this school attendance data and provide insights: " + string(payload)},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "marshalling chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.conf.Insight.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building chat request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+svc.conf.Insight.APIKey)

	resp, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "sending chat request")
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "reading chat response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("chat completion failed: %s", resp.Status)
	}

	var chatResp chatResponse
	if err = json.Unmarshal(respBody, &chatResp); err != nil {
		return "", errors.Wrap(err, "unmarshalling chat response")
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

type serviceMock struct {
	text string
	err  error
}

// NewServiceMock returns canned text or a canned error; for tests.
func NewServiceMock(text string, err error) core.InsightService {
	return &serviceMock{text: text, err: err}
}

func (svc *serviceMock) Generate(_ context.Context, data interface{}) (string, error) {
	if svc.err != nil {
		return "", svc.err
	}
	if svc.text != "" {
		return svc.text, nil
	}
	return fmt.Sprintf("analyzed: %v", data), nil
}
