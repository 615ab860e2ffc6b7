package validation

import (
	"context"
	"fmt"
	"strings"

	domsvc "MacroLens/internal/domain/service"
	"MacroLens/pkg/config"
	xhttp "MacroLens/pkg/http"
)

// ChatAssessor asks an OpenAI-compatible chat endpoint whether a macro
// series plausibly drives an equity. The provider behind the base URL is
// interchangeable (OpenAI, a local model, anything speaking the same API).
type ChatAssessor struct {
	baseURL string
	model   string
	apiKey  string
	client  *xhttp.Client
}

func NewChatAssessor(cfg *config.Config) *ChatAssessor {
	return &ChatAssessor{
		baseURL: cfg.Assessor.BaseURL,
		model:   cfg.Assessor.Model,
		apiKey:  cfg.Assessor.APIKey,
		client:  xhttp.NewClient(xhttp.WithTimeout(cfg.Assessor.Timeout)),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (a *ChatAssessor) Assess(ctx context.Context, targetID, driverID string) (bool, string, error) {
	prompt := fmt.Sprintf(
		"Is there a plausible economic mechanism by which %q drives the price of %q?\n"+
			"Answer on one line, exactly: YES: <reason> or NO: <reason>.",
		driverID, targetID,
	)

	var cr chatResponse
	err := a.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodPost,
		URL:    a.baseURL + "/chat/completions",
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + a.apiKey,
		},
		Body: chatRequest{
			Model:    a.model,
			Messages: []chatMessage{{Role: "user", Content: prompt}},
		},
	}, &cr)
	if err != nil {
		return false, "", fmt.Errorf("chat assess: %w", err)
	}
	if len(cr.Choices) == 0 {
		return false, "", fmt.Errorf("chat assess: empty choices")
	}

	return parseVerdict(cr.Choices[0].Message.Content)
}

func parseVerdict(content string) (bool, string, error) {
	line := strings.TrimSpace(content)
	upper := strings.ToUpper(line)

	accepted := strings.HasPrefix(upper, "YES")
	if !accepted && !strings.HasPrefix(upper, "NO") {
		return false, "", fmt.Errorf("chat assess: unparseable verdict %q", line)
	}

	reason := line
	if i := strings.Index(line, ":"); i >= 0 {
		reason = strings.TrimSpace(line[i+1:])
	}
	return accepted, reason, nil
}

var _ domsvc.CausalityAssessor = (*ChatAssessor)(nil)
