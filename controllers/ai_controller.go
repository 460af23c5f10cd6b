package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inkwell/config"
	"inkwell/utils"
)

// AIController proxies writing-assistant requests to an OpenAI-compatible
// chat completions endpoint. The provider key never reaches the client.
type AIController struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewAIController creates an AIController from the loaded configuration.
func NewAIController() *AIController {
	cfg := config.Get()
	return &AIController{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: cfg.OpenAIBaseURL,
		model:   cfg.OpenAIModel,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

type aiRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
	Tone    string `json:"tone"`
}

func (r *aiRequest) tone() string {
	if r.Tone == "" {
		return "professional"
	}
	return r.Tone
}

// Ideas generates blog topic suggestions.
func (a *AIController) Ideas(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	system := fmt.Sprintf("You are a creative blog content strategist. Generate engaging blog topic ideas in a %s tone.", req.tone())
	user := "Generate 5 unique and engaging blog topic ideas for a general audience"
	if req.Topic != "" {
		user = fmt.Sprintf("Generate 5 unique and engaging blog topic ideas related to: %q", req.Topic)
	}

	a.respond(ctx, system, user, 500)
}

// Title generates headline variations for a topic.
func (a *AIController) Title(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	topic := req.Topic
	if topic == "" {
		topic = "general blog post"
	}

	system := fmt.Sprintf("You are an expert headline writer. Create catchy, SEO-friendly blog titles in a %s tone.", req.tone())
	user := fmt.Sprintf("Generate 5 compelling blog title variations for the topic: %q", topic)

	a.respond(ctx, system, user, 300)
}

// Expand elaborates on draft content.
func (a *AIController) Expand(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	if req.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "content is required")
		return
	}

	system := fmt.Sprintf("You are a skilled content writer. Expand and elaborate on the given content while maintaining a %s tone. Add more detail, examples, and depth.", req.tone())
	user := fmt.Sprintf("Expand and elaborate on the following content:\n\n%q", req.Content)

	a.respond(ctx, system, user, 800)
}

// Grammar fixes grammar and polishes draft content.
func (a *AIController) Grammar(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	if req.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "content is required")
		return
	}

	system := "You are a professional editor. Fix grammar, spelling, punctuation, and improve sentence structure while preserving the original meaning and voice."
	user := fmt.Sprintf("Please fix the grammar and polish the following text:\n\n%q", req.Content)

	a.respond(ctx, system, user, 800)
}

// Keywords generates SEO keywords from content or a topic.
func (a *AIController) Keywords(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	input := req.Content
	if input == "" {
		input = req.Topic
	}
	if input == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "content or topic is required")
		return
	}

	system := "You are an SEO expert. Generate relevant keywords and phrases that will help the content rank well in search engines."
	user := fmt.Sprintf("Generate SEO keywords for the following content. Include primary keywords, long-tail keywords, and related terms:\n\n%q", input)

	a.respond(ctx, system, user, 400)
}

// Summarize condenses draft content.
func (a *AIController) Summarize(ctx *gin.Context) {
	var req aiRequest
	_ = ctx.ShouldBindJSON(&req)

	if req.Content == "" {
		utils.Error(ctx, http.StatusBadRequest, 40040, "content is required")
		return
	}

	system := "You are a skilled summarizer. Create concise, clear summaries that capture the key points and main ideas."
	user := fmt.Sprintf("Summarize the following content in a clear and concise manner:\n\n%q", req.Content)

	a.respond(ctx, system, user, 300)
}

func (a *AIController) respond(ctx *gin.Context, system, user string, maxTokens int) {
	content, err := a.complete(system, user, maxTokens)
	if err != nil {
		logWarnf("ai completion failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50050, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"content": content})
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// complete calls the provider's chat completions endpoint and returns the
// first choice's message content.
func (a *AIController) complete(system, user string, maxTokens int) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("ai provider not configured")
	}

	body, err := json.Marshal(map[string]interface{}{
		"model": a.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		"max_tokens": maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest("POST", a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error.Message != "" {
			return "", fmt.Errorf("ai provider error: %s", payload.Error.Message)
		}
		return "", fmt.Errorf("ai provider request failed: %s", resp.Status)
	}

	var payload struct {
		Choices []struct {
			Message chatMessage `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if len(payload.Choices) == 0 {
		return "", fmt.Errorf("ai provider returned no choices")
	}

	return payload.Choices[0].Message.Content, nil
}
