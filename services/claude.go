package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"insta-metrics/models"
)

const claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeRequest represents the request to Claude API
type ClaudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []ClaudeMessage `json:"messages"`
	System    string          `json:"system,omitempty"`
}

// ClaudeMessage represents a message in the conversation
type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ClaudeResponse represents the response from Claude API
type ClaudeResponse struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text,omitempty"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// buildAssistantSystemPrompt grounds the assistant in the account's current
// numbers so answers reference real metrics instead of guessing
func buildAssistantSystemPrompt(account *models.Account) string {
	return fmt.Sprintf(
		"You are an Instagram analytics assistant for @%s (%s account). "+
			"Current profile metrics: %d followers, %d following, %d posts. "+
			"Answer questions about the account's performance concisely and concretely.",
		account.Username, account.AccountType,
		account.FollowersCount, account.FollowsCount, account.MediaCount,
	)
}

// GetAssistantReply sends the conversation to the Claude API and returns the
// assistant's text reply
func GetAssistantReply(ctx context.Context, apiKey, model string, account *models.Account, history []models.ChatMessage, question string) (string, error) {
	if apiKey == "" {
		return "", fmt.Errorf("Anthropic API key not configured")
	}

	if err := assistantRateLimiter.Wait(ctx); err != nil {
		return "", err
	}

	messages := make([]ClaudeMessage, 0, len(history)+1)
	for _, msg := range history {
		messages = append(messages, ClaudeMessage{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, ClaudeMessage{Role: "user", Content: question})

	requestBody := ClaudeRequest{
		Model:     model,
		MaxTokens: 1024,
		Messages:  messages,
		System:    buildAssistantSystemPrompt(account),
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", claudeAPIURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{
		Timeout: 45 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Claude API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", err
	}

	for _, block := range claudeResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}

	return "", fmt.Errorf("assistant returned no text content")
}

// SaveChatMessage persists one turn of an assistant conversation
func SaveChatMessage(ctx context.Context, userID, accountID, role, content string) error {
	collection := database.Collection("chat_messages")

	_, err := collection.InsertOne(ctx, models.ChatMessage{
		UserID:    userID,
		AccountID: accountID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return err
}

// GetChatHistory returns recent conversation turns, oldest first
func GetChatHistory(ctx context.Context, userID, accountID string, limit int) ([]models.ChatMessage, error) {
	collection := database.Collection("chat_messages")

	if limit <= 0 {
		limit = 20
	}

	cursor, err := collection.Find(ctx,
		bson.M{"user_id": userID, "account_id": accountID},
		options.Find().SetSort(bson.M{"timestamp": -1}).SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode chat history: %w", err)
	}

	// Newest-first from Mongo, flip to conversation order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
