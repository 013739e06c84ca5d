// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/awnumar/memguard"
	"github.com/sashabaranov/go-openai"

	"github.com/AleutianAI/PolicyDesk/services/enrollment/datatypes"
)

// OpenAIClient implements Extractor and Transcriber against the OpenAI
// API: a vision chat completion for document extraction and Whisper for
// dictation.
//
// The API key is sealed in a memguard enclave after load and only opened
// for the duration of a request.
type OpenAIClient struct {
	apiKey          *memguard.Enclave
	model           string
	transcribeModel string
}

// NewOpenAIClient builds a client from the environment.
//
// OPENAI_API_KEY is read from the environment or, failing that, from the
// container secret at /run/secrets/openai_api_key. OPENAI_MODEL defaults
// to gpt-4o-mini (the extraction model must accept image input);
// OPENAI_TRANSCRIBE_MODEL defaults to whisper-1.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from container secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}
	transcribeModel := os.Getenv("OPENAI_TRANSCRIBE_MODEL")
	if transcribeModel == "" {
		transcribeModel = openai.Whisper1
	}

	slog.Info("Initializing OpenAI client", "model", model, "transcribe_model", transcribeModel)
	return &OpenAIClient{
		apiKey:          memguard.NewEnclave([]byte(apiKey)),
		model:           model,
		transcribeModel: transcribeModel,
	}, nil
}

// api opens the enclave and builds an API client for one request. The
// caller must call the returned destroy func when done.
func (o *OpenAIClient) api() (*openai.Client, func(), error) {
	buf, err := o.apiKey.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("open API key enclave: %w", err)
	}
	return openai.NewClient(buf.String()), buf.Destroy, nil
}

// ExtractRecord implements the Extractor interface.
func (o *OpenAIClient) ExtractRecord(ctx context.Context, image []byte, mimeType string) (datatypes.AutofillResult, error) {
	slog.Debug("Extracting document fields via OpenAI", "model", o.model, "image_bytes", len(image))

	client, destroy, err := o.api()
	if err != nil {
		return datatypes.AutofillResult{}, err
	}
	defer destroy()

	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))
	req := openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionUserPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("OpenAI extraction call failed", "error", err)
		return datatypes.AutofillResult{}, fmt.Errorf("OpenAI extraction call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices for extraction")
		return datatypes.AutofillResult{}, fmt.Errorf("OpenAI returned no choices")
	}

	result, err := ParseExtraction(resp.Choices[0].Message.Content)
	if err != nil {
		return datatypes.AutofillResult{}, err
	}
	slog.Debug("Received extraction from OpenAI", "finish_reason", resp.Choices[0].FinishReason)
	return result, nil
}

// Transcribe implements the Transcriber interface.
func (o *OpenAIClient) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	slog.Debug("Transcribing dictation via OpenAI", "model", o.transcribeModel, "audio_bytes", len(audio))

	client, destroy, err := o.api()
	if err != nil {
		return "", err
	}
	defer destroy()

	resp, err := client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    o.transcribeModel,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	})
	if err != nil {
		slog.Error("OpenAI transcription call failed", "error", err)
		return "", fmt.Errorf("OpenAI transcription call failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// ParseExtraction decodes the model's JSON reply into an AutofillResult.
//
// Models occasionally wrap JSON in a markdown code fence despite the
// prompt; the fence is stripped before decoding.
func ParseExtraction(content string) (datatypes.AutofillResult, error) {
	trimmed := strings.TrimSpace(content)
	if after, ok := strings.CutPrefix(trimmed, "```json"); ok {
		trimmed = after
	} else if after, ok := strings.CutPrefix(trimmed, "```"); ok {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	trimmed = strings.TrimSpace(trimmed)

	var result datatypes.AutofillResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return datatypes.AutofillResult{}, fmt.Errorf("extraction reply is not valid JSON: %w", err)
	}
	return result, nil
}
