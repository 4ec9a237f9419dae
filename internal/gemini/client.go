// Package gemini talks to the Gemini REST API for script writing and
// text-to-speech. All audio comes back as base64 raw 16-bit PCM mono
// at 24kHz.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// ErrGeneration means the generation service failed to produce output.
var ErrGeneration = errors.New("generation failed")

// Client is a Gemini REST API client.
type Client struct {
	apiURL     string
	apiKey     string
	textModel  string
	voiceModel string
	http       *http.Client
}

// NewClient creates a Gemini client.
func NewClient(apiURL, apiKey, textModel, voiceModel string) *Client {
	return &Client{
		apiURL:     strings.TrimRight(apiURL, "/"),
		apiKey:     apiKey,
		textModel:  textModel,
		voiceModel: voiceModel,
		http:       &http.Client{Timeout: 120 * time.Second},
	}
}

// ScriptRequest carries everything the showrunner prompt needs.
type ScriptRequest struct {
	Program     *model.Program
	Characters  []model.Character
	Topic       string
	InputType   model.InputType
	NewsContent string
}

// ScriptResult is the parsed generation output.
type ScriptResult struct {
	Title   string
	Summary string
	Lines   []ScriptLine
}

// ScriptLine is one generated utterance before it gets a stable id.
type ScriptLine struct {
	CharacterID string `json:"characterId"`
	Text        string `json:"text"`
}

// request/response shapes for the generateContent endpoint.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generationConfig struct {
	ResponseMimeType   string        `json:"responseMimeType,omitempty"`
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoice `json:"prebuiltVoiceConfig"`
}

type prebuiltVoice struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// scriptJSON is the JSON document the script prompt asks for.
type scriptJSON struct {
	Title   string       `json:"title"`
	Summary string       `json:"summary"`
	Lines   []ScriptLine `json:"lines"`
}

// GenerateScript asks the text model to write a full episode script.
func (c *Client) GenerateScript(ctx context.Context, req ScriptRequest) (*ScriptResult, error) {
	body := generateRequest{
		Contents:         []content{{Parts: []part{{Text: buildScriptPrompt(req)}}}},
		GenerationConfig: &generationConfig{ResponseMimeType: "application/json"},
	}

	resp, err := c.generate(ctx, c.textModel, body)
	if err != nil {
		return nil, err
	}

	text := firstText(resp)
	if text == "" {
		return nil, fmt.Errorf("%w: empty script response", ErrGeneration)
	}

	var doc scriptJSON
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid script JSON: %v", ErrGeneration, err)
	}
	if len(doc.Lines) == 0 {
		return nil, fmt.Errorf("%w: script has no lines", ErrGeneration)
	}

	if doc.Title == "" {
		doc.Title = "New Episode"
	}
	if doc.Summary == "" {
		doc.Summary = "No summary available."
	}
	return &ScriptResult{Title: doc.Title, Summary: doc.Summary, Lines: doc.Lines}, nil
}

// GenerateAudio synthesizes one line of speech with the given prebuilt
// voice and returns base64 raw PCM.
func (c *Client) GenerateAudio(ctx context.Context, text, voice string) (string, error) {
	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoice{VoiceName: voice}},
			},
		},
	}

	resp, err := c.generate(ctx, c.voiceModel, body)
	if err != nil {
		return "", err
	}

	audio := firstInlineData(resp)
	if audio == "" {
		return "", fmt.Errorf("%w: no audio data returned", ErrGeneration)
	}
	return audio, nil
}

func (c *Client) generate(ctx context.Context, mdl string, body generateRequest) (*generateResponse, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.apiURL, mdl)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, string(bodyBytes))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if result.Error != nil {
		return nil, fmt.Errorf("%w: API error %d: %s", ErrGeneration, result.Error.Code, result.Error.Message)
	}
	return &result, nil
}

func firstText(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

func firstInlineData(resp *generateResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData != nil && p.InlineData.Data != "" {
				return p.InlineData.Data
			}
		}
	}
	return ""
}
