package ai

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// Inference failure taxonomy. Every failure from the client matches exactly
// one sentinel under errors.Is.
var (
	// ErrInvalidRequest indicates the request was rejected as malformed (400-class).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrAuthFailure indicates a missing or rejected API key (401/403-class).
	ErrAuthFailure = errors.New("auth failure")

	// ErrRateLimited indicates the provider throttled the request (429-class).
	ErrRateLimited = errors.New("rate limited")

	// ErrServerError indicates any other non-2xx or transport failure.
	ErrServerError = errors.New("server error")

	// ErrEmptyResponse indicates a 2xx response with no usable content.
	ErrEmptyResponse = errors.New("empty response")
)

// Failure wraps an inference error with its classification and the upstream
// message when one was available.
type Failure struct {
	kind       error
	Message    string // upstream error payload message, may be empty
	StatusCode int
}

func (f *Failure) Error() string {
	if f.Message == "" {
		return f.kind.Error()
	}
	return fmt.Sprintf("%s: %s", f.kind.Error(), f.Message)
}

func (f *Failure) Unwrap() error {
	return f.kind
}

// UserMessage renders the failure for display in conversation content,
// preferring the upstream message with a per-kind generic fallback.
func (f *Failure) UserMessage() string {
	switch f.kind {
	case ErrInvalidRequest:
		return "リクエストが無効です: " + orDefault(f.Message, "メッセージを確認してください。")
	case ErrAuthFailure:
		return "APIキーエラー: " + orDefault(f.Message, "APIキーが無効です。設定画面で正しいAPIキーを入力してください。")
	case ErrRateLimited:
		return "レート制限: " + orDefault(f.Message, "APIリクエストの制限に達しました。しばらく待ってから再試行してください。")
	case ErrEmptyResponse:
		return "APIからの応答が空でした。"
	default:
		if f.StatusCode > 0 {
			return fmt.Sprintf("APIエラー (%d): %s", f.StatusCode, orDefault(f.Message, "リクエストに失敗しました。"))
		}
		return "APIエラー: " + orDefault(f.Message, "リクエストに失敗しました。")
	}
}

// Classify maps a provider error onto the failure taxonomy, preserving the
// upstream message. Errors that are already classified pass through.
func Classify(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	status := 0
	message := ""

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
		if reqErr.Err != nil {
			message = reqErr.Err.Error()
		}
	default:
		message = err.Error()
	}

	return &Failure{
		kind:       kindForStatus(status),
		Message:    message,
		StatusCode: status,
	}
}

func kindForStatus(status int) error {
	switch {
	case status == 400:
		return ErrInvalidRequest
	case status == 401 || status == 403:
		return ErrAuthFailure
	case status == 429:
		return ErrRateLimited
	default:
		return ErrServerError
	}
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
