package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	headerTranscript = "X-Transcript"
	headerResponse   = "X-Response"

	audioFilename = "audio.wav"

	// maxErrorBodyBytes caps how much of a failure body is surfaced to the
	// user notification.
	maxErrorBodyBytes = 2048
)

// ErrRateLimited is returned when the backend rejects a submission with a
// rate-limit status. It is reported to the user distinctly from other
// submission failures.
var ErrRateLimited = errors.New("too many requests")

// SubmissionError is any non-rate-limit submission failure. Message carries
// the server-provided body text when one was present; an empty Message means
// the caller should fall back to a generic notification.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("submission failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("submission failed with status %d: %s", e.StatusCode, e.Message)
}

// Request carries one turn submission. Text and Audio are mutually
// exclusive; History holds all prior transcript entries, oldest first.
type Request struct {
	Text             string
	Audio            []byte
	AudioContentType string
	History          []Message
}

// Response is a validated successful submission result. Body streams the
// synthesized reply audio and is owned by the caller, who must close it.
type Response struct {
	Transcript string
	Reply      string
	Body       io.ReadCloser
}

type Client struct {
	endpoint   string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithHTTPClient replaces the transport used for submissions. Useful for
// tests and for callers that need custom timeout behavior; timeouts are
// otherwise left to the underlying transport.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(endpoint string, opts ...ClientOption) *Client {
	client := &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Submit ships one turn to the backend and validates the response envelope.
//
// On success the returned Response carries the decoded transcript and reply
// headers plus the still-open audio body. Failures are classified:
// [ErrRateLimited] for a 429, [*SubmissionError] for everything else. A
// submission is not cancellable once issued beyond ctx's own semantics.
func (c *Client) Submit(ctx context.Context, request Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "submit turn")
	defer span.End()
	span.SetAttributes(
		attribute.Bool("turn.audio_input", len(request.Audio) > 0),
		attribute.Int("turn.history_messages", len(request.History)),
	)

	body, contentType, err := encodeForm(request)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build submission request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", contentType)

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		recordedErr := fmt.Errorf("failed to submit turn: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}

	if httpResponse.StatusCode == http.StatusTooManyRequests {
		discardBody(httpResponse.Body)
		span.SetStatus(codes.Error, ErrRateLimited.Error())
		return nil, ErrRateLimited
	}

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		message := readErrorBody(httpResponse.Body)
		submissionErr := &SubmissionError{StatusCode: httpResponse.StatusCode, Message: message}
		span.RecordError(submissionErr)
		span.SetStatus(codes.Error, submissionErr.Error())
		return nil, submissionErr
	}

	transcript, transcriptOK := decodeHeader(httpResponse.Header, headerTranscript)
	reply, replyOK := decodeHeader(httpResponse.Header, headerResponse)
	if !transcriptOK || !replyOK || httpResponse.Body == nil {
		discardBody(httpResponse.Body)
		submissionErr := &SubmissionError{StatusCode: httpResponse.StatusCode}
		span.RecordError(submissionErr)
		span.SetStatus(codes.Error, "response missing transcript or reply")
		return nil, submissionErr
	}

	return &Response{
		Transcript: transcript,
		Reply:      reply,
		Body:       httpResponse.Body,
	}, nil
}

func encodeForm(request Request) (*bytes.Buffer, string, error) {
	hasText := request.Text != ""
	hasAudio := len(request.Audio) > 0
	if hasText == hasAudio {
		return nil, "", fmt.Errorf("submission requires exactly one of text or audio input")
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if hasAudio {
		partHeader := make(textproto.MIMEHeader)
		partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="input"; filename=%q`, audioFilename))
		partHeader.Set("Content-Type", request.AudioContentType)
		part, err := writer.CreatePart(partHeader)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create audio form part: %w", err)
		}
		if _, err := part.Write(request.Audio); err != nil {
			return nil, "", fmt.Errorf("failed to write audio form part: %w", err)
		}
	} else {
		if err := writer.WriteField("input", request.Text); err != nil {
			return nil, "", fmt.Errorf("failed to write text form field: %w", err)
		}
	}

	for _, message := range request.History {
		serialized, err := json.Marshal(message)
		if err != nil {
			return nil, "", fmt.Errorf("failed to serialize transcript message: %w", err)
		}
		if err := writer.WriteField("message", string(serialized)); err != nil {
			return nil, "", fmt.Errorf("failed to write transcript form field: %w", err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// decodeHeader reads a percent-encoded transport header. Missing, empty, or
// undecodable values all count as absent so the caller treats the response
// as a generic failure.
func decodeHeader(header http.Header, key string) (string, bool) {
	raw := header.Get(key)
	if raw == "" {
		return "", false
	}

	decoded, err := url.PathUnescape(raw)
	if err != nil || decoded == "" {
		return "", false
	}

	return decoded, true
}

func readErrorBody(body io.ReadCloser) string {
	if body == nil {
		return ""
	}
	defer body.Close()

	text, err := io.ReadAll(io.LimitReader(body, maxErrorBodyBytes))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(text))
}

func discardBody(body io.ReadCloser) {
	if body == nil {
		return
	}

	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxErrorBodyBytes))
	body.Close()
}
