package backend

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestSubmitEncodesTextInputAndHistory(t *testing.T) {
	var gotInput string
	var gotMessages []Message

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("failed to parse multipart form: %v", err)
		}
		gotInput = r.FormValue("input")
		for _, serialized := range r.MultipartForm.Value["message"] {
			var message Message
			if err := json.Unmarshal([]byte(serialized), &message); err != nil {
				t.Errorf("failed to decode message field: %v", err)
			}
			gotMessages = append(gotMessages, message)
		}

		w.Header().Set("X-Transcript", url.PathEscape("hello"))
		w.Header().Set("X-Response", url.PathEscape("hi there"))
		w.Write([]byte("audio-bytes"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	response, err := client.Submit(t.Context(), Request{
		Text: "hello",
		History: []Message{
			{Role: RoleUser, Content: "earlier"},
			{Role: RoleAssistant, Content: "reply", Latency: 120},
		},
	})
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	defer response.Body.Close()

	if gotInput != "hello" {
		t.Fatalf("expected input field %q, got %q", "hello", gotInput)
	}
	if len(gotMessages) != 2 {
		t.Fatalf("expected 2 message fields, got %d", len(gotMessages))
	}
	if gotMessages[0].Role != RoleUser || gotMessages[0].Content != "earlier" {
		t.Fatalf("expected oldest message first, got %+v", gotMessages[0])
	}
	if gotMessages[1].Latency != 120 {
		t.Fatalf("expected latency to survive serialization, got %+v", gotMessages[1])
	}

	if response.Transcript != "hello" || response.Reply != "hi there" {
		t.Fatalf("expected decoded headers, got %q %q", response.Transcript, response.Reply)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("expected body to stream, got %v", err)
	}
	if string(body) != "audio-bytes" {
		t.Fatalf("expected body %q, got %q", "audio-bytes", body)
	}
}

func TestSubmitEncodesAudioInputAsWAVUpload(t *testing.T) {
	var gotFilename string
	var gotContentType string
	var gotAudio []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, fileHeader, err := r.FormFile("input")
		if err != nil {
			t.Errorf("expected audio file part: %v", err)
			http.Error(w, "missing input", http.StatusBadRequest)
			return
		}
		defer file.Close()
		gotFilename = fileHeader.Filename
		gotContentType = fileHeader.Header.Get("Content-Type")
		gotAudio, _ = io.ReadAll(file)

		w.Header().Set("X-Transcript", url.PathEscape("spoken words"))
		w.Header().Set("X-Response", url.PathEscape("a reply"))
		w.Write([]byte{0x00})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	response, err := client.Submit(t.Context(), Request{
		Audio:            []byte{0x01, 0x02, 0x03},
		AudioContentType: "audio/wav",
	})
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	response.Body.Close()

	if gotFilename != "audio.wav" {
		t.Fatalf("expected filename audio.wav, got %q", gotFilename)
	}
	if gotContentType != "audio/wav" {
		t.Fatalf("expected content type audio/wav, got %q", gotContentType)
	}
	if len(gotAudio) != 3 {
		t.Fatalf("expected 3 audio bytes, got %d", len(gotAudio))
	}
}

func TestSubmitRejectsAmbiguousInput(t *testing.T) {
	client := NewClient("http://unused.invalid")

	if _, err := client.Submit(t.Context(), Request{}); err == nil {
		t.Fatalf("expected empty request to be rejected")
	}
	if _, err := client.Submit(t.Context(), Request{Text: "hi", Audio: []byte{0x01}}); err == nil {
		t.Fatalf("expected text+audio request to be rejected")
	}
}

func TestSubmitReportsRateLimitDistinctly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.Submit(t.Context(), Request{Text: "hello"}); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestSubmitSurfacesServerErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Submit(t.Context(), Request{Text: "hello"})

	var submissionErr *SubmissionError
	if !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if submissionErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", submissionErr.StatusCode)
	}
	if submissionErr.Message != "model overloaded" {
		t.Fatalf("expected server body text, got %q", submissionErr.Message)
	}
}

func TestSubmitTreatsMissingHeadersAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Transcript", url.PathEscape("only transcript"))
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Submit(t.Context(), Request{Text: "hello"})

	var submissionErr *SubmissionError
	if !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError for missing reply header, got %v", err)
	}
	if submissionErr.Message != "" {
		t.Fatalf("expected empty message so callers use the generic fallback, got %q", submissionErr.Message)
	}
}

func TestSubmitDecodesPercentEncodedHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Transcript", "what%27s%20up%3F")
		w.Header().Set("X-Response", "not%20much")
		w.Write([]byte("audio"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	response, err := client.Submit(t.Context(), Request{Text: "hello"})
	if err != nil {
		t.Fatalf("expected submission to succeed, got %v", err)
	}
	response.Body.Close()

	if response.Transcript != "what's up?" {
		t.Fatalf("expected decoded transcript, got %q", response.Transcript)
	}
	if response.Reply != "not much" {
		t.Fatalf("expected decoded reply, got %q", response.Reply)
	}
}

func TestSubmitErrorBodyIsTrimmed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("  broken  \n"))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Submit(t.Context(), Request{Text: "hello"})

	var submissionErr *SubmissionError
	if !errors.As(err, &submissionErr) {
		t.Fatalf("expected SubmissionError, got %v", err)
	}
	if submissionErr.Message != "broken" || strings.Contains(submissionErr.Message, "\n") {
		t.Fatalf("expected trimmed body text, got %q", submissionErr.Message)
	}
}
