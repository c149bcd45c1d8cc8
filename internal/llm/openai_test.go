package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/pkg/apperr"
)

func TestOpenAIComplete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s, want /v1/chat/completions", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"done"}}],"usage":{"total_tokens":77}}`))
	}))
	defer srv.Close()

	b := NewOpenAI(srv.URL+"/v1/", "sk-test", srv.Client(), logger.Discard())
	resp, err := b.Complete(context.Background(), Request{
		Model:       "gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.2,
		Messages:    []Message{{Role: RoleSystem, Content: "sys"}, {Role: RoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Text != "done" || resp.TokensUsed != 77 {
		t.Errorf("Complete() = %+v, want done/77", resp)
	}
	if got.Model != "gpt-4o-mini" || got.MaxTokens != 256 || len(got.Messages) != 2 {
		t.Errorf("request body = %+v", got)
	}
}

func TestOpenAIStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		code   apperr.Code
	}{
		{http.StatusTooManyRequests, apperr.CodeRateLimited},
		{http.StatusBadGateway, apperr.CodeUnavailable},
		{http.StatusBadRequest, apperr.CodeInvalidArgument},
		{http.StatusUnauthorized, apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			b := NewOpenAI(srv.URL, "", srv.Client(), logger.Discard())
			_, err := b.Complete(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
			if !apperr.IsCode(err, tt.code) {
				t.Errorf("Complete() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOpenAIEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	b := NewOpenAI(srv.URL, "", srv.Client(), logger.Discard())
	if _, err := b.Complete(context.Background(), Request{}); err == nil {
		t.Fatal("Complete() should fail on empty choices")
	}
}
