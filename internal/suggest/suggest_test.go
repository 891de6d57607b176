package suggest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/unit-planner/internal/suggest"
)

func TestCannedProvider_Kinds(t *testing.T) {
	p := suggest.NewCannedProvider()
	ctx := context.Background()

	outcomes, err := p.Suggest(ctx, suggest.Request{Type: suggest.KindOutcomes})
	if err != nil || len(outcomes.Texts) != 4 {
		t.Errorf("outcomes = %v, %v", outcomes.Texts, err)
	}

	process, _ := p.Suggest(ctx, suggest.Request{Type: suggest.KindProcess, Topics: []string{"Fractions", "Decimals"}})
	if !strings.Contains(process.Texts[0], "Fractions") {
		t.Errorf("process[0] = %q, want first topic", process.Texts[0])
	}

	general, _ := p.Suggest(ctx, suggest.Request{Type: suggest.KindProcess})
	if !strings.Contains(general.Texts[0], "General") {
		t.Errorf("process without topics = %q, want General", general.Texts[0])
	}

	assessments, _ := p.Suggest(ctx, suggest.Request{Type: suggest.KindAssessments})
	if len(assessments.Assessments) != 3 || assessments.Assessments[1].Category != "speaking" {
		t.Errorf("assessments = %+v", assessments.Assessments)
	}
}

func TestCannedProvider_SkipsExistingItems(t *testing.T) {
	p := suggest.NewCannedProvider()

	resp, _ := p.Suggest(context.Background(), suggest.Request{
		Type:          suggest.KindAssessments,
		ExistingItems: []string{"peer debate "},
	})
	for _, a := range resp.Assessments {
		if a.Title == "Peer Debate" {
			t.Error("existing assessment suggested again")
		}
	}
	if len(resp.Assessments) != 2 {
		t.Errorf("len = %d, want 2", len(resp.Assessments))
	}
}

func TestResponse_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		resp suggest.Response
		want string
	}{
		{"texts", suggest.Response{Type: suggest.KindOutcomes, Texts: []string{"a"}}, `{"suggestions":["a"]}`},
		{"empty texts", suggest.Response{Type: suggest.KindProcess}, `{"suggestions":[]}`},
		{"assessments", suggest.Response{Type: suggest.KindAssessments, Assessments: []suggest.AssessmentIdea{{Title: "T", Description: "D", Category: "C"}}},
			`{"suggestions":[{"title":"T","description":"D","category":"C"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Marshal() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRemoteProvider_Suggest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		var req suggest.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Type != suggest.KindAssessments || req.Month != "June 2024" {
			t.Errorf("request = %+v", req)
		}
		w.Write([]byte(`{"suggestions":[{"title":"Essay","description":"Write","category":"writing"}]}`))
	}))
	defer server.Close()

	p := suggest.NewRemoteProvider(server.URL)
	resp, err := p.Suggest(context.Background(), suggest.Request{Type: suggest.KindAssessments, Month: "June 2024"})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if len(resp.Assessments) != 1 || resp.Assessments[0].Title != "Essay" {
		t.Errorf("Assessments = %+v", resp.Assessments)
	}
}

func TestRemoteProvider_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"error payload", http.StatusOK, `{"error":"quota exceeded"}`},
		{"malformed body", http.StatusOK, `not json`},
		{"wrong shape", http.StatusOK, `{"suggestions":[{"title":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := suggest.NewRemoteProvider(server.URL)
			_, err := p.Suggest(context.Background(), suggest.Request{Type: suggest.KindOutcomes})
			if !errors.Is(err, suggest.ErrUnavailable) {
				t.Errorf("Suggest() error = %v, want ErrUnavailable", err)
			}
		})
	}
}

func TestRemoteProvider_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	p := suggest.NewRemoteProvider(server.URL, suggest.WithTimeout(20*time.Millisecond))
	_, err := p.Suggest(context.Background(), suggest.Request{Type: suggest.KindOutcomes})
	if !errors.Is(err, suggest.ErrUnavailable) {
		t.Errorf("Suggest() error = %v, want ErrUnavailable", err)
	}
}

func TestRouter_Fallback(t *testing.T) {
	router := suggest.NewRouter()
	router.Register("remote", &suggest.CannedProvider{Err: errors.New("connection refused")})
	router.Register("canned", suggest.NewCannedProvider())

	resp, err := router.Suggest(context.Background(), suggest.Request{Type: suggest.KindOutcomes})
	if err != nil {
		t.Fatalf("Suggest() error = %v", err)
	}
	if resp.Len() != 4 {
		t.Errorf("Len() = %d, want 4", resp.Len())
	}
}

func TestRouter_AllProvidersFail(t *testing.T) {
	router := suggest.NewRouter()
	router.Register("a", &suggest.CannedProvider{Err: errors.New("down")})

	_, err := router.Suggest(context.Background(), suggest.Request{Type: suggest.KindOutcomes})
	if !errors.Is(err, suggest.ErrUnavailable) {
		t.Errorf("Suggest() error = %v, want ErrUnavailable", err)
	}
	if router.HealthCheck(context.Background()) == nil {
		t.Error("HealthCheck() should fail when every provider is down")
	}
}

func TestRouter_NoProviders(t *testing.T) {
	router := suggest.NewRouter()
	_, err := router.Suggest(context.Background(), suggest.Request{Type: suggest.KindOutcomes})
	if !errors.Is(err, suggest.ErrUnavailable) {
		t.Errorf("Suggest() error = %v, want ErrUnavailable", err)
	}
}

func TestRouter_InvalidKind(t *testing.T) {
	router := suggest.NewRouter()
	router.Register("canned", suggest.NewCannedProvider())

	_, err := router.Suggest(context.Background(), suggest.Request{Type: "poems"})
	if !errors.Is(err, suggest.ErrInvalidKind) {
		t.Errorf("Suggest() error = %v, want ErrInvalidKind", err)
	}
}
