package assistant

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/session"
)

func setup(t *testing.T) (*apitest.Server, *Conversation) {
	t.Helper()
	srv := apitest.NewServer(t)
	c := client.New(srv.APIURL(), session.New(nil, nil))
	if _, err := c.Login(context.Background(), apitest.Email, apitest.Password); err != nil {
		t.Fatal(err)
	}
	return srv, New(c)
}

func TestAskKeepsTranscript(t *testing.T) {
	_, conv := setup(t)
	ctx := context.Background()

	msg, err := conv.Ask(ctx, "  how many assets in CSE?  ")
	if err != nil {
		t.Fatal(err)
	}
	if msg.Role != Assistant || msg.Content != "Found 2 matching resources." {
		t.Errorf("answer = %+v", msg)
	}
	if msg.Statistics == nil || msg.Statistics.TotalResources != 2 {
		t.Errorf("statistics = %+v", msg.Statistics)
	}

	msgs := conv.Messages()
	if len(msgs) != 2 || msgs[0].Role != User || msgs[0].Content != "how many assets in CSE?" {
		t.Errorf("transcript = %+v", msgs)
	}
	if conv.SessionID() != "chat-1" {
		t.Errorf("session = %q", conv.SessionID())
	}
}

func TestAskFailureIsRecorded(t *testing.T) {
	srv, conv := setup(t)
	srv.FailNext("POST /api/ai/chat", http.StatusBadGateway, "model unavailable")

	msg, err := conv.Ask(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !msg.Failed || !strings.Contains(msg.Content, "model unavailable") {
		t.Errorf("message = %+v", msg)
	}
	if n := len(conv.Messages()); n != 2 {
		t.Errorf("transcript has %d messages", n)
	}
}

func TestAskRejectsBlank(t *testing.T) {
	srv, conv := setup(t)
	if _, err := conv.Ask(context.Background(), "   "); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("err = %v", err)
	}
	if srv.Count(http.MethodPost, "/api/ai/chat") != 0 {
		t.Error("blank query was sent")
	}
}

func TestInstruct(t *testing.T) {
	_, conv := setup(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		instruction string
		department  string
		wantErr     bool
		wantInput   bool
	}{
		{"applied", "add 5 laptops to LabA", "CSE", false, false},
		{"unknown department", "add a lathe", "MECH", true, false},
		{"blank department", "add a lathe", " ", true, true},
		{"blank instruction", "", "CSE", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := conv.Instruct(ctx, tt.instruction, tt.department)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v", err)
			}
			if tt.wantInput != errors.Is(err, ErrMissingInput) {
				t.Errorf("err = %v", err)
			}
			if !tt.wantErr && msg.Operation != "CREATE" {
				t.Errorf("message = %+v", msg)
			}
			if tt.wantErr && !tt.wantInput && !msg.Failed {
				t.Errorf("failure not recorded: %+v", msg)
			}
		})
	}
}

func TestOnline(t *testing.T) {
	srv, conv := setup(t)
	ctx := context.Background()

	if online, err := conv.Online(ctx); !online || err != nil {
		t.Errorf("Online() = %v, %v, want online", online, err)
	}
	srv.SetAIOnline(false)
	if online, err := conv.Online(ctx); online || err != nil {
		t.Errorf("Online() = %v, %v, want offline", online, err)
	}
	srv.FailNext("GET /api/ai/status", http.StatusInternalServerError, "boom")
	if online, err := conv.Online(ctx); online || err != nil {
		t.Errorf("Online() = %v, %v, a failed status check should read as offline", online, err)
	}
}

func TestOnlineReportsAuthErrors(t *testing.T) {
	srv, conv := setup(t)
	ctx := context.Background()

	srv.SetToken("rotated")
	if _, err := conv.Online(ctx); !errors.Is(err, client.ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
	if _, err := conv.Online(ctx); !errors.Is(err, client.ErrNotAuthenticated) {
		t.Errorf("err after sign-out = %v, want ErrNotAuthenticated", err)
	}
}
