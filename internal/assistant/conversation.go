// Package assistant keeps the transcript of a chat with the backend's AI
// assistant. Answers are produced by the backend.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

var (
	ErrEmptyQuery   = errors.New("query is empty")
	ErrMissingInput = errors.New("instruction and department are both required")
)

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Message is one entry of the transcript
type Message struct {
	ID         string                `json:"id" yaml:"id"`
	Role       Role                  `json:"role" yaml:"role"`
	Content    string                `json:"content" yaml:"content"`
	Time       time.Time             `json:"timestamp" yaml:"timestamp"`
	Operation  string                `json:"operation,omitempty" yaml:"operation,omitempty"`
	Resources  []model.Resource      `json:"resources,omitempty" yaml:"resources,omitempty"`
	Statistics *model.ChatStatistics `json:"statistics,omitempty" yaml:"statistics,omitempty"`
	Failed     bool                  `json:"failed,omitempty" yaml:"failed,omitempty"`
}

// Backend is the part of the API client a conversation uses
type Backend interface {
	AIStatus(ctx context.Context) (*model.AIStatus, error)
	Chat(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error)
	CRUD(ctx context.Context, req *model.CRUDRequest) (*model.CRUDResponse, error)
}

// Conversation is safe for concurrent use
type Conversation struct {
	backend Backend
	now     func() time.Time

	mu        sync.Mutex
	messages  []Message
	sessionID string
}

func New(backend Backend) *Conversation {
	return &Conversation{backend: backend, now: time.Now}
}

// Online reports whether the backend has an AI provider configured. A failed
// check counts as offline, except that authentication errors are returned.
func (c *Conversation) Online(ctx context.Context) (bool, error) {
	status, err := c.backend.AIStatus(ctx)
	if errors.Is(err, client.ErrNotAuthenticated) || errors.Is(err, client.ErrUnauthorized) {
		return false, err
	}
	if err != nil {
		log.Debug("AI status check failed", "error", err)
		return false, nil
	}
	return status.GroqAPIConfigured, nil
}

// Ask sends a natural-language query. A failed call still adds an error
// message to the transcript.
func (c *Conversation) Ask(ctx context.Context, query string) (Message, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Message{}, ErrEmptyQuery
	}

	c.mu.Lock()
	c.append(User, query)
	req := &model.ChatRequest{Query: query}
	if c.sessionID != "" {
		sid := c.sessionID
		req.SessionID = &sid
	}
	c.mu.Unlock()

	resp, err := c.backend.Chat(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Error("Chat request failed", "error", err)
		msg := c.append(Assistant, "I encountered an error while processing your request: "+client.Describe(err))
		msg.Failed = true
		c.messages[len(c.messages)-1] = msg
		return msg, err
	}

	if resp.SessionID != "" {
		c.sessionID = resp.SessionID
	}
	msg := c.append(Assistant, resp.Response)
	msg.Resources = resp.Resources
	msg.Statistics = resp.Statistics
	c.messages[len(c.messages)-1] = msg
	return msg, nil
}

// Instruct asks the assistant to change data in department
func (c *Conversation) Instruct(ctx context.Context, instruction, department string) (Message, error) {
	instruction = strings.TrimSpace(instruction)
	department = strings.TrimSpace(department)
	if instruction == "" || department == "" {
		return Message{}, ErrMissingInput
	}

	c.mu.Lock()
	c.append(User, fmt.Sprintf("Instruction: %s\nTarget department: %s", instruction, department))
	c.mu.Unlock()

	resp, err := c.backend.CRUD(ctx, &model.CRUDRequest{Instruction: instruction, Department: department})

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		log.Error("CRUD instruction failed", "department", department, "error", err)
		msg := c.append(Assistant, "Operation failed: "+client.Describe(err))
		msg.Failed = true
		c.messages[len(c.messages)-1] = msg
		return msg, err
	}

	log.Info("CRUD instruction applied", "operation", resp.Operation, "department", department)
	msg := c.append(Assistant, resp.Details)
	msg.Operation = resp.Operation
	c.messages[len(c.messages)-1] = msg
	return msg, nil
}

// append adds a message; callers hold mu
func (c *Conversation) append(role Role, content string) Message {
	msg := Message{ID: uuid.NewString(), Role: role, Content: content, Time: c.now()}
	c.messages = append(c.messages, msg)
	return msg
}

// Messages returns the transcript in order
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// SessionID is the backend chat session, empty until the backend assigns one
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}
