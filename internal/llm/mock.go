package llm

import (
	"context"
	"sync"
)

// MockClient permite tests sin llamar a un LLM real. Registra la ultima conversacion recibida.
type MockClient struct {
	Response string
	Err      error

	mu           sync.Mutex
	Calls        int
	LastMessages []Message
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	return m.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}})
}

func (m *MockClient) Chat(_ context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.LastMessages = append([]Message(nil), messages...)
	return m.Response, m.Err
}
