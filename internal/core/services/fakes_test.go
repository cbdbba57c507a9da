package services

import (
	"context"
	"fmt"
	"sync"
)

// fakeGenerator answers from canned results and records every call
type fakeGenerator struct {
	mu       sync.Mutex
	text     string
	textErr  error
	images   map[string]string // prompt prefix -> data URI
	imageErr error
	disabled bool

	textCalls  []TextRequest
	imageCalls []string
}

func (f *fakeGenerator) Enabled() bool { return !f.disabled }

func (f *fakeGenerator) GenerateText(_ context.Context, req TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls = append(f.textCalls, req)
	if f.disabled {
		return "", ErrAIDisabled
	}
	return f.text, f.textErr
}

func (f *fakeGenerator) GenerateImage(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls = append(f.imageCalls, prompt)
	if f.disabled {
		return "", ErrAIDisabled
	}
	if f.imageErr != nil {
		return "", f.imageErr
	}
	for prefix, img := range f.images {
		if len(prompt) >= len(prefix) && prompt[:len(prefix)] == prefix {
			return img, nil
		}
	}
	return "", fmt.Errorf("no image for prompt %q", prompt)
}

func (f *fakeGenerator) imageCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.imageCalls)
}
