package test

import (
	"context"
	"strings"
	"sync"
)

// MockCommandRunner is a shared mock implementation of runner.CommandRunner for
// testing. It tracks executed commands and allows setting up responses and
// errors keyed by a substring of the full command line.
type MockCommandRunner struct {
	mu        sync.Mutex
	Commands  []string          // Track executed command lines
	Responses map[string][]byte // Response by command-line substring
	Errors    map[string]error  // Error by command-line substring
	Default   []byte            // Response when nothing matches
}

// NewMockCommandRunner creates a new MockCommandRunner with initialized maps.
func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{
		Commands:  []string{},
		Responses: make(map[string][]byte),
		Errors:    make(map[string]error),
	}
}

// Run simulates running a command and returns the configured response or error.
func (r *MockCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := name + " " + strings.Join(args, " ")
	r.Commands = append(r.Commands, line)

	for key, err := range r.Errors {
		if strings.Contains(line, key) {
			return nil, err
		}
	}
	for key, resp := range r.Responses {
		if strings.Contains(line, key) {
			return resp, nil
		}
	}
	return r.Default, nil
}

// SetResponse configures a response for command lines containing key.
func (r *MockCommandRunner) SetResponse(key string, response []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Responses[key] = response
}

// SetError configures an error for command lines containing key.
func (r *MockCommandRunner) SetError(key string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors[key] = err
}

// Reset clears all tracked commands and configurations.
func (r *MockCommandRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Commands = []string{}
	r.Responses = make(map[string][]byte)
	r.Errors = make(map[string]error)
	r.Default = nil
}
