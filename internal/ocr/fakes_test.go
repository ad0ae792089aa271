package ocr

import (
	"context"
	"errors"
	"sync"

	"github.com/joseph-ayodele/lease-intake/constants"
)

type getCall struct {
	jobID string
	token string
}

type fakeService struct {
	mu sync.Mutex

	detectBlocks []Block
	detectErr    error
	detectCalls  int

	startJobID string
	startErr   error
	startCalls int
	started    []string

	// polls are returned in order for calls without a token
	polls []pollReply
	// pages are keyed by continuation token
	pages    map[string]Page
	getCalls []getCall
}

type pollReply struct {
	page Page
	err  error
}

func (f *fakeService) DetectText(_ context.Context, _ []byte) ([]Block, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectCalls++
	return f.detectBlocks, f.detectErr
}

func (f *fakeService) StartDetection(_ context.Context, bucket, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.startCalls++
	f.started = append(f.started, bucket+"/"+key)
	return f.startJobID, f.startErr
}

func (f *fakeService) GetDetection(_ context.Context, jobID, token string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls = append(f.getCalls, getCall{jobID: jobID, token: token})
	if token != "" {
		p, ok := f.pages[token]
		if !ok {
			return Page{}, errors.New("unknown token")
		}
		return p, nil
	}
	if len(f.polls) == 0 {
		return Page{Status: constants.JobStatusInProgress}, nil
	}
	r := f.polls[0]
	f.polls = f.polls[1:]
	return r.page, r.err
}

func (f *fakeService) tokenCalls() int {
	n := 0
	for _, c := range f.getCalls {
		if c.token != "" {
			n++
		}
	}
	return n
}

type fakeStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string][]byte{}}
}

func (s *fakeStore) Bucket() string { return "lease-bucket" }

func (s *fakeStore) Put(_ context.Context, key string, body []byte, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	s.objects[key] = body
	return nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[key]
	return ok, nil
}

func line(text string) Block {
	return Block{Type: constants.BlockTypeLine, Text: text, Confidence: 95}
}

func word(text string) Block {
	return Block{Type: "WORD", Text: text, Confidence: 95}
}

func inProgress() pollReply {
	return pollReply{page: Page{Status: constants.JobStatusInProgress}}
}
