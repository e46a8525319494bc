package gemini

import "context"

type stubGenerator struct {
	response    string
	err         error
	lastRequest Request
	calls       int
}

func (s *stubGenerator) Generate(_ context.Context, req Request) (string, error) {
	s.calls++
	s.lastRequest = req
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}
