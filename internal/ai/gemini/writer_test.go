package gemini

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
)

func TestWriterEnhanceBio(t *testing.T) {
	stub := &stubGenerator{response: "\"Product designer turning research into shipped features.\"\n"}
	writer := NewWriter(stub, zap.NewNop())

	got := writer.EnhanceBio(context.Background(), "i design stuff")
	if got != "Product designer turning research into shipped features." {
		t.Fatalf("unexpected bio: %q", got)
	}
	if !strings.Contains(stub.lastRequest.Prompt, "i design stuff") {
		t.Fatalf("expected bio in prompt")
	}
}

func TestWriterEnhanceBioKeepsOriginalOnFailure(t *testing.T) {
	writer := NewWriter(&stubGenerator{err: ai.Errorf(ai.ErrNetwork, "boom")}, zap.NewNop())

	if got := writer.EnhanceBio(context.Background(), "raw bio"); got != "raw bio" {
		t.Fatalf("expected original bio, got %q", got)
	}
}

func TestWriterIcebreakers(t *testing.T) {
	stub := &stubGenerator{response: "1. How did you move from design into fintech?\n\n- What is 3D printing teaching you about hardware?\nok\n* Which mentor shaped your career most?\n4) An extra line that must be dropped."}
	writer := NewWriter(stub, zap.NewNop())

	got := writer.Icebreakers(context.Background(), "Sarah Chen", "Designer at N26")
	want := []string{
		"How did you move from design into fintech?",
		"What is 3D printing teaching you about hardware?",
		"Which mentor shaped your career most?",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected icebreakers:\n got: %q\nwant: %q", got, want)
	}
}

func TestWriterIcebreakersFallback(t *testing.T) {
	cases := map[string]*stubGenerator{
		"error":      {err: ai.Errorf(ai.ErrNetwork, "down")},
		"only noise": {response: "-\n\n1.\nok"},
	}

	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			writer := NewWriter(stub, zap.NewNop())
			got := writer.Icebreakers(context.Background(), "Mike", "")
			if !reflect.DeepEqual(got, fallbackIcebreakers) {
				t.Fatalf("expected fallback icebreakers, got %q", got)
			}

			got[0] = "mutated"
			if fallbackIcebreakers[0] == "mutated" {
				t.Fatalf("fallback slice must not be shared with callers")
			}
		})
	}
}

func TestWriterBriefing(t *testing.T) {
	stub := &stubGenerator{response: "Fintech hiring is picking up in Berlin this quarter."}
	writer := NewWriter(stub, zap.NewNop())

	got := writer.Briefing(context.Background(), ai.BriefingSubject{
		Name:     "Sarah",
		Industry: "Fintech",
		Role:     "Designer",
		Company:  "N26",
		Skills:   []string{"Figma", "Research"},
	})
	if got != stub.response {
		t.Fatalf("unexpected briefing: %q", got)
	}

	prompt := stub.lastRequest.Prompt
	for _, want := range []string{"Sarah", "Fintech", "Designer at N26", "Figma, Research"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected %q in prompt:\n%s", want, prompt)
		}
	}
}

func TestWriterBriefingFallback(t *testing.T) {
	cases := map[string]*stubGenerator{
		"error":      {err: ai.Errorf(ai.ErrNetwork, "down")},
		"too short":  {response: "Too short"},
		"empty text": {response: ""},
	}

	for name, stub := range cases {
		t.Run(name, func(t *testing.T) {
			writer := NewWriter(stub, zap.NewNop())
			got := writer.Briefing(context.Background(), ai.BriefingSubject{Name: "Mike"})
			if got != fallbackBriefing(defaultBriefingField) {
				t.Fatalf("unexpected fallback: %q", got)
			}
			if !strings.HasPrefix(got, "The technology sector") {
				t.Fatalf("expected default industry in fallback: %q", got)
			}
		})
	}
}
