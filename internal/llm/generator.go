package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Limits applied to generated proposals; they match the flashcard limits.
const (
	MaxFrontRunes = 200
	MaxBackRunes  = 500
	MaxProposals  = 50
)

const systemPrompt = `You create study flashcards from the text supplied by the user.
Return a JSON object of the form {"flashcards":[{"front":"...","back":"..."}]}.
Each front is a short question or term (at most 200 characters).
Each back is a concise answer (at most 500 characters).
Cover the key facts of the text, avoid duplicates, write in the language of the text.`

// Proposal is one generated flashcard suggestion.
type Proposal struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Completer is implemented by *Client.
type Completer interface {
	Complete(ctx context.Context, r Request) (*Completion, error)
}

// Generator turns source text into flashcard proposals.
type Generator struct {
	c     Completer
	model string
}

// NewGenerator returns a Generator that asks model (or the client default
// when empty) for proposals.
func NewGenerator(c Completer, model string) *Generator {
	return &Generator{c: c, model: model}
}

// Model is the model name requests are sent with.
func (g *Generator) Model() string { return g.model }

// Generate returns the proposals for sourceText and the model that answered.
// Proposals with an empty or over-long side are dropped. A reply that is not
// the expected JSON object is an *APIError with CodeInvalidResponse.
func (g *Generator) Generate(ctx context.Context, sourceText string) ([]Proposal, string, error) {
	temp := 0.2
	comp, err := g.c.Complete(ctx, Request{
		Model: g.model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: sourceText},
		},
		Temperature: &temp,
		JSONMode:    true,
	})
	if err != nil {
		return nil, "", err
	}

	ps, err := ParseProposals(comp.Content)
	if err != nil {
		return nil, comp.Model, err
	}
	model := comp.Model
	if model == "" {
		model = g.model
	}
	return ps, model, nil
}

// ParseProposals decodes a {"flashcards":[...]} reply. Markdown code fences
// around the JSON are tolerated.
func ParseProposals(content string) ([]Proposal, error) {
	content = stripFences(content)
	var body struct {
		Flashcards []Proposal `json:"flashcards"`
	}
	if err := json.Unmarshal([]byte(content), &body); err != nil {
		return nil, &APIError{Status: http.StatusBadGateway, Code: CodeInvalidResponse, Message: "model reply is not valid JSON: " + err.Error()}
	}

	out := make([]Proposal, 0, len(body.Flashcards))
	for _, p := range body.Flashcards {
		p.Front = strings.TrimSpace(p.Front)
		p.Back = strings.TrimSpace(p.Back)
		if p.Front == "" || p.Back == "" {
			continue
		}
		if utf8.RuneCountInString(p.Front) > MaxFrontRunes || utf8.RuneCountInString(p.Back) > MaxBackRunes {
			continue
		}
		out = append(out, p)
		if len(out) == MaxProposals {
			break
		}
	}
	if len(out) == 0 {
		return nil, &APIError{Status: http.StatusBadGateway, Code: CodeInvalidResponse, Message: "model returned no usable flashcards"}
	}
	return out, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
