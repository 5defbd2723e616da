package translit

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is the model used when none is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// ErrMissingAPIKey is returned when the Gemini backend has no key.
var ErrMissingAPIKey = errors.New("gemini API key not configured")

// GeminiConfig configures the Gemini backend.
type GeminiConfig struct {
	APIKey string
	Model  string
	// BaseURL overrides the API endpoint.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini transliterates a batch with a single model call. Output is capped,
// so callers keep batches small (see Service).
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates the backend.
func NewGemini(ctx context.Context, cfg GeminiConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Transliterate implements Transliterator. Entries the model does not
// answer for are left empty.
func (g *Gemini) Transliterate(ctx context.Context, names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, nil
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(batchPrompt(names), genai.RoleUser)},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr[float32](0.1),
			MaxOutputTokens: 1000,
		})
	if err != nil {
		return nil, fmt.Errorf("gemini transliteration failed: %w", err)
	}
	return parseNumbered(resp.Text(), len(names)), nil
}

func batchPrompt(names []string) string {
	var b strings.Builder
	b.WriteString("Transliterate these Marathi names to English.\n")
	b.WriteString("Rules:\n")
	b.WriteString("- Use common English spellings for Indian names\n")
	b.WriteString("- चं → Chan (not Can)\n")
	b.WriteString("- Keep the order and numbering\n")
	b.WriteString("- Output ONLY the transliterated names, one per line with the same numbering\n\n")
	b.WriteString("Names:\n")
	for i, n := range names {
		fmt.Fprintf(&b, "%d. %s\n", i+1, n)
	}
	b.WriteString("\nOutput format:\n1. [English name]\n2. [English name]\n...")
	return b.String()
}

var numberedLine = regexp.MustCompile(`^(\d+)\.\s*(.+)$`)

// parseNumbered maps "N. name" lines back onto positions 0..n-1.
// Unnumbered lines and numbers out of range are ignored.
func parseNumbered(text string, n int) []string {
	out := make([]string, n)
	for _, line := range strings.Split(text, "\n") {
		m := numberedLine.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 1 || idx > n {
			continue
		}
		out[idx-1] = strings.TrimSpace(m[2])
	}
	return out
}
