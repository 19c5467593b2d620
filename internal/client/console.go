package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/fatih/color"
)

const barWidth = 30

var (
	errorBanner   = color.New(color.FgRed, color.Bold)
	warningBanner = color.New(color.FgYellow)
	infoBanner    = color.New(color.FgCyan)

	labelColors = map[string]*color.Color{
		"positive": color.New(color.FgGreen, color.Bold),
		"negative": color.New(color.FgRed, color.Bold),
	}
	defaultLabelColor = color.New(color.FgYellow, color.Bold)

	labelEmoji = map[string]string{
		"positive": "😊",
		"negative": "😞",
	}
)

// scoreOrder is the display order for the fixed sentiment keys; any extra
// keys follow alphabetically.
var scoreOrder = []string{"positive", "negative", "neutral"}

// Console renders gateway interactions as terminal output. It never fails:
// every error is printed as a banner and the console stays usable.
type Console struct {
	client    *Client
	out       io.Writer
	preferred string
}

func NewConsole(c *Client, out io.Writer, preferred string) *Console {
	return &Console{client: c, out: out, preferred: preferred}
}

// ListModels returns the gateway catalog, or an empty list after printing a
// warning when it cannot be fetched.
func (c *Console) ListModels(ctx context.Context) []string {
	models, err := c.client.ListModels(ctx)
	if err != nil {
		c.errorf("Could not fetch models from backend. Is it running? Details: %v", err)
		return []string{}
	}
	if len(models) == 0 {
		c.warnf("Backend returned an empty model list.")
	}
	return models
}

// SelectModel picks the preferred model when the catalog has it, else the
// first entry. An empty catalog disables selection.
func (c *Console) SelectModel(catalog []string) (string, bool) {
	if len(catalog) == 0 {
		c.errorf("Failed to load models. Please ensure the backend is running and accessible.")
		return "", false
	}
	if i := slices.Index(catalog, c.preferred); i >= 0 {
		return catalog[i], true
	}
	return catalog[0], true
}

// Submit analyzes text with model and renders the outcome. It reports whether
// a result was rendered.
func (c *Console) Submit(ctx context.Context, text, model string) bool {
	if strings.TrimSpace(text) == "" || model == "" {
		c.warnf("Please enter some text to analyze.")
		return false
	}

	infoBanner.Fprintf(c.out, "Analyzing sentiment with `%s`...\n", model)

	result, err := c.client.Analyze(ctx, text, model)
	if err != nil {
		var httpErr *HTTPError
		var connErr *ConnectionError
		switch {
		case errors.As(err, &httpErr):
			c.errorf("Error from backend: %d - %s", httpErr.StatusCode, httpErr.Body)
		case errors.As(err, &connErr):
			c.errorf("Connection Error: Failed to connect to the backend. Details: %v", connErr.Err)
		default:
			c.errorf("An unexpected error occurred: %v", err)
		}
		return false
	}

	c.render(result, model)
	return true
}

func (c *Console) render(result *Analysis, model string) {
	label := result.Label
	if label == "" {
		label = "N/A"
	}

	emoji, ok := labelEmoji[label]
	if !ok {
		emoji = "😐"
	}
	labelColor, ok := labelColors[label]
	if !ok {
		labelColor = defaultLabelColor
	}

	fmt.Fprintln(c.out, strings.Repeat("-", 40))
	fmt.Fprintln(c.out, "Analysis Results")
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Overall Sentiment")
	fmt.Fprintf(c.out, "  %s %s\n", emoji, labelColor.Sprint(capitalize(label)))
	infoBanner.Fprintf(c.out, "  Model Used: %s\n", model)
	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, "Confidence Scores")

	if len(result.ConfidenceScores) == 0 {
		c.warnf("Confidence scores were not provided in the response.")
		return
	}
	for _, name := range orderedKeys(result.ConfidenceScores) {
		fmt.Fprintf(c.out, "  %-9s %s %.2f\n", name, bar(result.ConfidenceScores[name]), result.ConfidenceScores[name])
	}
}

func (c *Console) errorf(format string, args ...any) {
	errorBanner.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) warnf(format string, args ...any) {
	warningBanner.Fprintf(c.out, format+"\n", args...)
}

// capitalize upper-cases the first rune and lower-cases the rest.
func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(s[size:])
}

// bar draws v in [0,1] as a fixed-width bar; out of range values are clamped.
func bar(v float64) string {
	if math.IsNaN(v) {
		v = 0
	}
	v = math.Max(0, math.Min(1, v))
	n := int(math.Round(v * barWidth))
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

func orderedKeys(scores map[string]float64) []string {
	keys := make([]string, 0, len(scores))
	for _, k := range scoreOrder {
		if _, ok := scores[k]; ok {
			keys = append(keys, k)
		}
	}
	var extra []string
	for k := range scores {
		if !slices.Contains(scoreOrder, k) {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(keys, extra...)
}
