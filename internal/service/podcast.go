package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/cloo-solutions/clausecast/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// Default podcast host names.
const (
	DefaultHost1 = "Sarah"
	DefaultHost2 = "Mike"
)

const dialoguePromptTemplate = `Generate %s dialogue between %s and %s.

%s

Requirements:
- Format: "Speaker: dialogue" per line
- Keep casual, conversational tone
- %s exchanges
- Natural flow with follow-ups

Output dialogue now:`

// emotionPattern pairs an emotion with its trigger keywords. Patterns are
// evaluated in declaration order; the first whose keyword appears in the
// line wins.
type emotionPattern struct {
	emotion  string
	keywords []string
}

var emotionPatterns = []emotionPattern{
	{domain.EmotionExcited, []string{"wow", "amazing", "incredible", "!", "great", "wonderful"}},
	{domain.EmotionConcerned, []string{"concern", "worry", "careful", "watch", "risk", "issue"}},
	{domain.EmotionCurious, []string{"?", "wonder", "think", "curious"}},
	{domain.EmotionThoughtful, []string{"interesting", "consider", "perspective", "note"}},
}

type sectionSpec struct {
	name      string
	focus     string
	exchanges string
	context   func(a *domain.AnalysisResult) string
}

// podcastSections defines the five script sections in assembly order.
var podcastSections = []sectionSpec{
	{
		name:      "intro",
		focus:     "Introduce topic and build interest",
		exchanges: "4-6",
		context: func(a *domain.AnalysisResult) string {
			return "SUMMARY:\n" + truncate(a.Summary, 200)
		},
	},
	{
		name:      "main",
		focus:     "Discuss themes with examples and balance perspectives",
		exchanges: "10-15",
		context: func(a *domain.AnalysisResult) string {
			lines := make([]string, 0, 4)
			for _, t := range head(a.Themes, 4) {
				lines = append(lines, fmt.Sprintf("• %s: +[%s] -[%s]",
					t.Name,
					strings.Join(head(t.Positives, 2), ", "),
					strings.Join(head(t.Negatives, 2), ", "),
				))
			}
			return "THEMES:\n" + strings.Join(lines, "\n")
		},
	},
	{
		name:      "red_flags",
		focus:     "Address issues seriously with context",
		exchanges: "8-12",
		context: func(a *domain.AnalysisResult) string {
			lines := make([]string, 0, 3)
			for _, f := range head(a.TopRedFlags, 3) {
				lines = append(lines, fmt.Sprintf("• [%s] %s", f.Severity, truncate(f.Clause, 80)))
			}
			return "CONCERNS:\n" + strings.Join(lines, "\n")
		},
	},
	{
		name:      "actions",
		focus:     "Provide actionable, empowering steps",
		exchanges: "6-10",
		context: func(a *domain.AnalysisResult) string {
			lines := make([]string, 0, 3)
			for _, u := range head(a.UserActions, 3) {
				lines = append(lines, fmt.Sprintf("• [%s] %s", u.Urgency, truncate(u.Action, 80)))
			}
			return "RECOMMENDATIONS:\n" + strings.Join(lines, "\n")
		},
	},
	{
		name:      "outro",
		focus:     "Recap key points and inspire action",
		exchanges: "3-5",
		context: func(a *domain.AnalysisResult) string {
			return "SUMMARY:\n" + truncate(a.Summary, 150)
		},
	},
}

// PodcastService turns a completed analysis into a five-section two-host
// script. The five section generations run concurrently and are assembled
// in fixed order once all complete.
type PodcastService struct {
	llm   GenerationClient
	host1 string
	host2 string
}

func NewPodcastService(llm GenerationClient) *PodcastService {
	return NewPodcastServiceWithHosts(llm, DefaultHost1, DefaultHost2)
}

func NewPodcastServiceWithHosts(llm GenerationClient, host1, host2 string) *PodcastService {
	if host1 == "" {
		host1 = DefaultHost1
	}
	if host2 == "" {
		host2 = DefaultHost2
	}
	return &PodcastService{llm: llm, host1: host1, host2: host2}
}

// Synthesize generates all five sections concurrently and joins them in
// fixed order. A failure in any one section fails the whole synthesis; no
// partial script is returned.
func (s *PodcastService) Synthesize(ctx context.Context, analysis *domain.AnalysisResult) (*domain.PodcastScript, error) {
	sections := make([][]domain.PodcastSegment, len(podcastSections))

	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range podcastSections {
		g.Go(func() error {
			segments, err := s.generateSection(gctx, spec, analysis)
			if err != nil {
				return fmt.Errorf("section %s: %w", spec.name, err)
			}
			sections[i] = segments
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.PodcastScript{
		Title:              "Deep Dive: " + truncate(analysis.Summary, 45) + "...",
		Intro:              sections[0],
		MainDiscussion:     sections[1],
		RedFlagsSection:    sections[2],
		ActionItemsSection: sections[3],
		Outro:              sections[4],
	}, nil
}

func (s *PodcastService) generateSection(ctx context.Context, spec sectionSpec, analysis *domain.AnalysisResult) ([]domain.PodcastSegment, error) {
	ctx, span := telemetry.StartSpan(ctx, "PodcastService.generateSection", telemetry.SpanAttributes{
		Section:   spec.name,
		Operation: "dialogue",
	})
	defer span.End()

	prompt := fmt.Sprintf(dialoguePromptTemplate, spec.focus, s.host1, s.host2, spec.context(analysis), spec.exchanges)

	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return ParseDialogue(raw), nil
}

// ParseDialogue converts a raw section response into segments. Only lines
// containing a ':' separator are kept: the speaker label is everything
// before the first colon, the line text everything after, both trimmed.
func ParseDialogue(text string) []domain.PodcastSegment {
	var segments []domain.PodcastSegment
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.Contains(line, ":") {
			continue
		}
		speaker, dialogue, _ := strings.Cut(line, ":")
		segments = append(segments, domain.PodcastSegment{
			Speaker: strings.TrimSpace(speaker),
			Text:    strings.TrimSpace(dialogue),
			Emotion: DetectEmotion(dialogue),
		})
	}
	return segments
}

// DetectEmotion tags a line with the first emotion whose keyword set
// matches, in priority order excited > concerned > curious > thoughtful.
// Matching is a case-insensitive substring scan.
func DetectEmotion(text string) string {
	lower := strings.ToLower(text)
	for _, p := range emotionPatterns {
		for _, kw := range p.keywords {
			if strings.Contains(lower, kw) {
				return p.emotion
			}
		}
	}
	return domain.EmotionNeutral
}

// FormatForDisplay renders a script as readable plain text.
func FormatForDisplay(script *domain.PodcastScript) string {
	named := []struct {
		title    string
		segments []domain.PodcastSegment
	}{
		{"INTRO", script.Intro},
		{"MAIN", script.MainDiscussion},
		{"RED FLAGS", script.RedFlagsSection},
		{"ACTIONS", script.ActionItemsSection},
		{"OUTRO", script.Outro},
	}

	var b strings.Builder
	b.WriteString(script.Title)
	b.WriteString("\n")
	for _, section := range named {
		b.WriteString("\n== " + section.title + " ==\n")
		for _, seg := range section.segments {
			b.WriteString(seg.Speaker + " [" + seg.Emotion + "]: " + seg.Text + "\n")
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
