package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloo-solutions/clausecast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sampleAnalysis() *domain.AnalysisResult {
	return &domain.AnalysisResult{
		Summary: "A subscription agreement with aggressive renewal and liability terms that deserve close attention.",
		Themes: []domain.Theme{
			{Name: "Renewal", Positives: []string{"clear notice window"}, Negatives: []string{"silent auto-renewal"}},
			{Name: "Liability", Positives: []string{"mutual caps"}, Negatives: []string{"broad indemnity"}},
		},
		TopRedFlags: []domain.RedFlag{
			{Clause: "auto-renewal clause", Reason: "renews without notice", Severity: "high"},
		},
		UserActions: []domain.UserAction{
			{Action: "calendar the cancellation deadline", WhereClause: "section 4", Urgency: "high"},
		},
	}
}

func TestDetectEmotion(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Wow, that is quite the clause", domain.EmotionExcited},
		{"This is great news for renters", domain.EmotionExcited},
		{"I worry about the indemnity here", domain.EmotionConcerned},
		{"There is real risk in section four", domain.EmotionConcerned},
		{"What does that mean for users?", domain.EmotionCurious},
		{"I think it depends on the state", domain.EmotionCurious},
		{"An interesting perspective on arbitration", domain.EmotionThoughtful},
		{"The clause simply restates the statute.", domain.EmotionNeutral},
		{"", domain.EmotionNeutral},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DetectEmotion(tc.text), "text=%q", tc.text)
	}
}

func TestDetectEmotion_PriorityOrder(t *testing.T) {
	// Contains keywords for both excited ("!") and concerned ("risk");
	// excited is checked first.
	assert.Equal(t, domain.EmotionExcited, DetectEmotion("That risk is huge!"))

	// Concerned beats curious when both match.
	assert.Equal(t, domain.EmotionConcerned, DetectEmotion("Should we worry about this?"))
}

func TestParseDialogue(t *testing.T) {
	raw := `
Sarah: Welcome back to the show!
some stage direction without a speaker
Mike: Thanks Sarah. What are we covering today?

Sarah: A contract with a twist: an auto-renewal clause.
`
	segments := ParseDialogue(raw)
	require.Len(t, segments, 3)

	assert.Equal(t, "Sarah", segments[0].Speaker)
	assert.Equal(t, "Welcome back to the show!", segments[0].Text)
	assert.Equal(t, domain.EmotionExcited, segments[0].Emotion)

	assert.Equal(t, "Mike", segments[1].Speaker)
	assert.Equal(t, domain.EmotionCurious, segments[1].Emotion)

	// Only the first colon splits; the rest stays in the text.
	assert.Equal(t, "A contract with a twist: an auto-renewal clause.", segments[2].Text)
}

func TestParseDialogue_NoUsableLines(t *testing.T) {
	assert.Empty(t, ParseDialogue("no dialogue here\njust prose"))
	assert.Empty(t, ParseDialogue(""))
}

func TestSynthesize_AssemblesSectionsInOrder(t *testing.T) {
	mockLLM := new(MockGenerationClient)
	for _, spec := range podcastSections {
		spec := spec
		mockLLM.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
			return strings.Contains(prompt, spec.focus)
		})).Return("Sarah: line for "+spec.name+"\nMike: reply for "+spec.name, nil).Once()
	}

	svc := NewPodcastService(mockLLM)
	script, err := svc.Synthesize(context.Background(), sampleAnalysis())
	require.NoError(t, err)

	assert.Contains(t, script.Intro[0].Text, "intro")
	assert.Contains(t, script.MainDiscussion[0].Text, "main")
	assert.Contains(t, script.RedFlagsSection[0].Text, "red_flags")
	assert.Contains(t, script.ActionItemsSection[0].Text, "actions")
	assert.Contains(t, script.Outro[0].Text, "outro")

	for _, section := range [][]domain.PodcastSegment{
		script.Intro, script.MainDiscussion, script.RedFlagsSection, script.ActionItemsSection, script.Outro,
	} {
		require.Len(t, section, 2)
		assert.Equal(t, "Sarah", section[0].Speaker)
		assert.Equal(t, "Mike", section[1].Speaker)
	}

	mockLLM.AssertExpectations(t)
}

func TestSynthesize_TitleTruncatesSummary(t *testing.T) {
	mockLLM := new(MockGenerationClient)
	mockLLM.On("Generate", mock.Anything, mock.Anything).Return("Sarah: hello", nil)

	svc := NewPodcastService(mockLLM)
	analysis := sampleAnalysis()
	script, err := svc.Synthesize(context.Background(), analysis)
	require.NoError(t, err)

	assert.Equal(t, "Deep Dive: "+string([]rune(analysis.Summary)[:45])+"...", script.Title)
}

func TestSynthesize_SectionFailureFailsAll(t *testing.T) {
	mockLLM := new(MockGenerationClient)
	mockLLM.On("Generate", mock.Anything, mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, "CONCERNS:")
	})).Return("", errors.New("model timeout"))
	mockLLM.On("Generate", mock.Anything, mock.Anything).Return("Sarah: hello", nil).Maybe()

	svc := NewPodcastService(mockLLM)
	script, err := svc.Synthesize(context.Background(), sampleAnalysis())

	require.Error(t, err)
	assert.Nil(t, script)
	assert.Contains(t, err.Error(), "red_flags")
}

func TestSynthesize_SectionContextsCarryAnalysis(t *testing.T) {
	analysis := sampleAnalysis()

	mainCtx := podcastSections[1].context(analysis)
	assert.Contains(t, mainCtx, "Renewal")
	assert.Contains(t, mainCtx, "silent auto-renewal")

	flagsCtx := podcastSections[2].context(analysis)
	assert.Contains(t, flagsCtx, "[high]")
	assert.Contains(t, flagsCtx, "auto-renewal clause")

	actionsCtx := podcastSections[3].context(analysis)
	assert.Contains(t, actionsCtx, "calendar the cancellation deadline")

	introCtx := podcastSections[0].context(analysis)
	outroCtx := podcastSections[4].context(analysis)
	assert.True(t, strings.HasPrefix(introCtx, "SUMMARY:"))
	assert.True(t, strings.HasPrefix(outroCtx, "SUMMARY:"))
	// Outro context is trimmed harder than the intro's.
	assert.LessOrEqual(t, len(outroCtx), len(introCtx))
}

func TestFormatForDisplay(t *testing.T) {
	script := &domain.PodcastScript{
		Title: "Deep Dive: sample...",
		Intro: []domain.PodcastSegment{
			{Speaker: "Sarah", Text: "Welcome!", Emotion: domain.EmotionExcited},
		},
		Outro: []domain.PodcastSegment{
			{Speaker: "Mike", Text: "See you next time.", Emotion: domain.EmotionNeutral},
		},
	}

	out := FormatForDisplay(script)
	assert.Contains(t, out, "Deep Dive: sample...")
	assert.Contains(t, out, "== INTRO ==")
	assert.Contains(t, out, "Sarah [excited]: Welcome!")
	assert.Contains(t, out, "== OUTRO ==")
	assert.True(t, strings.Index(out, "== INTRO ==") < strings.Index(out, "== OUTRO =="))
}

func TestPodcastScriptSegmentsFlattening(t *testing.T) {
	script := &domain.PodcastScript{
		Intro:          []domain.PodcastSegment{{Speaker: "Sarah", Text: "a"}},
		MainDiscussion: []domain.PodcastSegment{{Speaker: "Mike", Text: "b"}},
		Outro:          []domain.PodcastSegment{{Speaker: "Sarah", Text: "c"}},
	}

	segments := script.Segments()
	require.Len(t, segments, 3)
	assert.Equal(t, "a", segments[0].Text)
	assert.Equal(t, "b", segments[1].Text)
	assert.Equal(t, "c", segments[2].Text)
}
