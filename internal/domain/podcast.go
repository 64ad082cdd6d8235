package domain

// Emotions assignable to a dialogue segment.
const (
	EmotionNeutral    = "neutral"
	EmotionExcited    = "excited"
	EmotionConcerned  = "concerned"
	EmotionCurious    = "curious"
	EmotionThoughtful = "thoughtful"
)

// PodcastSegment is one spoken line of the script.
type PodcastSegment struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	Emotion string `json:"emotion"`
}

// PodcastScript is the assembled five-section two-host script. Sections are
// always rendered in declaration order regardless of generation timing.
type PodcastScript struct {
	Title              string           `json:"title"`
	Intro              []PodcastSegment `json:"intro"`
	MainDiscussion     []PodcastSegment `json:"main_discussion"`
	RedFlagsSection    []PodcastSegment `json:"red_flags_section"`
	ActionItemsSection []PodcastSegment `json:"action_items_section"`
	Outro              []PodcastSegment `json:"outro"`
}

// Segments returns the script's dialogue as one flat sequence in playback
// order, for downstream TTS rendering.
func (s *PodcastScript) Segments() []PodcastSegment {
	out := make([]PodcastSegment, 0, len(s.Intro)+len(s.MainDiscussion)+len(s.RedFlagsSection)+len(s.ActionItemsSection)+len(s.Outro))
	out = append(out, s.Intro...)
	out = append(out, s.MainDiscussion...)
	out = append(out, s.RedFlagsSection...)
	out = append(out, s.ActionItemsSection...)
	out = append(out, s.Outro...)
	return out
}
