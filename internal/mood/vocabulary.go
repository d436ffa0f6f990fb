package mood

// Sentinel labels. Neither belongs to the vocabulary: Unknown marks a failed
// or unparseable classification, NoLyrics a track whose lyrics could not be
// found.
const (
	LabelUnknown  = "Unknown"
	LabelNoLyrics = "No lyrics"
)

// Vocabulary is the closed set of mood words the classifier may answer with:
// eight valence/energy categories of three synonyms each.
var Vocabulary = []string{
	"Joyful", "Happy", "Uplifting",
	"Sad", "Melancholic", "Somber",
	"Angry", "Frustrated", "Aggressive",
	"Romantic", "Loving", "Passionate",
	"Reflective", "Thoughtful", "Introspective",
	"Energetic", "Excited", "Pumped",
	"Calm", "Relaxed", "Chill",
	"Dark", "Moody", "Brooding",
}
