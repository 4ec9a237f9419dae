package model

// ScriptLine is one utterance in an episode script. AudioData holds a
// base64 PCM payload as a transient cache right after generation;
// AudioURL points at the durably stored copy once the upload lands.
// When both are set the URL wins.
type ScriptLine struct {
	ID          string `bson:"_id" json:"id"`
	CharacterID string `bson:"character_id" json:"characterId"`
	Text        string `bson:"text" json:"text"`
	AudioData   string `bson:"audio_data,omitempty" json:"audioData,omitempty"`
	AudioURL    string `bson:"audio_url,omitempty" json:"audioUrl,omitempty"`
}

// SourceKind tells where a line's audio lives.
type SourceKind int

const (
	// SourcePending: no audio exists yet, it must be generated.
	SourcePending SourceKind = iota
	// SourceCached: a base64 payload is held on the line, not yet uploaded.
	SourceCached
	// SourcePersisted: the audio is durably stored and fetchable by URL.
	SourcePersisted
)

// AudioSource is the resolved authoritative source of a line's audio.
// Exactly one of Payload/URL is meaningful depending on Kind.
type AudioSource struct {
	Kind    SourceKind
	Payload string // base64 PCM, SourceCached only
	URL     string // blob store URL, SourcePersisted only
}

// Source returns the authoritative audio source for the line.
// A persisted URL always outranks a cached payload.
func (l *ScriptLine) Source() AudioSource {
	if l.AudioURL != "" {
		return AudioSource{Kind: SourcePersisted, URL: l.AudioURL}
	}
	if l.AudioData != "" {
		return AudioSource{Kind: SourceCached, Payload: l.AudioData}
	}
	return AudioSource{Kind: SourcePending}
}

// HasAudio reports whether any audio exists for the line.
func (l *ScriptLine) HasAudio() bool {
	return l.AudioURL != "" || l.AudioData != ""
}
