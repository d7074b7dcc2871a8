package entities

// TranscriptProvenance tags which retrieval strategy produced an artifact
type TranscriptProvenance string

const (
	ProvenanceDownloadedShortcut TranscriptProvenance = "downloaded-shortcut"
	ProvenanceRecordingIDLookup  TranscriptProvenance = "recording-id-lookup"
	ProvenanceLiveStream         TranscriptProvenance = "live-stream"
)

// TranscriptArtifact is the result of the retrieval chain: the raw text plus
// where it came from. Live-stream artifacts are partial; insight generation
// treats them as non-final.
type TranscriptArtifact struct {
	Text       string
	Provenance TranscriptProvenance
	Partial    bool

	// Raw is the provider payload the text was parsed from, kept for the
	// diagnostics archive. May be nil for live snapshots.
	Raw []byte
}

// Final reports whether the artifact came from a finished recording
func (a *TranscriptArtifact) Final() bool {
	return !a.Partial
}
