package export

type ExportRequest struct {
	Title     string `json:"title"`
	Format    string `json:"format"`
	OutputDir string `json:"output_dir"`
}

type ExportResponse struct {
	Status          string   `json:"status"`
	Format          string   `json:"format"`
	OutputPath      string   `json:"output_path"`
	EventCount      int      `json:"event_count"`
	UnresolvedClips []string `json:"unresolved_clips"`
}

// Event is one EDL line pair derived from a clip. Frames are project frames.
type Event struct {
	Reel      string
	Track     string
	ClipName  string
	MediaPath string
	SourceIn  int
	SourceOut int
	RecordIn  int
	RecordOut int
}
