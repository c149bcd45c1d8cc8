package models

import (
	"encoding/json"
	"time"
)

// Stage names the pipeline step an item reached.
type Stage string

const (
	StageFolder        Stage = "folder"
	StageAcquisition   Stage = "acquisition"
	StageTranscription Stage = "transcription"
	StageSummarization Stage = "summarization"
	StagePersistence   Stage = "persistence"
	StageCompleted     Stage = "completed"
)

// PipelineResult is the outcome of one item. Exactly one exists per submitted item.
type PipelineResult struct {
	Index           int           `json:"index"`
	Source          string        `json:"source"`
	Success         bool          `json:"success"`
	Stage           Stage         `json:"stage"`
	TranscriptPath  string        `json:"transcript_path,omitempty"`
	SummaryPath     string        `json:"summary_path,omitempty"`
	DocxPath        string        `json:"docx_path,omitempty"`
	SummaryText     string        `json:"summary_text,omitempty"`
	Error           string        `json:"error,omitempty"`
	Warnings        []string      `json:"warnings,omitempty"`
	TranscriptionOK bool          `json:"transcription_ok"`
	Metadata        *ItemMetadata `json:"metadata,omitempty"`
	PublishedURIs   []string      `json:"published_uris,omitempty"`
	Duration        time.Duration `json:"-"`
}

type pipelineResultAlias PipelineResult

// MarshalJSON reports Duration as whole milliseconds under duration_ms.
func (r PipelineResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		pipelineResultAlias
		DurationMS int64 `json:"duration_ms"`
	}{pipelineResultAlias(r), r.Duration.Milliseconds()})
}

func (r *PipelineResult) UnmarshalJSON(data []byte) error {
	aux := struct {
		*pipelineResultAlias
		DurationMS int64 `json:"duration_ms"`
	}{pipelineResultAlias: (*pipelineResultAlias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Duration = time.Duration(aux.DurationMS) * time.Millisecond
	return nil
}

// StageStatus reports the batch-level folder step.
type StageStatus struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// BatchResult aggregates the per-item results, ordered by index.
type BatchResult struct {
	BatchID      string           `json:"batch_id"`
	FolderID     string           `json:"folder_id"`
	EntryID      string           `json:"entry_id"`
	FolderStatus StageStatus      `json:"folder_status"`
	Items        []PipelineResult `json:"items"`
	Succeeded    int              `json:"succeeded"`
	Failed       int              `json:"failed"`
	StartedAt    time.Time        `json:"started_at"`
	FinishedAt   time.Time        `json:"finished_at"`
}

// FailedItems returns the results that did not succeed.
func (b BatchResult) FailedItems() []PipelineResult {
	var failed []PipelineResult
	for _, r := range b.Items {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// TranscriptResult is returned by the transcription stage.
type TranscriptResult struct {
	Success bool   `json:"success"`
	Text    string `json:"text,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message,omitempty"`
}

// SummaryResult is returned by the summarization stage.
type SummaryResult struct {
	Success      bool   `json:"success"`
	Text         string `json:"text,omitempty"`
	Message      string `json:"message,omitempty"`
	Path         string `json:"path,omitempty"`
	DocxPath     string `json:"docx_path,omitempty"`
	DocxError    string `json:"docx_error,omitempty"`
	TokensUsed   int    `json:"tokens_used"`
	FailedChunks int    `json:"failed_chunks"`
	Cached       bool   `json:"cached"`
}

// TextChunk is a rune range of a transcript. Start and End are rune offsets.
type TextChunk struct {
	Index int
	Text  string
	Start int
	End   int
}

// ChunkResult holds either a chunk's completion text or the error it failed with.
type ChunkResult struct {
	Index int
	Text  string
	Err   error
}
