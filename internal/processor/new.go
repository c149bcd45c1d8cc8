package processor

import (
	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/downloader"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
	"github.com/nguyentantai21042004/brief-flow/internal/models"
	"github.com/nguyentantai21042004/brief-flow/internal/sink"
	"github.com/nguyentantai21042004/brief-flow/internal/storage"
	"github.com/nguyentantai21042004/brief-flow/internal/summarizer"
	"github.com/nguyentantai21042004/brief-flow/internal/transcriber"
)

// Deps are the stage implementations the processor drives. Sink and
// Publisher are optional.
type Deps struct {
	Acquirer    downloader.Acquirer
	Downloader  downloader.Downloader
	Transcriber transcriber.Transcriber
	Summarizer  summarizer.Summarizer
	Sink        sink.ResultSink
	Publisher   storage.Publisher
}

type implProcessor struct {
	cfg         *config.Config
	acquirer    downloader.Acquirer
	downloader  downloader.Downloader
	transcriber transcriber.Transcriber
	summarizer  summarizer.Summarizer
	sink        sink.ResultSink
	publisher   storage.Publisher
	logger      logger.Logger

	acquireGate    *gate
	transcribeGate *gate
	summarizeGate  *gate
}

// New creates a Processor. The stage gates are shared by every batch it runs.
func New(cfg *config.Config, deps Deps, log logger.Logger) Processor {
	return &implProcessor{
		cfg:            cfg,
		acquirer:       deps.Acquirer,
		downloader:     deps.Downloader,
		transcriber:    deps.Transcriber,
		summarizer:     deps.Summarizer,
		sink:           deps.Sink,
		publisher:      deps.Publisher,
		logger:         log,
		acquireGate:    newGate(models.StageAcquisition, cfg.Performance.AcquisitionConcurrency),
		transcribeGate: newGate(models.StageTranscription, cfg.Performance.TranscriptionConcurrency),
		summarizeGate:  newGate(models.StageSummarization, cfg.Performance.SummarizationConcurrency),
	}
}
