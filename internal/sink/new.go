package sink

import (
	"context"
	"fmt"

	"github.com/nguyentantai21042004/brief-flow/internal/config"
	"github.com/nguyentantai21042004/brief-flow/internal/logger"
)

// New opens the sink selected by storage.sink.
func New(ctx context.Context, cfg config.StorageConfig, log logger.Logger) (ResultSink, error) {
	switch cfg.Sink {
	case "", "log":
		return NewLog(log), nil
	case "mongo":
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDB, log)
	case "postgres":
		return NewPostgres(cfg.PostgresDSN, log)
	default:
		return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
	}
}
