package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/creditdesk/cibil-extract/internal/identity"
	"github.com/creditdesk/cibil-extract/internal/ocr"
	"github.com/creditdesk/cibil-extract/internal/pipeline"
	"github.com/creditdesk/cibil-extract/internal/store"
)

// pipelineEnv holds the initialized store, resolver and processor shared by
// the process/batch/serve commands.
type pipelineEnv struct {
	Store     store.Store
	Processor *pipeline.Processor
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "cibil.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the extractor and, when withStore is set, the store
// and directory-backed identity resolver. Callers should defer env.Close().
func initPipeline(ctx context.Context, withStore bool) (*pipelineEnv, error) {
	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return nil, err
	}

	var st store.Store
	var resolver identity.Resolver
	if withStore {
		st, err = initStore(ctx)
		if err != nil {
			return nil, err
		}
		if err := st.Migrate(ctx); err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "migrate store")
		}
		resolver = identity.NewResolver(st)
	}

	timeout := time.Duration(cfg.OCR.TimeoutSecs) * time.Second
	return &pipelineEnv{
		Store:     st,
		Processor: pipeline.New(extractor, resolver, st, timeout),
	}, nil
}
