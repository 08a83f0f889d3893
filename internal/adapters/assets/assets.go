// Package assets loads the startup data the pipeline depends on: the
// reference-embedding pack for similarity grounding and the product catalog
// for recommendations. Everything is loaded once, before the first request,
// and never written afterwards.
package assets

import (
	"context"

	"github.com/skinsight/engine/internal/domain/model"
	"github.com/skinsight/engine/internal/domain/similarity"
	"github.com/skinsight/engine/pkg/logger"
)

// Context is the immutable bundle handed to request handlers. A nil Index
// is valid and means similarity grounding is unavailable.
type Context struct {
	Index   *similarity.Index
	Catalog []model.Product
}

// Load builds the startup context. A missing or unreadable reference pack
// degrades to a nil index with a warning; a missing catalog falls back to
// the built-in default. Only a present-but-corrupt catalog is fatal, since
// running with a catalog the operator thinks is live but is not would be
// silently wrong.
func Load(ctx context.Context, log logger.Logger, referencePackPath, catalogPath string) (*Context, error) {
	index, err := loadReferencePack(referencePackPath)
	if err != nil {
		log.Warn(ctx, "reference pack unavailable, similarity grounding disabled",
			logger.String("path", referencePackPath),
			logger.Error(err))
		index = nil
	} else {
		log.Info(ctx, "reference pack loaded",
			logger.String("path", referencePackPath),
			logger.Int("cases", index.Len()))
	}

	catalog, usedDefault, err := loadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	if usedDefault {
		log.Warn(ctx, "catalog file not configured or missing, using built-in catalog",
			logger.String("path", catalogPath),
			logger.Int("products", len(catalog)))
	} else {
		log.Info(ctx, "product catalog loaded",
			logger.String("path", catalogPath),
			logger.Int("products", len(catalog)))
	}

	return &Context{Index: index, Catalog: catalog}, nil
}
