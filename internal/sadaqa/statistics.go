package sadaqa

import (
	"context"

	"github.com/sadaqapass/sadaqa/internal/models"
)

// Statistics proxies the analytics mirror.
func (s *Sadaqa) Statistics(ctx context.Context, kind models.StatisticsKind, query models.StatisticsQuery) ([]byte, error) {
	return s.mirror.Statistics(ctx, kind, query)
}
