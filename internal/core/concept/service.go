package concept

import (
	"context"

	"go.uber.org/zap"
)

// UseCase は勤務区分カタログの公開インターフェースです。
type UseCase interface {
	GetConcept(ctx context.Context, id int) (*WorkConcept, error)
	FindConcepts(ctx context.Context, in FindConceptsInput) ([]*WorkConcept, error)
}

// FindConceptsInput は区分検索の入力です。
type FindConceptsInput struct {
	ID           *int
	NameContains *string
}

// Catalog は読み取り専用の勤務区分カタログです。
type Catalog struct {
	repo   Repository
	logger *zap.Logger
}

// NewCatalog は Catalog を生成します。
func NewCatalog(repo Repository, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{repo: repo, logger: logger.Named("concept")}
}

// GetConcept は ID で区分を取得します。
func (c *Catalog) GetConcept(ctx context.Context, id int) (*WorkConcept, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}
	return c.repo.FindByID(ctx, id)
}

// FindConcepts は条件に一致する区分を返します。条件がなければ全件を返します。
func (c *Catalog) FindConcepts(ctx context.Context, in FindConceptsInput) ([]*WorkConcept, error) {
	if in.ID != nil && *in.ID <= 0 {
		return []*WorkConcept{}, nil
	}

	filter := ListFilter{ID: in.ID}
	if in.NameContains != nil && *in.NameContains != "" {
		name := *in.NameContains
		filter.NameContains = &name
	}

	concepts, err := c.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("concepts found",
		zap.Intp("id", in.ID),
		zap.Stringp("name", in.NameContains),
		zap.Int("count", len(concepts)))

	if concepts == nil {
		concepts = []*WorkConcept{}
	}
	return concepts, nil
}
