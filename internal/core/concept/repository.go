package concept

import "context"

// Repository は勤務区分マスタの参照を行うインターフェースです。
type Repository interface {
	FindByID(ctx context.Context, id int) (*WorkConcept, error)
	List(ctx context.Context, filter ListFilter) ([]*WorkConcept, error)
}

// ListFilter は一覧取得時の検索条件です。両方指定された場合は AND 条件になります。
type ListFilter struct {
	ID           *int
	NameContains *string
}
