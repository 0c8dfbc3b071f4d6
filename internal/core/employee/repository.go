package employee

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByDocumentNumber(ctx context.Context, documentNumber int) (*Employee, error)
	FindByEmail(ctx context.Context, email string) (*Employee, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber int) (bool, error)
	List(ctx context.Context) ([]*Employee, error)
}

// ShiftCounter は従業員に紐づく勤務記録の件数を返します。削除可否の判定に使います。
type ShiftCounter interface {
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
}
