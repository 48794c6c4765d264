package audit

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=audit_repo.go -destination=mock/audit_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Record(ctx context.Context, a *Action) error
	FindByLeave(ctx context.Context, leaveID string) ([]Action, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Record(ctx context.Context, a *Action) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO leave_actions (id, leave_id, actor_id, action, note, created_at)
			VALUES (gen_random_uuid(), $1, $2, $3, $4, NOW())
		`, a.LeaveID, a.ActorID, a.Action, a.Note)
		return err
	}
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *repository) FindByLeave(ctx context.Context, leaveID string) ([]Action, error) {
	var actions []Action
	err := r.db.WithContext(ctx).
		Where("leave_id = ?", leaveID).
		Order("created_at ASC").
		Find(&actions).Error
	return actions, err
}
