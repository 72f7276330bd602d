package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"aif/entity"
	"aif/pkg/errutil"
)

var (
	ErrSessionNotFound = errutil.NotFoundError(errors.New("session not found"))
)

type Session struct {
	ID         *uint64
	UserID     *uint64
	TokenHash  *string
	ExpireTime *uint64
	CreateTime *uint64
}

func (m *Session) TableName() string {
	return "session_tab"
}

type SessionRepo interface {
	GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error)
}

type sessionRepo struct {
	baseRepo BaseRepo
}

func NewSessionRepo(_ context.Context, baseRepo BaseRepo) SessionRepo {
	return &sessionRepo{baseRepo: baseRepo}
}

func (r *sessionRepo) GetByTokenHash(ctx context.Context, tokenHash string) (*entity.Session, error) {
	session := new(Session)

	if err := r.baseRepo.Get(ctx, session, &Filter{
		Conditions: []*Condition{
			{
				Field:         "token_hash",
				Value:         tokenHash,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
			{
				Field: "expire_time",
				Value: uint64(time.Now().Unix()),
				Op:    OpGt,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return &entity.Session{
		ID:         session.ID,
		UserID:     session.UserID,
		TokenHash:  session.TokenHash,
		ExpireTime: session.ExpireTime,
		CreateTime: session.CreateTime,
	}, nil
}
