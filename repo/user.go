package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aif/entity"
	"aif/pkg/errutil"
)

var (
	ErrUserNotFound = errutil.NotFoundError(errors.New("user not found"))
)

type User struct {
	ID                 *uint64
	Email              *string
	DisplayName        *string
	SubscriptionStatus *string
	Status             *uint32
	CreateTime         *uint64
	UpdateTime         *uint64
}

func (m *User) TableName() string {
	return "user_tab"
}

type UserRepo interface {
	GetByID(ctx context.Context, userID uint64) (*entity.User, error)
	// GetAll and GetBySubscriptionStatuses re-read the audience on every
	// call, sends always reflect the current table state.
	GetAll(ctx context.Context) ([]*entity.User, error)
	GetBySubscriptionStatuses(ctx context.Context, statuses []string) ([]*entity.User, error)
	GetManyByEmails(ctx context.Context, emails []string) ([]*entity.User, error)
}

type userRepo struct {
	baseRepo BaseRepo
}

func NewUserRepo(_ context.Context, baseRepo BaseRepo) UserRepo {
	return &userRepo{baseRepo: baseRepo}
}

func (r *userRepo) GetByID(ctx context.Context, userID uint64) (*entity.User, error) {
	user := new(User)

	if err := r.baseRepo.Get(ctx, user, &Filter{
		Conditions: append([]*Condition{
			{
				Field:         "id",
				Value:         userID,
				Op:            OpEq,
				NextLogicalOp: LogicalOpAnd,
			},
		}, notDeletedCondition()),
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return ToUser(user), nil
}

func (r *userRepo) GetAll(ctx context.Context) ([]*entity.User, error) {
	return r.getMany(ctx, []*Condition{notDeletedCondition()})
}

func (r *userRepo) GetBySubscriptionStatuses(ctx context.Context, statuses []string) ([]*entity.User, error) {
	return r.getMany(ctx, []*Condition{
		{
			Field:         "subscription_status",
			Value:         statuses,
			Op:            OpIn,
			NextLogicalOp: LogicalOpAnd,
		},
		notDeletedCondition(),
	})
}

func (r *userRepo) GetManyByEmails(ctx context.Context, emails []string) ([]*entity.User, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	return r.getMany(ctx, []*Condition{
		{
			Field:         "email",
			Value:         emails,
			Op:            OpIn,
			NextLogicalOp: LogicalOpAnd,
		},
		notDeletedCondition(),
	})
}

func (r *userRepo) getMany(ctx context.Context, conditions []*Condition) ([]*entity.User, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(User), &Filter{
		Conditions: conditions,
	})
	if err != nil {
		return nil, err
	}

	users := make([]*entity.User, 0, len(res))
	for _, m := range res {
		users = append(users, ToUser(m.(*User)))
	}

	return users, nil
}

func notDeletedCondition() *Condition {
	return &Condition{
		Field: "status",
		Value: uint32(entity.UserStatusDeleted),
		Op:    OpNotEq,
	}
}

func ToUser(user *User) *entity.User {
	var status uint32
	if user.Status != nil {
		status = *user.Status
	}

	return &entity.User{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		SubscriptionStatus: user.SubscriptionStatus,
		Status:             entity.UserStatus(status),
		CreateTime:         user.CreateTime,
		UpdateTime:         user.UpdateTime,
	}
}
