package repo

import (
	"context"
)

type WaitlistEntry struct {
	ID         *uint64
	Email      *string
	CreateTime *uint64
}

func (m *WaitlistEntry) TableName() string {
	return "waitlist_tab"
}

func (m *WaitlistEntry) GetEmail() string {
	if m != nil && m.Email != nil {
		return *m.Email
	}
	return ""
}

type WaitlistRepo interface {
	GetEmails(ctx context.Context) ([]string, error)
}

type waitlistRepo struct {
	baseRepo BaseRepo
}

func NewWaitlistRepo(_ context.Context, baseRepo BaseRepo) WaitlistRepo {
	return &waitlistRepo{baseRepo: baseRepo}
}

func (r *waitlistRepo) GetEmails(ctx context.Context) ([]string, error) {
	res, _, err := r.baseRepo.GetMany(ctx, new(WaitlistEntry), &Filter{})
	if err != nil {
		return nil, err
	}

	emails := make([]string, 0, len(res))
	for _, m := range res {
		emails = append(emails, m.(*WaitlistEntry).GetEmail())
	}

	return emails, nil
}
