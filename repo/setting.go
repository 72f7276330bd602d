package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"aif/entity"
)

type Setting struct {
	ID         *uint64
	Name       *string
	Value      *string
	UpdateTime *uint64
}

func (m *Setting) TableName() string {
	return "setting_tab"
}

type SettingRepo interface {
	// GetValue returns "" when the setting is absent, missing settings are
	// not an error for the dispatch path.
	GetValue(ctx context.Context, name string) (string, error)
}

type settingRepo struct {
	baseRepo BaseRepo
}

func NewSettingRepo(_ context.Context, baseRepo BaseRepo) SettingRepo {
	return &settingRepo{baseRepo: baseRepo}
}

func (r *settingRepo) GetValue(ctx context.Context, name string) (string, error) {
	setting := new(Setting)

	if err := r.baseRepo.Get(ctx, setting, &Filter{
		Conditions: []*Condition{
			{
				Field: "name",
				Value: name,
				Op:    OpEq,
			},
		},
	}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}

	e := &entity.Setting{Name: setting.Name, Value: setting.Value}
	return e.GetValue(), nil
}
