package handler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aif/entity"
	"aif/pkg/goutil"
	"aif/repo"
)

type mockUserRepo struct {
	users        []*entity.User
	usersByEmail []*entity.User

	gotStatuses []string
	gotEmails   []string
}

func (m *mockUserRepo) GetByID(_ context.Context, userID uint64) (*entity.User, error) {
	for _, u := range m.users {
		if u.GetID() == userID {
			return u, nil
		}
	}
	return nil, repo.ErrUserNotFound
}

func (m *mockUserRepo) GetAll(_ context.Context) ([]*entity.User, error) {
	return m.users, nil
}

func (m *mockUserRepo) GetBySubscriptionStatuses(_ context.Context, statuses []string) ([]*entity.User, error) {
	m.gotStatuses = statuses

	res := make([]*entity.User, 0)
	for _, u := range m.users {
		for _, status := range statuses {
			if u.GetSubscriptionStatus() == status {
				res = append(res, u)
			}
		}
	}
	return res, nil
}

func (m *mockUserRepo) GetManyByEmails(_ context.Context, emails []string) ([]*entity.User, error) {
	m.gotEmails = emails
	return m.usersByEmail, nil
}

type mockWaitlistRepo struct {
	emails []string
}

func (m *mockWaitlistRepo) GetEmails(_ context.Context) ([]string, error) {
	return m.emails, nil
}

type mockUnsubscribeRepo struct {
	emailSet map[string]struct{}
	created  []*entity.Unsubscribe
}

func (m *mockUnsubscribeRepo) Create(_ context.Context, unsubscribe *entity.Unsubscribe) (uint64, error) {
	m.created = append(m.created, unsubscribe)
	return uint64(len(m.created)), nil
}

func (m *mockUnsubscribeRepo) GetEmailSet(_ context.Context) (map[string]struct{}, error) {
	if m.emailSet == nil {
		return map[string]struct{}{}, nil
	}
	return m.emailSet, nil
}

func (m *mockUnsubscribeRepo) GetMany(_ context.Context, _ *repo.UnsubscribeFilter) ([]*entity.Unsubscribe, *repo.Pagination, error) {
	return nil, nil, nil
}

func newTestResolver(userRepo *mockUserRepo, waitlistRepo *mockWaitlistRepo, unsubscribeRepo *mockUnsubscribeRepo) *Resolver {
	if userRepo == nil {
		userRepo = new(mockUserRepo)
	}
	if waitlistRepo == nil {
		waitlistRepo = new(mockWaitlistRepo)
	}
	if unsubscribeRepo == nil {
		unsubscribeRepo = new(mockUnsubscribeRepo)
	}
	return NewResolver(userRepo, waitlistRepo, unsubscribeRepo)
}

func TestResolveAdhocNormalizesAndDedups(t *testing.T) {
	resolver := newTestResolver(nil, nil, nil)

	audience, err := resolver.Resolve(context.Background(), entity.RecipientTypeAdhoc,
		[]string{" A@b.com ", "a@B.COM", "not-an-email"})
	require.NoError(t, err)

	assert.Equal(t, []string{"a@b.com"}, audience.Emails)
}

func TestResolveAdhocDropsInvalidSilently(t *testing.T) {
	resolver := newTestResolver(nil, nil, nil)

	audience, err := resolver.Resolve(context.Background(), entity.RecipientTypeAdhoc,
		[]string{"ok@example.com", "missing-at-sign", "@nodomain", "no-tld@host"})
	require.NoError(t, err)

	assert.Equal(t, []string{"ok@example.com"}, audience.Emails)
}

func TestResolveWaitlistFiltersUnsubscribed(t *testing.T) {
	waitlistRepo := &mockWaitlistRepo{
		emails: []string{"keep@example.com", "Gone@Example.com", "also-keep@example.com"},
	}
	unsubscribeRepo := &mockUnsubscribeRepo{
		emailSet: map[string]struct{}{"gone@example.com": {}},
	}

	resolver := newTestResolver(nil, waitlistRepo, unsubscribeRepo)

	audience, err := resolver.Resolve(context.Background(), entity.RecipientTypeWaitlist, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"keep@example.com", "also-keep@example.com"}, audience.Emails)
}

func TestResolveSubscribersUsesSubscriberStatuses(t *testing.T) {
	userRepo := &mockUserRepo{
		users: []*entity.User{
			{ID: goutil.Uint64(1), Email: goutil.String("trial@example.com"), SubscriptionStatus: goutil.String("trial")},
			{ID: goutil.Uint64(2), Email: goutil.String("active@example.com"), SubscriptionStatus: goutil.String("active")},
			{ID: goutil.Uint64(3), Email: goutil.String("churned@example.com"), SubscriptionStatus: goutil.String("cancelled")},
		},
	}

	resolver := newTestResolver(userRepo, nil, nil)

	audience, err := resolver.Resolve(context.Background(), entity.RecipientTypeSubscribers, nil)
	require.NoError(t, err)

	assert.Equal(t, entity.SubscriberStatuses, userRepo.gotStatuses)
	assert.Equal(t, []string{"trial@example.com", "active@example.com"}, audience.Emails)
	assert.Equal(t, uint64(1), audience.UserIDs["trial@example.com"])
	assert.Equal(t, uint64(2), audience.UserIDs["active@example.com"])
}

func TestResolveWaitlistAttributesUsersByEmail(t *testing.T) {
	waitlistRepo := &mockWaitlistRepo{
		emails: []string{"member@example.com", "stranger@example.com"},
	}
	userRepo := &mockUserRepo{
		usersByEmail: []*entity.User{
			{ID: goutil.Uint64(42), Email: goutil.String("member@example.com")},
		},
	}

	resolver := newTestResolver(userRepo, waitlistRepo, nil)

	audience, err := resolver.Resolve(context.Background(), entity.RecipientTypeWaitlist, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"member@example.com", "stranger@example.com"}, userRepo.gotEmails)
	assert.Equal(t, uint64(42), audience.UserIDs["member@example.com"])
	_, ok := audience.UserIDs["stranger@example.com"]
	assert.False(t, ok)
}

func TestResolveUnknownRecipientType(t *testing.T) {
	resolver := newTestResolver(nil, nil, nil)

	_, err := resolver.Resolve(context.Background(), entity.RecipientTypeUnknown, nil)
	assert.Error(t, err)
}
