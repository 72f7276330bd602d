package handler

import (
	"context"
	"errors"

	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
	"aif/repo"
)

var (
	ErrNoRecipients = errutil.ValidationError(errors.New("no recipients after filtering"))
)

// ResolvedAudience is the final send list: normalized, deduplicated and
// filtered against the unsubscribe set. UserIDs is a best-effort match by
// email, kept for analytics attribution only.
type ResolvedAudience struct {
	Emails  []string
	UserIDs map[string]uint64
}

type Resolver struct {
	userRepo        repo.UserRepo
	waitlistRepo    repo.WaitlistRepo
	unsubscribeRepo repo.UnsubscribeRepo
}

func NewResolver(userRepo repo.UserRepo, waitlistRepo repo.WaitlistRepo, unsubscribeRepo repo.UnsubscribeRepo) *Resolver {
	return &Resolver{
		userRepo:        userRepo,
		waitlistRepo:    waitlistRepo,
		unsubscribeRepo: unsubscribeRepo,
	}
}

// Resolve re-reads the underlying audience on every call so a send always
// reflects the current table state.
func (r *Resolver) Resolve(ctx context.Context, recipientType entity.RecipientType, adhocEmails []string) (*ResolvedAudience, error) {
	var (
		rawEmails []string
		userIDs   = make(map[string]uint64)
	)

	switch recipientType {
	case entity.RecipientTypeWaitlist:
		emails, err := r.waitlistRepo.GetEmails(ctx)
		if err != nil {
			return nil, err
		}
		rawEmails = emails
	case entity.RecipientTypeAllUsers:
		users, err := r.userRepo.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		rawEmails = collectUserEmails(users, userIDs)
	case entity.RecipientTypeSubscribers:
		users, err := r.userRepo.GetBySubscriptionStatuses(ctx, entity.SubscriberStatuses)
		if err != nil {
			return nil, err
		}
		rawEmails = collectUserEmails(users, userIDs)
	case entity.RecipientTypeAdhoc:
		// invalid addresses are dropped, not errors
		for _, email := range adhocEmails {
			if goutil.IsEmail(goutil.NormalizeEmail(email)) {
				rawEmails = append(rawEmails, email)
			}
		}
	default:
		return nil, errutil.ValidationError(errors.New("unsupported recipient type"))
	}

	var (
		seen   = make(map[string]struct{}, len(rawEmails))
		emails = make([]string, 0, len(rawEmails))
	)
	for _, email := range rawEmails {
		normalized := goutil.NormalizeEmail(email)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		emails = append(emails, normalized)
	}

	unsubscribed, err := r.unsubscribeRepo.GetEmailSet(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]string, 0, len(emails))
	for _, email := range emails {
		if _, ok := unsubscribed[email]; ok {
			continue
		}
		filtered = append(filtered, email)
	}

	// attribute addresses that came in without a user attached
	if recipientType == entity.RecipientTypeWaitlist || recipientType == entity.RecipientTypeAdhoc {
		users, err := r.userRepo.GetManyByEmails(ctx, filtered)
		if err != nil {
			return nil, err
		}
		collectUserEmails(users, userIDs)
	}

	return &ResolvedAudience{
		Emails:  filtered,
		UserIDs: userIDs,
	}, nil
}

func collectUserEmails(users []*entity.User, userIDs map[string]uint64) []string {
	emails := make([]string, 0, len(users))
	for _, user := range users {
		email := user.GetEmail()
		if email == "" {
			continue
		}
		emails = append(emails, email)
		userIDs[goutil.NormalizeEmail(email)] = user.GetID()
	}
	return emails
}
