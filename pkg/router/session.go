package router

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"aif/entity"
	"aif/pkg/errutil"
	"aif/pkg/goutil"
	"aif/pkg/httputil"
	"aif/repo"
)

type ContextInfo interface {
	SetUser(user *entity.User)
}

type contextKey string

const (
	userKey contextKey = "user"
)

type sessionMiddleware struct {
	userRepo    repo.UserRepo
	sessionRepo repo.SessionRepo
	adminRepo   repo.AdminRepo
}

// NewSessionMiddleware authenticates the session token and, because every
// guarded route here is an admin surface, also requires the admin role.
func NewSessionMiddleware(userRepo repo.UserRepo, sessionRepo repo.SessionRepo, adminRepo repo.AdminRepo) Middleware {
	return &sessionMiddleware{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		adminRepo:   adminRepo,
	}
}

func (m *sessionMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token := r.Header.Get("X-Session-ID")
		if token == "" {
			log.Ctx(ctx).Error().Msg("token is empty")
			m.returnUnauthorized(w)
			return
		}

		decodedToken, err := goutil.Base64Decode(token)
		if err != nil {
			log.Ctx(ctx).Error().Msgf("decode token error, err: %v", err)
			m.returnUnauthorized(w)
			return
		}

		session, err := m.sessionRepo.GetByTokenHash(ctx, goutil.Sha256(decodedToken))
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get session error, err: %v", err)
			m.returnUnauthorized(w)
			return
		}

		user, err := m.userRepo.GetByID(ctx, session.GetUserID())
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get user error, err: %v, userID: %v", err, session.GetUserID())
			m.returnUnauthorized(w)
			return
		}

		isAdmin, err := m.adminRepo.IsAdmin(ctx, user.GetID())
		if err != nil {
			log.Ctx(ctx).Error().Msgf("get admin role error, err: %v, userID: %v", err, user.GetID())
			m.returnUnauthorized(w)
			return
		}
		if !isAdmin {
			httputil.ReturnServerResponse(w, nil, errutil.ForbiddenError(errors.New("admin role required")))
			return
		}

		ctx = context.WithValue(ctx, userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *sessionMiddleware) returnUnauthorized(w http.ResponseWriter) {
	// abstract all errors as invalid session
	httputil.ReturnServerResponse(w, nil, errutil.UnauthorizedError(errors.New("invalid session")))
}

func GetUserFromContext(ctx context.Context) (*entity.User, bool) {
	val := ctx.Value(userKey)
	if user, ok := val.(*entity.User); ok {
		return user, true
	}
	return nil, false
}
