package service

import (
	"context"
	"errors"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/config"
	"github.com/likbrus/likbrus.github.io/internal/dto"
	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
	bcryptCost       = 12
)

// Identity is a resolved, live session. Privileged is looked up in
// admin_users on every resolution and never read from the token.
type Identity struct {
	UserID     uuid.UUID
	Email      string
	SessionID  uuid.UUID
	Privileged bool
}

// TokenClaims are the JWT claims issued at sign-in.
type TokenClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	Type      string `json:"typ"`
	jwt.RegisteredClaims
}

type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error)
	Logout(ctx context.Context, sessionID uuid.UUID) error
	// Resolve validates an access token against its live session and
	// re-derives the privilege flag.
	Resolve(ctx context.Context, accessToken string) (*Identity, error)
}

type authService struct {
	users    repository.UserRepository
	admins   repository.AdminRepository
	sessions repository.SessionStore
	notifier ChangeNotifier
	cfg      *config.Config
}

func NewAuthService(
	users repository.UserRepository,
	admins repository.AdminRepository,
	sessions repository.SessionStore,
	notifier ChangeNotifier,
	cfg *config.Config,
) AuthService {
	return &authService{users: users, admins: admins, sessions: sessions, notifier: notifier, cfg: cfg}
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess := &repository.Session{ID: uuid.New(), UserID: user.ID, CreatedAt: time.Now()}
	if err := s.sessions.Create(ctx, sess, s.refreshTTL()); err != nil {
		return nil, backendErr("kunne ikke opprette økt", err)
	}

	resp, err := s.issue(ctx, user, sess.ID)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableAuth, Op: model.OpSignedIn, SessionID: sess.ID.String()})
	log.Info().Str("email", user.Email).Bool("admin", resp.User.IsAdmin).Msg("signed in")
	return resp, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*dto.LoginResponse, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, ErrSessionExpired
	}
	sid, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrSessionExpired
	}
	if err := s.sessions.Touch(ctx, sid, s.refreshTTL()); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, backendErr("kunne ikke forlenge økt", err)
	}

	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrSessionExpired
	}
	user, err := s.users.FindByID(ctx, uid)
	if err != nil {
		return nil, ErrSessionExpired
	}

	resp, err := s.issue(ctx, user, sid)
	if err != nil {
		return nil, err
	}
	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableAuth, Op: model.OpTokenRefreshed, SessionID: sid.String()})
	return resp, nil
}

// Logout revokes the session. Tokens already handed out stop resolving
// immediately.
func (s *authService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return backendErr("kunne ikke avslutte økt", err)
	}
	publish(ctx, s.notifier, model.ChangeEvent{Table: model.TableAuth, Op: model.OpSignedOut, SessionID: sessionID.String()})
	return nil
}

func (s *authService) Resolve(ctx context.Context, accessToken string) (*Identity, error) {
	if accessToken == "" {
		return nil, ErrUnauthenticated
	}
	claims, err := s.parse(accessToken, tokenTypeAccess)
	if err != nil {
		return nil, ErrSessionExpired
	}
	sid, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrSessionExpired
	}
	sess, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, backendErr("kunne ikke hente økt", err)
	}

	return &Identity{
		UserID:     sess.UserID,
		Email:      claims.Email,
		SessionID:  sid,
		Privileged: s.isAdmin(ctx, sess.UserID),
	}, nil
}

// isAdmin treats a failed lookup as not privileged.
func (s *authService) isAdmin(ctx context.Context, userID uuid.UUID) bool {
	ok, err := s.admins.IsAdmin(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("admin lookup failed")
		return false
	}
	return ok
}

func (s *authService) issue(ctx context.Context, user *model.User, sid uuid.UUID) (*dto.LoginResponse, error) {
	access, err := s.sign(user, sid, tokenTypeAccess, s.accessTTL())
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(user, sid, tokenTypeRefresh, s.refreshTTL())
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresIn:    int(s.accessTTL().Seconds()),
		User: dto.UserResponse{
			ID:      user.ID.String(),
			Email:   user.Email,
			IsAdmin: s.isAdmin(ctx, user.ID),
		},
	}, nil
}

func (s *authService) sign(user *model.User, sid uuid.UUID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID:    user.ID.String(),
		Email:     user.Email,
		SessionID: sid.String(),
		Type:      typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
}

func (s *authService) parse(raw, wantType string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Type != wantType {
		return nil, errors.New("wrong token type")
	}
	return claims, nil
}

func (s *authService) accessTTL() time.Duration {
	return time.Duration(s.cfg.JWTExpirationHours) * time.Hour
}

func (s *authService) refreshTTL() time.Duration {
	return time.Duration(s.cfg.JWTRefreshHours) * time.Hour
}
