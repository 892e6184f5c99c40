// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Compass Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Service is the authentication orchestrator and session lifecycle
// manager. Every inbound request runs as its own unit of work; the
// service holds no per-request state and relies on the Transactor for
// read-modify-write atomicity.
type Service struct {
	users    UserRepository
	sessions SessionRepository
	tx       Transactor
	audit    AuditSink
	chain    []HashAlgorithm
	ttl      time.Duration
	maxSess  int
	logger   *slog.Logger
	now      func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithSessionTTL overrides the session time-to-live.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

// WithMaxSessions overrides the per-user active session cap.
func WithMaxSessions(n int) ServiceOption {
	return func(s *Service) { s.maxSess = n }
}

// WithHashChain overrides the password hash chain. The same chain must
// be configured wherever passwords are written (see cmd seed).
func WithHashChain(chain []HashAlgorithm) ServiceOption {
	return func(s *Service) { s.chain = chain }
}

// WithAuditSink attaches a best-effort audit sink.
func WithAuditSink(sink AuditSink) ServiceOption {
	return func(s *Service) { s.audit = sink }
}

// WithClock overrides the service clock. Tests use this to advance time
// past a session's expiry.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service.
func NewService(users UserRepository, sessions SessionRepository, tx Transactor, logger *slog.Logger, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("users repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Service{
		users:    users,
		sessions: sessions,
		tx:       tx,
		chain:    DefaultHashChain,
		ttl:      DefaultSessionTTL,
		maxSess:  DefaultMaxSessions,
		logger:   logger,
		now:      Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Authenticate verifies raw credentials and issues a new session.
//
// The lookup matches on contact username and the chained password hash
// together, so "no such user" and "wrong password" are the same zero-row
// outcome and share one error. Expired sessions are swept before the
// capacity gate so dead sessions never count against the limit.
func (s *Service) Authenticate(ctx context.Context, username, password, clientIP string) (*Session, error) {
	hashed := RotateHash([]byte(password), s.chain...)

	recs, err := s.users.Lookup(ctx, LookupFilter{Username: username, HashedPassword: hashed})
	if err != nil {
		return nil, oops.Code("AUTH_LOOKUP_FAILED").
			With("operation", "lookup user by credentials").
			Wrap(err)
	}
	if len(recs) == 0 {
		s.recordAudit(ctx, "login.denied", "", map[string]any{"username": username, "reason": "credentials"})
		loginAttempts.WithLabelValues("denied").Inc()
		return nil, oops.Code(CodeInvalidCredentials).Errorf("incorrect username or password")
	}
	if len(recs) > 1 {
		return nil, oops.Code(CodeIntegrityViolation).
			With("username", username).
			With("matches", len(recs)).
			Errorf("multiple users matched a unique credential pair")
	}

	user, err := ToWire(recs[0])
	if err != nil {
		return nil, err
	}

	active, err := s.ValidateSessions(ctx, user, nil, "")
	if err != nil {
		return nil, err
	}

	if len(active)+1 > s.maxSess {
		s.recordAudit(ctx, "login.denied", user.ID.String(), map[string]any{"reason": "session limit", "active": len(active)})
		loginAttempts.WithLabelValues("limited").Inc()
		return nil, oops.Code(CodeSessionLimit).
			With("active_sessions", len(active)).
			With("max_sessions", s.maxSess).
			Errorf("too many active sessions")
	}

	session, err := s.CreateSession(ctx, user, clientIP)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, "login.succeeded", user.ID.String(), map[string]any{"ip": clientIP})
	loginAttempts.WithLabelValues("succeeded").Inc()
	return session, nil
}

// CreateSession issues a token, stamps the expiry, and persists the new
// session together with the owner's updated timestamp in one
// transaction. A token collision is retried exactly once with a fresh
// token; a second collision surfaces as a conflict.
func (s *Service) CreateSession(ctx context.Context, user *User, clientIP string) (*Session, error) {
	var session *Session

	backoff := retry.WithMaxRetries(1, retry.NewConstant(time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		token, err := NewSessionToken(&user.ID)
		if err != nil {
			return err
		}

		now := s.now()
		session = &Session{
			ID:        token,
			OwnerID:   user.ID,
			IPAddress: clientIP,
			InvalidOn: now.Add(s.ttl),
			CreatedAt: now,
			UpdatedOn: now,
		}

		err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
			if err := s.sessions.Insert(ctx, SessionToStorage(*session)); err != nil {
				return err
			}
			return s.users.Touch(ctx, user.ID.String(), now)
		})
		if errors.Is(err, ErrConflict) {
			s.logger.Warn("session token collision, regenerating",
				"owner_id", user.ID.String())
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, oops.Code(CodeSessionConflict).
				With("owner_id", user.ID.String()).
				Errorf("session already exists")
		}
		return nil, oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	sessionsCreated.Inc()
	return session, nil
}

// ValidateSessions scans the user's sessions and deletes every one whose
// invalid_on has passed, returning the surviving sessions. The scan and
// the batched deletes run in a single transaction.
//
// When sessionID and clientIP are given the scan is scoped to that pair;
// both must be supplied or neither. The scoped form only narrows the
// scan — it does not extend invalid_on. A session lives exactly its
// original TTL regardless of use.
func (s *Service) ValidateSessions(ctx context.Context, user *User, sessionID []byte, clientIP string) ([]Session, error) {
	if (sessionID == nil) != (clientIP == "") {
		return nil, oops.Code(CodeInvalidArgument).
			With("session_id_present", sessionID != nil).
			With("client_ip_present", clientIP != "").
			Errorf("session_id and client_ip must be supplied together")
	}

	var survivors []Session
	var expired int

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		recs, err := s.sessions.ListByOwner(ctx, user.ID.String(), sessionID, clientIP)
		if err != nil {
			return err
		}

		now := s.now()
		survivors = survivors[:0]
		expired = 0
		for _, rec := range recs {
			session, err := sessionToWire(rec)
			if err != nil {
				return err
			}
			if session.IsExpiredAt(now) {
				// Racing deletes are fine: removing an already-removed
				// session is a no-op at the repository.
				if err := s.sessions.Delete(ctx, rec.ID); err != nil {
					return err
				}
				expired++
				continue
			}
			survivors = append(survivors, session)
		}
		return nil
	})
	if err != nil {
		return nil, oops.Code("AUTH_SESSION_VALIDATE_FAILED").
			With("operation", "sweep expired sessions").
			With("owner_id", user.ID.String()).
			Wrap(err)
	}

	if expired > 0 {
		sessionsExpired.Add(float64(expired))
		s.recordAudit(ctx, "session.expired", user.ID.String(), map[string]any{"swept": expired})
	}
	return survivors, nil
}

func (s *Service) recordAudit(ctx context.Context, kind, actorID string, detail map[string]any) {
	if s.audit == nil {
		return
	}
	s.audit.Record(ctx, kind, actorID, detail)
}
