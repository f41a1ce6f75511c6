package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/talentpulse/assessment-backend/internal/logger"
)

// ViewTokenService issues the short-lived service-role credential the render
// worker embeds in report view URLs as a query parameter. The stateless
// headless renderer has no session, so the token is the whole handshake: it
// names exactly one assignment and expires on its own.
type ViewTokenService interface {
	Issue(assignmentID uuid.UUID) (string, error)
	Validate(token string) (uuid.UUID, error)
}

type viewTokenClaims struct {
	AssignmentID string `json:"assignment_id"`
	jwt.RegisteredClaims
}

type viewTokenService struct {
	log    *logger.Logger
	secret []byte
	ttl    time.Duration
}

func NewViewTokenService(log *logger.Logger, secret string, ttl time.Duration) (ViewTokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("missing service role secret")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &viewTokenService{
		log:    log.With("service", "ViewTokenService"),
		secret: []byte(secret),
		ttl:    ttl,
	}, nil
}

func (s *viewTokenService) Issue(assignmentID uuid.UUID) (string, error) {
	if assignmentID == uuid.Nil {
		return "", fmt.Errorf("missing assignment id")
	}
	now := time.Now()
	claims := viewTokenClaims{
		AssignmentID: assignmentID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "report_view",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *viewTokenService) Validate(tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &viewTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid view token: %w", err)
	}
	claims, ok := parsed.Claims.(*viewTokenClaims)
	if !ok || !parsed.Valid {
		return uuid.Nil, fmt.Errorf("invalid view token claims")
	}
	id, err := uuid.Parse(claims.AssignmentID)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid assignment id in view token")
	}
	return id, nil
}
