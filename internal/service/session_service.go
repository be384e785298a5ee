package service

import (
	"fmt"

	"purity-vision-be/internal/config"
	"purity-vision-be/internal/entity"
	"purity-vision-be/internal/pkg/logger"
	"purity-vision-be/internal/repository/memory"
	"purity-vision-be/pkg/motion"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISessionService interface {
	// Create returns the session for id, constructing it first if needed.
	// An empty id generates a short random one.
	Create(id string) *entity.Session
	Get(id string) (*entity.Session, bool)
	Status(id string) (entity.Status, error)
	Reset(id string) error
	SetStage(id string, stage string) error
	Delete(id string) error
	// Touch refreshes the idle timeout for a session that is actively
	// streaming frames.
	Touch(sess *entity.Session)
}

type sessionService struct {
	repo   *memory.SessionRepository
	detCfg config.DetectionConfig
	logger logger.ILogger
}

func NewSessionService(repo *memory.SessionRepository, detCfg config.DetectionConfig, log logger.ILogger) ISessionService {
	return &sessionService{
		repo:   repo,
		detCfg: detCfg,
		logger: log,
	}
}

func (s *sessionService) Create(id string) *entity.Session {
	if id == "" {
		id = uuid.New().String()[:8]
	}

	if existing, ok := s.repo.Get(id); ok {
		return existing
	}

	sess := entity.NewSession(id, s.newConfirmer())
	s.repo.Save(sess)
	s.logger.Info("SessionService", "Session created", map[string]interface{}{"session_id": id})
	return sess
}

// newConfirmer builds the configured rubbing-confirmation variant. The
// centroid-history variant is the default; the fluctuation variant tracks
// distance oscillation against the reference surface center instead.
func (s *sessionService) newConfirmer() motion.Confirmer {
	if s.detCfg.MotionVariant == "fluctuation" {
		return motion.NewFluctuationConfirmer(
			s.detCfg.FluctuationWindow,
			s.detCfg.FluctuationThreshold,
			s.detCfg.FluctuationCount,
		)
	}
	return motion.NewCentroidConfirmer(
		s.detCfg.HistorySize,
		s.detCfg.RubbingThreshold,
		s.detCfg.RubbingConfirmFrames,
	)
}

func (s *sessionService) Get(id string) (*entity.Session, bool) {
	return s.repo.Get(id)
}

func (s *sessionService) Status(id string) (entity.Status, error) {
	sess, ok := s.repo.Get(id)
	if !ok {
		return entity.Status{}, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("session %s not found", id))
	}
	return sess.Status(), nil
}

func (s *sessionService) Reset(id string) error {
	sess, ok := s.repo.Get(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("session %s not found", id))
	}
	sess.Reset()
	s.logger.Info("SessionService", "Session reset", map[string]interface{}{"session_id": id})
	return nil
}

func (s *sessionService) SetStage(id string, stage string) error {
	parsed, err := entity.ParseStage(stage)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess, ok := s.repo.Get(id)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("session %s not found", id))
	}
	sess.SetStage(parsed)
	s.logger.Info("SessionService", "Session stage set", map[string]interface{}{
		"session_id": id,
		"stage":      stage,
	})
	return nil
}

func (s *sessionService) Delete(id string) error {
	if _, ok := s.repo.Get(id); !ok {
		return fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("session %s not found", id))
	}
	s.repo.Delete(id)
	s.logger.Info("SessionService", "Session deleted", map[string]interface{}{"session_id": id})
	return nil
}

func (s *sessionService) Touch(sess *entity.Session) {
	s.repo.Save(sess)
}
