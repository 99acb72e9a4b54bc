package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"persona-studio/internal/domain"
	"persona-studio/internal/repository"
	"persona-studio/internal/wizard"
)

var (
	ErrWizardNotFound = errors.New("wizard not found")
	ErrRateLimited    = errors.New("too many training runs, try again later")
	ErrMissingUserID  = errors.New("user_id is required")
)

const defaultPersistTimeout = 5 * time.Second

// WizardOptions agrupa la configuracion de los controllers que crea el servicio.
type WizardOptions struct {
	TickInterval   time.Duration
	Scheduler      wizard.Scheduler
	Catalog        *wizard.Catalog
	PersistTimeout time.Duration
}

type wizardSession struct {
	userID     string
	controller *wizard.Controller
	lastSeen   time.Time
}

// WizardService mantiene los wizards abiertos y persiste los personas que terminan de entrenar.
type WizardService struct {
	repo    repository.PersonaRepository
	limiter CommitLimiter
	logger  *zap.Logger
	opts    WizardOptions
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*wizardSession
}

func NewWizardService(
	repo repository.PersonaRepository,
	limiter CommitLimiter,
	logger *zap.Logger,
	opts WizardOptions,
) *WizardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.PersistTimeout <= 0 {
		opts.PersistTimeout = defaultPersistTimeout
	}
	return &WizardService{
		repo:     repo,
		limiter:  limiter,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*wizardSession),
	}
}

// Start abre un wizard nuevo para el usuario y devuelve su id.
func (s *WizardService) Start(userID string) (string, *wizard.Controller, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", nil, ErrMissingUserID
	}
	id := uuid.NewString()
	ctrl := wizard.New(wizard.Options{
		UserID:       userID,
		Scheduler:    s.opts.Scheduler,
		TickInterval: s.opts.TickInterval,
		Catalog:      s.opts.Catalog,
		OnFinished:   s.persistFinished(id),
	})

	s.mu.Lock()
	s.sessions[id] = &wizardSession{userID: userID, controller: ctrl, lastSeen: s.now()}
	s.mu.Unlock()

	s.logger.Info("wizard started", zap.String("wizard_id", id), zap.String("user_id", userID))
	return id, ctrl, nil
}

// Get devuelve el controller y renueva su marca de actividad.
func (s *WizardService) Get(id string) (*wizard.Controller, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrWizardNotFound
	}
	sess.lastSeen = s.now()
	return sess.controller, nil
}

// Commit lanza el entrenamiento respetando el limite por usuario.
// El cupo se consume bajo el lock del controller: un commit repetido o concurrente
// sobre un entrenamiento existente no lo toca.
func (s *WizardService) Commit(ctx context.Context, id string) (*wizard.Controller, error) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastSeen = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return nil, ErrWizardNotFound
	}

	ctrl := sess.controller
	err := ctrl.CommitWith(func() error {
		if s.limiter == nil || s.limiter.Allow(ctx, sess.userID) {
			return nil
		}
		s.logger.Warn("commit rate limited", zap.String("wizard_id", id), zap.String("user_id", sess.userID))
		return ErrRateLimited
	})
	if err != nil {
		return ctrl, err
	}
	return ctrl, nil
}

// Discard cierra el wizard y lo olvida. Un entrenamiento en curso no emite nada.
func (s *WizardService) Discard(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrWizardNotFound
	}
	sess.controller.Close()
	s.logger.Info("wizard discarded", zap.String("wizard_id", id))
	return nil
}

// Sweep cierra los wizards sin actividad por mas de ttl. Devuelve cuantos cerro.
func (s *WizardService) Sweep(ttl time.Duration) int {
	cutoff := s.now().Add(-ttl)
	var stale []*wizard.Controller

	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastSeen.Before(cutoff) {
			stale = append(stale, sess.controller)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range stale {
		ctrl.Close()
	}
	if len(stale) > 0 {
		s.logger.Info("idle wizards swept", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// StartIdleSweeper corre Sweep periodicamente hasta que ctx se cancele.
func (s *WizardService) StartIdleSweeper(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 || ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep(ttl)
			}
		}
	}()
}

// CloseAll cierra todos los wizards. Se usa al apagar el servidor.
func (s *WizardService) CloseAll() {
	s.mu.Lock()
	sessions := s.sessions
	s.sessions = make(map[string]*wizardSession)
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.controller.Close()
	}
}

// Len devuelve cuantos wizards hay abiertos.
func (s *WizardService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *WizardService) persistFinished(wizardID string) wizard.FinishedFunc {
	return func(persona domain.Persona) {
		if s.repo == nil {
			s.logger.Warn("no persona repository configured, record dropped", zap.String("persona_id", persona.ID))
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.opts.PersistTimeout)
		defer cancel()
		if err := s.repo.Create(ctx, persona); err != nil {
			s.logger.Error("persist persona failed",
				zap.String("wizard_id", wizardID),
				zap.String("persona_id", persona.ID),
				zap.Error(err),
			)
			return
		}
		s.logger.Info("persona persisted",
			zap.String("wizard_id", wizardID),
			zap.String("persona_id", persona.ID),
			zap.String("user_id", persona.UserID),
		)
	}
}
