package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/divyansh1004/Manthan/internal/repository"
	"github.com/divyansh1004/Manthan/internal/tasks"
)

// RosterRefreshHandler rebuilds one classroom's cache entry from the store.
type RosterRefreshHandler struct {
	classroomRepo repository.ClassroomRepository
	cache         repository.RosterCache
}

func NewRosterRefreshHandler(classroomRepo repository.ClassroomRepository, cache repository.RosterCache) *RosterRefreshHandler {
	return &RosterRefreshHandler{classroomRepo: classroomRepo, cache: cache}
}

// ProcessTask implements asynq.Handler.
func (h *RosterRefreshHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload tasks.RosterRefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logrus.WithError(err).Error("Failed to unmarshal roster refresh payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx := logrus.WithFields(logrus.Fields{"task_type": t.Type(), "code": payload.Code})

	classroom, err := h.classroomRepo.FindByCode(ctx, payload.Code)
	if err != nil {
		if errors.Is(err, repository.ErrClassroomNotFound) {
			// Classroom is gone; make sure the cache agrees.
			if cacheErr := h.cache.Invalidate(ctx, payload.Code); cacheErr != nil {
				return fmt.Errorf("failed to drop cache for deleted classroom %s: %w", payload.Code, cacheErr)
			}
			logCtx.Info("Roster refresh: classroom deleted, cache entry dropped")
			return nil
		}
		return fmt.Errorf("failed to load classroom %s: %w", payload.Code, err)
	}

	if err := h.cache.Set(ctx, classroom); err != nil {
		return fmt.Errorf("failed to cache classroom %s: %w", payload.Code, err)
	}
	logCtx.Info("Roster refresh: cache entry rebuilt")
	return nil
}

// RosterReconcileHandler sweeps the cache, evicting entries whose classroom
// no longer exists in the store. Runs on the periodic scheduler.
type RosterReconcileHandler struct {
	classroomRepo repository.ClassroomRepository
	cache         repository.RosterCache
}

func NewRosterReconcileHandler(classroomRepo repository.ClassroomRepository, cache repository.RosterCache) *RosterReconcileHandler {
	return &RosterReconcileHandler{classroomRepo: classroomRepo, cache: cache}
}

// ProcessTask implements asynq.Handler.
func (h *RosterReconcileHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	codes, err := h.cache.Codes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list cached codes: %w", err)
	}

	evicted := 0
	for _, code := range codes {
		taken, err := h.classroomRepo.IsCodeTaken(ctx, code)
		if err != nil {
			logCtx.WithError(err).WithField("code", code).Warn("Roster reconcile: store check failed, skipping code")
			continue
		}
		if taken {
			continue
		}
		if err := h.cache.Invalidate(ctx, code); err != nil {
			logCtx.WithError(err).WithField("code", code).Warn("Roster reconcile: failed to evict stale entry")
			continue
		}
		evicted++
	}

	logCtx.WithFields(logrus.Fields{"scanned": len(codes), "evicted": evicted}).Info("Roster reconcile complete")
	return nil
}
