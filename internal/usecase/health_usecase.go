package usecase

import (
	"context"
	"time"

	"go-resume-matcher/internal/domain"
)

// Pinger reports whether a dependency is reachable
type Pinger func(ctx context.Context) error

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase takes one Pinger per dependency. A nil Pinger reports "disabled".
func NewHealthUsecase(checks map[string]Pinger) domain.HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := map[string]string{
		"status": "ok",
	}
	for name, ping := range u.checks {
		switch {
		case ping == nil:
			status[name] = "disabled"
		case ping(ctx) != nil:
			status[name] = "down"
			status["status"] = "degraded"
		default:
			status[name] = "up"
		}
	}
	return status
}
