package observability

import (
	"log/slog"

	"github.com/aretw0/statekit/pkg/domain"
)

// LogHooks returns store hooks that write one structured record per event.
func LogHooks(logger *slog.Logger) domain.StoreHooks {
	return domain.StoreHooks{
		OnUpdate: func(e *domain.UpdateEvent) {
			logger.Info("store_update",
				"store", e.Store,
				"action", e.Action,
				"changed", e.ChangedKeys,
			)
		},
		OnDestroy: func(store string) {
			logger.Info("store_destroy", "store", store)
		},
	}
}
