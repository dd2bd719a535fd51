package storefront

import (
	"context"

	"github.com/khatmdev/quadramall-sub001/pkg/logger"
)

// Notifier surfaces transient shopper notifications.
type Notifier interface {
	Success(ctx context.Context, message string)
	Info(ctx context.Context, message string)
	Error(ctx context.Context, message string, err error)
}

// LogNotifier writes notifications to the structured log.
type LogNotifier struct {
	logg *logger.Logger
}

func NewLogNotifier(logg *logger.Logger) *LogNotifier {
	if logg == nil {
		logg = logger.Nop()
	}
	return &LogNotifier{logg: logg}
}

func (n *LogNotifier) Success(ctx context.Context, message string) {
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{"toast": "success", "toast_message": message}), "storefront.notify")
}

func (n *LogNotifier) Info(ctx context.Context, message string) {
	n.logg.Info(n.logg.WithFields(ctx, map[string]any{"toast": "info", "toast_message": message}), "storefront.notify")
}

func (n *LogNotifier) Error(ctx context.Context, message string, err error) {
	ctx = n.logg.WithFields(ctx, map[string]any{"toast": "error", "toast_message": message})
	if err == nil {
		n.logg.Warn(ctx, "storefront.notify")
		return
	}
	n.logg.Warn(n.logg.WithField(ctx, "error", err.Error()), "storefront.notify")
}
