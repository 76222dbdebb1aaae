package notifier

import (
	"context"

	"docfix/internal/domain"
	"docfix/internal/report"
)

type Notification struct {
	Run    domain.Run
	Report *report.Report
}

type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
