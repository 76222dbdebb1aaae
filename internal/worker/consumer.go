package worker

import (
	"bytes"
	"context"
	"html/template"
	"log"

	"docfix/internal/domain"
	"docfix/internal/notifier"
	"docfix/internal/queue"
)

type Broadcaster interface {
	Broadcast(msg string)
}

type ChecksumSetter interface {
	SetChecksum(ctx context.Context, path, sum string) error
}

type Consumer struct {
	consumer    queue.Consumer
	processor   *Processor
	checksums   ChecksumSetter
	broadcaster Broadcaster
	notifier    notifier.Notifier
	feedTmpl    *template.Template
}

func NewConsumer(c queue.Consumer, p *Processor, cs ChecksumSetter, b Broadcaster) *Consumer {
	tmpl := template.Must(template.New("run-item").Parse(`
<div class="item">
    <div class="item-head">
        <div class="item-path">{{.Path}}</div>
        <div class="item-time">just now</div>
    </div>
    <div class="item-body">labeled {{.Labeled}}, skipped {{.Skipped}}, unlabeled {{.Unlabeled}}</div>
    {{range $label, $n := .Distribution}}
    <div class="tag {{$label}}">{{$label}}: {{$n}}</div>
    {{end}}
</div>`))

	return &Consumer{
		consumer:    c,
		processor:   p,
		checksums:   cs,
		broadcaster: b,
		feedTmpl:    tmpl,
	}
}

// WithNotifier sends an alert for every run that leaves unlabeled blocks.
func (w *Consumer) WithNotifier(n notifier.Notifier) *Consumer {
	w.notifier = n
	return w
}

func (w *Consumer) Start(ctx context.Context) error {
	return w.consumer.Consume(ctx, w.handleJob)
}

func (w *Consumer) handleJob(ctx context.Context, job domain.Job) error {
	log.Printf("[RECEIVED] %s (%s)", job.Path, job.Source)

	res, err := w.processor.Process(ctx, job.Path)
	if err != nil {
		log.Printf("[ERROR] process %s: %v", job.Path, err)
		return err
	}

	if w.checksums != nil {
		if err := w.checksums.SetChecksum(ctx, job.Path, res.Run.Checksum); err != nil {
			log.Printf("[ERROR] checksum %s: %v", job.Path, err)
		}
	}

	if w.broadcaster != nil {
		var buf bytes.Buffer
		if err := w.feedTmpl.Execute(&buf, res.Run); err == nil {
			w.broadcaster.Broadcast(buf.String())
		}
	}

	if w.notifier != nil && res.Report.Unlabeled > 0 {
		if err := w.notifier.Notify(ctx, notifier.Notification{Run: res.Run, Report: res.Report}); err != nil {
			log.Printf("[ERROR] notify %s: %v", job.Path, err)
		}
	}

	log.Printf("[REWRITE] %s: labeled=%d, skipped=%d, unlabeled=%d, substitutions=%d",
		job.Path, res.Run.Labeled, res.Run.Skipped, res.Run.Unlabeled, res.Run.Substitutions)

	return nil
}
