package pipeline

import (
	"context"

	"expense-analyzer/internal/amqp"
	"expense-analyzer/internal/storage"
)

// RunSaver stores archived runs. *storage.SQLiteRepository implements it.
type RunSaver interface {
	SaveRun(ctx context.Context, run storage.Run) error
}

// ReportPublisher sends report events. *amqp.Publisher implements it.
type ReportPublisher interface {
	PublishReport(ctx context.Context, msg *amqp.ReportGeneratedMessage) error
}

// ArchiveSink writes each report to the run archive.
type ArchiveSink struct {
	Saver RunSaver
}

// Name implements ReportSink.
func (ArchiveSink) Name() string { return "archive" }

// Publish implements ReportSink.
func (s ArchiveSink) Publish(ctx context.Context, r Report) error {
	run := storage.Run{
		ID:        r.RunID,
		InputPath: r.InputPath,
		Category:  r.Options.Category,
		FromDate:  r.Options.FromDate,
		ToDate:    r.Options.ToDate,
		Stats:     r.Stats,
		Totals:    r.Totals,
	}
	for _, a := range r.Artifacts {
		rec := storage.ArtifactRecord{
			Kind:   string(a.Kind),
			Format: string(r.Options.Format),
			Path:   a.Path,
		}
		if a.Err != nil {
			rec.Error = a.Err.Error()
		}
		run.Artifacts = append(run.Artifacts, rec)
	}
	return s.Saver.SaveRun(ctx, run)
}

// EventSink announces each report on the message broker.
type EventSink struct {
	Publisher ReportPublisher
}

// Name implements ReportSink.
func (EventSink) Name() string { return "amqp" }

// Publish implements ReportSink.
func (s EventSink) Publish(ctx context.Context, r Report) error {
	msg := amqp.NewReportGeneratedMessage(r.RunID, r.InputPath)
	msg.Count = r.Stats.Count
	msg.Total = r.Stats.Total.String()
	for _, ca := range r.Totals {
		msg.Categories = append(msg.Categories, amqp.CategoryTotal{Name: ca.Name, Amount: ca.Amount.String()})
	}
	for _, a := range r.Artifacts {
		if a.Err != nil {
			msg.Failed = append(msg.Failed, string(a.Kind))
			continue
		}
		msg.Artifacts = append(msg.Artifacts, a.Path)
	}
	return s.Publisher.PublishReport(ctx, msg)
}
