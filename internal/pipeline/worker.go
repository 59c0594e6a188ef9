package pipeline

import (
	"context"
	"log/slog"

	"github.com/russellconstruction9/RRsolutions/internal/session"
)

// Worker processes a single estimate job and stores its documents as a
// session.
type Worker struct {
	proc     *Processor
	sessions session.Store
	log      *slog.Logger
}

func NewWorker(proc *Processor, sessions session.Store, log *slog.Logger) *Worker {
	return &Worker{proc: proc, sessions: sessions, log: log}
}

// Process runs the pipeline for a job. The job's file data is released when
// processing ends.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	defer job.SetFileData(nil)

	phase := "queued"
	out, err := w.proc.Run(ctx, Input{
		Filename: job.Filename,
		Data:     job.FileData(),
		Format:   job.Format,
	}, func(s JobStatus) {
		phase = string(s)
		job.SetStatus(s, phase)
	})
	if out != nil {
		job.SetAttempts(out.Attempts)
		if out.Info != nil {
			job.SetPages(out.Info.Pages)
		}
	}
	if err != nil {
		log.Error("job failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}
	job.AddWarnings(out.Warnings()...)

	sess := session.New(job.Filename, job.Format, out.Result.Documents, out.Findings)
	if err := w.sessions.Create(ctx, sess); err != nil {
		log.Error("session create failed", "error", err)
		job.AddError("store session: " + err.Error())
		job.SetStatus(StatusFailed, "storing")
		return
	}

	job.Complete(sess.ID, len(out.Result.Documents))
	log.Info("job complete", "session_id", sess.ID, "documents", len(out.Result.Documents))
}
