package gallery

import (
	"context"
	"fmt"

	"github.com/templui/imagehost/internal/client"
	"github.com/templui/imagehost/internal/model"
	"github.com/templui/imagehost/internal/validation"
)

// ProgressFunc is called after every upload attempt of a batch.
// percent counts successes only: floor(succeeded*100/total).
type ProgressFunc func(percent, attempted, total int)

type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomePartial
	OutcomeComplete
)

func (o Outcome) String() string {
	switch o {
	case OutcomePartial:
		return "partial"
	case OutcomeComplete:
		return "complete"
	default:
		return "failed"
	}
}

// FileError ties a failure to the file it belongs to
type FileError struct {
	Filename string
	Err      error
}

func (e FileError) Error() string {
	return e.Filename + ": " + client.Message(e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// BatchReport is the result of UploadBatch
type BatchReport struct {
	Total     int // admitted files only
	Succeeded int
	Uploaded  []*model.Image
	Failed    []FileError
	Rejected  []FileError // excluded before the batch started
	Outcome   Outcome
}

// Summary renders the success count as "succeeded/total"
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
}

// Admit splits files into those allowed into an upload batch and those
// rejected by the image constraints. Rejected files are never sent.
func Admit(files []*model.Upload) ([]*model.Upload, []FileError) {
	admitted := make([]*model.Upload, 0, len(files))
	var rejected []FileError

	for _, f := range files {
		err := validation.ValidateFile(f, validation.ImageConstraints)
		if err != nil {
			name := ""
			if f != nil {
				name = f.Filename
			}
			rejected = append(rejected, FileError{Filename: name, Err: err})
			continue
		}
		admitted = append(admitted, f)
	}

	return admitted, rejected
}

// UploadBatch uploads files one at a time, in order, with the same description.
// A failed file is logged and counted and the next one is still attempted.
// If at least one upload succeeded the gallery is refreshed once at the end.
// The returned error is only set for validation failures, in which case nothing was sent.
func (g *Gallery) UploadBatch(ctx context.Context, files []*model.Upload, description string, progress ProgressFunc) (*BatchReport, error) {
	if progress == nil {
		progress = func(int, int, int) {}
	}

	admitted, rejected := Admit(files)
	for _, r := range rejected {
		g.log.Warn("file excluded from upload", "filename", r.Filename, "error", r.Err)
		g.notify(LevelError, r.Error(), r.Err)
	}

	report := &BatchReport{
		Total:    len(admitted),
		Rejected: rejected,
		Uploaded: []*model.Image{},
	}

	err := validation.ValidateDescription(description)
	if err != nil {
		g.notify(LevelError, client.Message(err), err)
		return report, err
	}

	if len(admitted) == 0 {
		g.notify(LevelError, client.Message(validation.ErrNoFiles), validation.ErrNoFiles)
		return report, validation.ErrNoFiles
	}

	g.status = StatusUploading
	for i, f := range admitted {
		image, err := g.api.UploadImage(ctx, f, description)
		if err != nil {
			g.log.Error("failed to upload image", "filename", f.Filename, "error", err)
			report.Failed = append(report.Failed, FileError{Filename: f.Filename, Err: err})
		} else {
			report.Succeeded++
			report.Uploaded = append(report.Uploaded, image)
		}
		progress(report.Succeeded*100/report.Total, i+1, report.Total)
	}
	g.status = StatusIdle

	switch {
	case report.Succeeded == 0:
		report.Outcome = OutcomeFailed
		g.notify(LevelError, "all image uploads failed", nil)
		return report, nil
	case report.Succeeded < report.Total:
		report.Outcome = OutcomePartial
		g.notify(LevelWarning, fmt.Sprintf("uploaded %s images", report.Summary()), nil)
	default:
		report.Outcome = OutcomeComplete
		g.notify(LevelSuccess, fmt.Sprintf("uploaded %d images", report.Succeeded), nil)
	}

	_ = g.Refresh(ctx)
	return report, nil
}
