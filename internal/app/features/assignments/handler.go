// internal/app/features/assignments/handler.go
package assignments

import (
	"time"

	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/app/system/timefmt"
	"go.uber.org/zap"
)

const storagePrefix = "assignments"

// Handler owns all assignment endpoints.
type Handler struct {
	Store  records.AssignmentRepo
	Files  *filestore.Saver
	Fmt    timefmt.Formatter
	Audit  *auditlog.Logger
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	UploadMax int64
	// Now is the reference time for countdowns and the open/closed filter.
	Now func() time.Time
}

func NewHandler(store records.AssignmentRepo, files *filestore.Saver, fmtr timefmt.Formatter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	h := &Handler{
		Store:  store,
		Files:  files,
		Fmt:    fmtr,
		Audit:  audit,
		Log:    logger,
		ErrLog: errLog,
		Now:    time.Now,
	}
	if files != nil {
		h.UploadMax = files.MaxBytes
	}
	return h
}
