// internal/app/features/announcements/handler.go
package announcements

import (
	"time"

	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/app/system/timefmt"
	"go.uber.org/zap"
)

// storagePrefix is the first segment of attachment keys.
const storagePrefix = "announcements"

// Handler owns all announcement endpoints.
type Handler struct {
	Store  records.AnnouncementRepo
	Files  *filestore.Saver
	Fmt    timefmt.Formatter
	Audit  *auditlog.Logger
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger

	// UploadMax bounds a single attachment in bytes.
	UploadMax int64
	Now       func() time.Time
}

// NewHandler constructs an announcements Handler.
func NewHandler(store records.AnnouncementRepo, files *filestore.Saver, fmtr timefmt.Formatter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	var max int64
	if files != nil {
		max = files.MaxBytes
	}
	return &Handler{
		Store:     store,
		Files:     files,
		Fmt:       fmtr,
		Audit:     audit,
		Log:       logger,
		ErrLog:    errLog,
		UploadMax: max,
		Now:       time.Now,
	}
}
