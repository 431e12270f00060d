package minio

import (
	"context"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

// ArchivedObject describes one uploaded file.
type ArchivedObject struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// ArchiveSink copies the files of a finished run to object storage under
// <prefix>runs/<run id>/.
type ArchiveSink struct {
	client *MinIOClient
	logger logging.Logger
	now    func() time.Time
}

func NewArchiveSink(client *MinIOClient, logger logging.Logger) *ArchiveSink {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &ArchiveSink{client: client, logger: logger.Named("archive"), now: time.Now}
}

// RunPrefix returns the object key prefix of a run.
func (a *ArchiveSink) RunPrefix(runID uuid.UUID) string {
	return a.client.config.Prefix + "runs/" + runID.String() + "/"
}

// Archive uploads every file in paths.  It stops at the first failure; files
// already uploaded stay in place.
func (a *ArchiveSink) Archive(ctx context.Context, runID uuid.UUID, paths []string) ([]ArchivedObject, error) {
	if a.client.isClosed() {
		return nil, ErrMinIOClientClosed
	}
	prefix := a.RunPrefix(runID)
	out := make([]ArchivedObject, 0, len(paths))
	for _, p := range paths {
		obj, err := a.upload(ctx, prefix, p)
		if err != nil {
			return out, err
		}
		out = append(out, obj)
	}
	a.logger.Info("run archived",
		logging.String("run_id", runID.String()),
		logging.String("bucket", a.client.config.Bucket),
		logging.Int("objects", len(out)))
	return out, nil
}

func (a *ArchiveSink) upload(ctx context.Context, prefix, localPath string) (ArchivedObject, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return ArchivedObject{}, errors.Wrap(err, errors.ErrCodeArchiveFailed, "open file for archive").
			WithDetail("path=" + localPath)
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return ArchivedObject{}, errors.Wrap(err, errors.ErrCodeArchiveFailed, "stat file for archive")
	}

	key := path.Join(prefix, filepath.Base(localPath))
	info, err := a.client.client.PutObject(ctx, a.client.config.Bucket, key, f, st.Size(), minio.PutObjectOptions{
		ContentType: contentType(localPath),
		PartSize:    a.client.config.PartSize,
	})
	if err != nil {
		return ArchivedObject{}, errors.Wrap(err, errors.ErrCodeArchiveFailed, "upload failed").
			WithDetail("key=" + key)
	}
	a.logger.Debug("object uploaded", logging.String("key", key), logging.Int64("size", info.Size))
	return ArchivedObject{
		Bucket:     info.Bucket,
		ObjectKey:  key,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: a.now(),
	}, nil
}

// ListRun returns the object keys stored for a run.
func (a *ArchiveSink) ListRun(ctx context.Context, runID uuid.UUID) ([]string, error) {
	var keys []string
	for obj := range a.client.client.ListObjects(ctx, a.client.config.Bucket, minio.ListObjectsOptions{
		Prefix:    a.RunPrefix(runID),
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrap(obj.Err, errors.ErrCodeStorageError, "list archived run")
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".tsv", ".txt":
		return "text/tab-separated-values"
	case ".yaml", ".yml":
		return "application/yaml"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if t := mime.TypeByExtension(filepath.Ext(p)); t != "" {
		return t
	}
	return "application/octet-stream"
}

//Personal.AI order the ending
