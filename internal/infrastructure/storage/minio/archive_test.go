package minio

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

func newTestArchive(t *testing.T, api *mockMinIOAPI) *ArchiveSink {
	t.Helper()
	api.On("BucketExists", mock.Anything, "qc").Return(true, nil)
	c, err := NewMinIOClientWithAPI(context.Background(), api, &MinIOConfig{Bucket: "qc", Prefix: "lab/"}, nil)
	require.NoError(t, err)
	return NewArchiveSink(c, nil)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestArchive_UploadsUnderRunPrefix(t *testing.T) {
	api := &mockMinIOAPI{}
	a := newTestArchive(t, api)
	dir := t.TempDir()
	tsv := writeFile(t, dir, "chemlogqc_qm_mulliken.tsv", "Sample\t1\nmol\t-0.4\n")
	rep := writeFile(t, dir, "report.json", "{}")
	runID := uuid.MustParse("00000000-0000-0000-0000-000000000001")

	prefix := "lab/runs/00000000-0000-0000-0000-000000000001/"
	api.On("PutObject", mock.Anything, "qc", prefix+"chemlogqc_qm_mulliken.tsv", mock.Anything, int64(18),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "text/tab-separated-values" })).
		Return(minio.UploadInfo{Bucket: "qc", ETag: "e1", Size: 18}, nil)
	api.On("PutObject", mock.Anything, "qc", prefix+"report.json", mock.Anything, int64(2),
		mock.MatchedBy(func(o minio.PutObjectOptions) bool { return o.ContentType == "application/json" })).
		Return(minio.UploadInfo{Bucket: "qc", ETag: "e2", Size: 2}, nil)

	objs, err := a.Archive(context.Background(), runID, []string{tsv, rep})
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, prefix+"report.json", objs[1].ObjectKey)
	assert.Equal(t, "e1", objs[0].ETag)
	api.AssertExpectations(t)
}

func TestArchive_UploadFailure(t *testing.T) {
	api := &mockMinIOAPI{}
	a := newTestArchive(t, api)
	p := writeFile(t, t.TempDir(), "x.json", "[]")
	api.On("PutObject", mock.Anything, "qc", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, stderrors.New("quota exceeded"))

	objs, err := a.Archive(context.Background(), uuid.New(), []string{p})
	assert.Empty(t, objs)
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveFailed))
}

func TestArchive_MissingFile(t *testing.T) {
	a := newTestArchive(t, &mockMinIOAPI{})
	_, err := a.Archive(context.Background(), uuid.New(), []string{"/does/not/exist.tsv"})
	assert.True(t, errors.IsCode(err, errors.ErrCodeArchiveFailed))
}

func TestArchive_ClosedClient(t *testing.T) {
	a := newTestArchive(t, &mockMinIOAPI{})
	require.NoError(t, a.client.Close())
	_, err := a.Archive(context.Background(), uuid.New(), nil)
	assert.Equal(t, ErrMinIOClientClosed, err)
}

func TestListRun(t *testing.T) {
	api := &mockMinIOAPI{}
	a := newTestArchive(t, api)
	runID := uuid.New()

	ch := make(chan minio.ObjectInfo, 2)
	ch <- minio.ObjectInfo{Key: a.RunPrefix(runID) + "report.json"}
	ch <- minio.ObjectInfo{Key: a.RunPrefix(runID) + "a.tsv"}
	close(ch)
	api.On("ListObjects", mock.Anything, "qc", minio.ListObjectsOptions{Prefix: a.RunPrefix(runID), Recursive: true}).
		Return((<-chan minio.ObjectInfo)(ch))

	keys, err := a.ListRun(context.Background(), runID)
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}

//Personal.AI order the ending
