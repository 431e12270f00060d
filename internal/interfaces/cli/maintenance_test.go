package cli

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/internal/config"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

func cacheConfig(t *testing.T, addr string) string {
	return writeFile(t, t.TempDir(), "chemlogqc.yaml",
		"log:\n  level: error\ncache:\n  redis:\n    addr: "+addr+"\n")
}

func TestCachePurge_OneModule(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("chemlogqc:parse:qm:v1:aaa", "{}"))
	require.NoError(t, mr.Set("chemlogqc:parse:qm:v1:bbb", "{}"))
	require.NoError(t, mr.Set("chemlogqc:parse:tessellate:v1:ccc", "{}"))

	out, err := executeRoot(t, "--config", cacheConfig(t, mr.Addr()), "cache", "purge", "qm")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 2 cached results removed")
	assert.False(t, mr.Exists("chemlogqc:parse:qm:v1:aaa"))
	assert.True(t, mr.Exists("chemlogqc:parse:tessellate:v1:ccc"))
}

func TestCachePurge_AllModules(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("chemlogqc:parse:qm:v1:aaa", "{}"))
	require.NoError(t, mr.Set("chemlogqc:parse:tesselate:v1:ddd", "{}"))
	require.NoError(t, mr.Set("other:key", "{}"))

	out, err := executeRoot(t, "--config", cacheConfig(t, mr.Addr()), "cache", "purge")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: 2 cached results removed")
	assert.True(t, mr.Exists("other:key"))
}

func TestCachePurge_UnknownModule(t *testing.T) {
	mr := miniredis.RunT(t)
	_, err := executeRoot(t, "--config", cacheConfig(t, mr.Addr()), "cache", "purge", "nmr")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestArchiveList(t *testing.T) {
	runID := uuid.New()
	fake := &fakeArchiver{keys: []string{
		"runs/" + runID.String() + "/chemlogqc_qm_mulliken.tsv",
		"runs/" + runID.String() + "/report.json",
	}}
	orig := newArchiver
	newArchiver = func(context.Context, *config.Config, logging.Logger) (archiver, error) { return fake, nil }
	t.Cleanup(func() { newArchiver = orig })

	out, err := executeRoot(t, "--config", emptyConfig(t), "archive", "list", runID.String())
	require.NoError(t, err)
	assert.Equal(t, runID, fake.runID)
	assert.Contains(t, out, "OBJECT")
	assert.Contains(t, out, "/report.json")
	assert.Contains(t, out, "OK: 2 objects archived for run "+runID.String())
}

func TestArchiveList_BadRunID(t *testing.T) {
	_, err := executeRoot(t, "--config", emptyConfig(t), "archive", "list", "not-a-uuid")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

//Personal.AI order the ending
