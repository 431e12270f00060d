package dataset

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

func charges(kv ...interface{}) *Ordered[float64] {
	o := NewOrdered[float64]()
	for i := 0; i+1 < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1].(float64))
	}
	return o
}

func TestAssembler_CommitOrderPreserved(t *testing.T) {
	a := NewAssembler("qm", Mulliken)
	require.NoError(t, a.Commit(Mulliken, "S1", charges("1", 0.1)))
	require.NoError(t, a.Commit(Mulliken, "S2", charges("1", 0.2)))

	ds := a.Dataset(Mulliken)
	assert.Equal(t, []string{"S1", "S2"}, ds.SampleIDs())

	data, err := json.Marshal(ds)
	require.NoError(t, err)
	assert.Equal(t, `{"S1":{"1":0.1},"S2":{"1":0.2}}`, string(data))
}

func TestAssembler_OrderNotAlphabetical(t *testing.T) {
	a := NewAssembler("qm", Mulliken)
	for _, id := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, a.Commit(Mulliken, id, charges("1", 0.0)))
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, a.Dataset(Mulliken).SampleIDs())
	assert.Equal(t, 3, a.SampleCount())
}

func TestAssembler_DuplicateRejected(t *testing.T) {
	a := NewAssembler("qm", Mulliken)
	require.NoError(t, a.Commit(Mulliken, "S1", charges("1", 0.1)))

	err := a.Commit(Mulliken, "S1", charges("1", 0.9))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateSample))

	r, _ := a.Dataset(Mulliken).Get("S1")
	v, _ := r.Cell("1")
	assert.Equal(t, "0.1", v)
}

func TestAssembler_EmptyRecordRejected(t *testing.T) {
	a := NewAssembler("qm", Mulliken)
	err := a.Commit(Mulliken, "S1", NewOrdered[float64]())
	require.Error(t, err)
	assert.Equal(t, 0, a.Dataset(Mulliken).Len())
}

func TestAssembler_UnknownDataset(t *testing.T) {
	a := NewAssembler("qm", Mulliken)
	err := a.Commit(Five, "S1", charges("1", 0.1))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestAssembler_CommitAllIsAtomic(t *testing.T) {
	a := NewAssembler("qm", Mulliken, Bonds)
	require.NoError(t, a.Commit(Bonds, "S1", charges("R1", 1.0)))

	err := a.CommitAll([]Entry{
		{Dataset: Mulliken, SampleID: "S1", Record: charges("1", 0.1)},
		{Dataset: Bonds, SampleID: "S1", Record: charges("R1", 1.1)},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDuplicateSample))
	assert.Equal(t, 0, a.Dataset(Mulliken).Len())
}

func TestAssembler_CommitAllRejectsDuplicateWithinBatch(t *testing.T) {
	a := NewAssembler("tessellate", Five)
	err := a.CommitAll([]Entry{
		{Dataset: Five, SampleID: "S_A", Record: charges("x", 1.0)},
		{Dataset: Five, SampleID: "S_A", Record: charges("y", 1.0)},
	})
	require.Error(t, err)
	assert.Equal(t, 0, a.Dataset(Five).Len())
}

func TestAssembler_DatasetsSkipsEmpty(t *testing.T) {
	a := NewAssembler("qm", Mulliken, Bonds, Angles, Mulliken)
	assert.Equal(t, []Name{Mulliken, Bonds, Angles}, a.Names())
	require.NoError(t, a.Commit(Angles, "S1", charges("A1", 109.5)))

	got := a.Datasets()
	require.Len(t, got, 1)
	assert.Equal(t, Angles, got[0].Name())
}

func TestDataset_FieldsUnionFirstSeen(t *testing.T) {
	ds := New(All)
	require.NoError(t, ds.Insert("S1", charges("3E", 1.0, "OE", 2.0)))
	require.NoError(t, ds.Insert("S2", charges("E4", 1.0, "3E", 5.0)))
	assert.Equal(t, []string{"3E", "OE", "E4"}, ds.Fields())
}

func TestDataset_EmptySampleID(t *testing.T) {
	ds := New(All)
	assert.Error(t, ds.Insert("", charges("3E", 1.0)))
}

func TestAssembler_NonFiniteRecordRejected(t *testing.T) {
	a := NewAssembler("qm", Mulliken, Bonds)
	err := a.CommitAll([]Entry{
		{Dataset: Bonds, SampleID: "S1", Record: charges("R1", 1.09)},
		{Dataset: Mulliken, SampleID: "S1", Record: charges("1", 0.1, "2", math.Inf(-1))},
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord))
	assert.True(t, errors.IsInputError(err))
	assert.Equal(t, 0, a.Dataset(Bonds).Len())
	assert.Equal(t, 0, a.SampleCount())

	require.NoError(t, a.Commit(Mulliken, "S2", charges("1", 0.1)))
	_, err = json.Marshal(a.Dataset(Mulliken))
	assert.NoError(t, err)
}

func TestOrdered_Finite(t *testing.T) {
	assert.True(t, charges("1", 0.5).Finite())
	assert.False(t, charges("1", math.NaN()).Finite())
	assert.True(t, NewOrdered[string]().Finite())
}

//Personal.AI order the ending
