package gaussian

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/internal/domain/dataset"
	"github.com/turtacn/ChemLog-QC/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemLog-QC/internal/testutil"
	"github.com/turtacn/ChemLog-QC/pkg/errors"
)

func parse(t *testing.T, text string) (*Result, *testutil.MockLogger) {
	t.Helper()
	log := testutil.NewMockLogger()
	res, err := NewParser().Parse(strings.NewReader(text), log)
	require.NoError(t, err)
	return res.(*Result), log
}

func TestParser_Optimization(t *testing.T) {
	res, log := parse(t, testutil.GaussianOptimization)

	require.NotNil(t, res.Charges)
	assert.Equal(t, []string{"1", "2", "3", "4"}, res.Charges.Keys())
	c1, _ := res.Charges.Get("1")
	assert.Equal(t, -0.421, c1)
	c4, _ := res.Charges.Get("4")
	assert.Equal(t, 0.140334, c4)

	assert.Equal(t, []string{"R1", "R2"}, res.Bonds.Keys())
	assert.Equal(t, []string{"A1"}, res.Angles.Keys())
	assert.Equal(t, []string{"D1"}, res.Torsions.Keys())
	d1, _ := res.Torsions.Get("D1")
	assert.Equal(t, -120.0, d1)

	// L1 carries no category marker.
	assert.Equal(t, 1, res.SkippedRecords())
	assert.True(t, log.HasMessage("warn", "unknown parameter category"))
}

func TestParser_Entries(t *testing.T) {
	res, _ := parse(t, testutil.GaussianOptimization)
	var names []dataset.Name
	for _, e := range res.Entries("methane") {
		assert.Equal(t, "methane", e.SampleID)
		names = append(names, e.Dataset)
	}
	assert.Equal(t, []dataset.Name{dataset.Mulliken, dataset.Bonds, dataset.Angles, dataset.Torsions}, names)
}

func TestParser_AbsentSectionNotPopulated(t *testing.T) {
	res, log := parse(t, testutil.GaussianSinglePoint)
	assert.Equal(t, 3, res.Charges.Len())
	assert.Nil(t, res.Bonds)
	assert.Nil(t, res.Angles)
	assert.Nil(t, res.Torsions)

	entries := res.Entries("water")
	require.Len(t, entries, 1)
	assert.Equal(t, dataset.Mulliken, entries[0].Dataset)
	assert.True(t, log.HasMessage("debug", "section absent"))
}

func TestParser_NoSections(t *testing.T) {
	res, _ := parse(t, testutil.GaussianNoSections)
	assert.Empty(t, res.Entries("x"))
	assert.Equal(t, 0, res.SkippedRecords())
}

func TestParser_EmptyCategoryOmitted(t *testing.T) {
	var kept []string
	for _, line := range strings.Split(testutil.GaussianOptimization, "\n") {
		if !strings.Contains(line, "D(4,1,2,3)") {
			kept = append(kept, line)
		}
	}
	res, _ := parse(t, strings.Join(kept, "\n"))
	assert.Equal(t, 0, res.Torsions.Len())
	for _, e := range res.Entries("x") {
		assert.NotEqual(t, dataset.Torsions, e.Dataset)
	}
}

func TestParser_BadValuesSkipped(t *testing.T) {
	text := ` Mulliken atomic charges:
              1
     1  C   -0.4x
     2  H    0.1D+00
     3  H
 Sum of Mulliken atomic charges =   0.00000
`
	res, log := parse(t, text)
	assert.Equal(t, []string{"2"}, res.Charges.Keys())
	v, _ := res.Charges.Get("2")
	assert.Equal(t, 0.1, v)
	assert.Equal(t, 2, res.SkippedRecords())
	assert.True(t, log.HasMessage("warn", "unparseable charge"))
	assert.True(t, log.HasMessage("warn", "record line has too few fields"))
}

func TestParser_ResultRoundTrip(t *testing.T) {
	res, _ := parse(t, testutil.GaussianOptimization)
	data, err := json.Marshal(res)
	require.NoError(t, err)

	p := NewParser()
	back := p.NewResult()
	require.NoError(t, json.Unmarshal(data, back))
	assert.Equal(t, res.Entries("s"), back.Entries("s"))
	assert.Equal(t, 1, back.SkippedRecords())
}

func TestParser_Metadata(t *testing.T) {
	p := NewParser()
	assert.Equal(t, "qm", p.Name())
	assert.Len(t, p.Datasets(), 4)
	_, err := p.Parse(strings.NewReader(""), logging.NewNopLogger())
	assert.NoError(t, err)
}

func TestParseValue(t *testing.T) {
	v, err := parseValue("1.5D-03")
	require.NoError(t, err)
	assert.InDelta(t, 0.0015, v, 1e-12)
	_, err = parseValue("abc")
	assert.Error(t, err)
	_, err = parseValue("D")
	assert.Error(t, err)
}

func TestParser_NonFiniteValuesSkipped(t *testing.T) {
	text := ` Mulliken atomic charges:
              1
     1  C   NaN
     2  H    0.25
     3  H   -Inf
     4  H   Infinity
 Sum of Mulliken atomic charges =   0.00000
                           !   Optimized Parameters   !
                           ! (Angstroms and Degrees)  !
 --------------------------                            --------------------------
 ! Name  Definition              Value          Derivative Info.                !
 --------------------------------------------------------------------------------
 ! R1    R(1,2)                  nan            -DE/DX =    0.0                 !
 ! R2    R(1,3)                  1.09           -DE/DX =    0.0                 !
 --------------------------------------------------------------------------------
 GradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGradGrad
`
	res, log := parse(t, text)
	assert.Equal(t, []string{"2"}, res.Charges.Keys())
	assert.Equal(t, []string{"R2"}, res.Bonds.Keys())
	assert.Equal(t, 4, res.SkippedRecords())
	assert.True(t, log.HasMessage("warn", "unparseable charge"))
	assert.True(t, log.HasMessage("warn", "unparseable parameter value"))

	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "NaN")
}

func TestParseValue_NonFinite(t *testing.T) {
	for _, s := range []string{"NaN", "nan", "Inf", "+Inf", "-Inf", "Infinity", "1e999", "1D999"} {
		_, err := parseValue(s)
		require.Error(t, err, s)
		assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedRecord), s)
	}
}

//Personal.AI order the ending
