package textblock

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/ChemLog-QC/internal/testutil"
	apperrors "github.com/turtacn/ChemLog-QC/pkg/errors"
)

func TestLastBlock_ReturnsLastOccurrence(t *testing.T) {
	for n := 2; n <= 5; n++ {
		var sb strings.Builder
		for i := 1; i <= n; i++ {
			sb.WriteString("noise\nBEGIN\nvalue ")
			sb.WriteString(strings.Repeat("x", i))
			sb.WriteString("\nEND\n")
		}
		got, ok := LastBlock(sb.String(), "BEGIN", "END")
		require.True(t, ok)
		assert.Equal(t, "BEGIN\nvalue "+strings.Repeat("x", n)+"\nEND", got)
	}
}

func TestLastBlock_Absent(t *testing.T) {
	got, ok := LastBlock("nothing to see\n", "BEGIN", "END")
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestLastBlock_UnterminatedTailIgnored(t *testing.T) {
	text := "BEGIN one END\nBEGIN two\nno end here\n"
	got, ok := LastBlock(text, "BEGIN", "END")
	require.True(t, ok)
	assert.Equal(t, "BEGIN one END", got)
}

func TestLastBlock_NonGreedy(t *testing.T) {
	got, ok := LastBlock("BEGIN a END b END", "BEGIN", "END")
	require.True(t, ok)
	assert.Equal(t, "BEGIN a END", got)
}

func TestLastBlock_NestedStartIsPartOfSpan(t *testing.T) {
	got, ok := LastBlock("BEGIN a\nBEGIN b\nEND", "BEGIN", "END")
	require.True(t, ok)
	assert.Equal(t, "BEGIN a\nBEGIN b\nEND", got)
}

func TestLastBlock_SeveralOnOneLine(t *testing.T) {
	got, ok := LastBlock("<1><2><3>", "<", ">")
	require.True(t, ok)
	assert.Equal(t, "<3>", got)
}

func TestLastBlock_InvalidMarkers(t *testing.T) {
	_, ok := LastBlock("a\nb", "a\n", "b")
	assert.False(t, ok)
	_, ok = LastBlock("ab", "", "b")
	assert.False(t, ok)
}

func TestScanLastBlock_MatchesLastBlock(t *testing.T) {
	text := testutil.GaussianOptimization
	want, wantOK := LastBlock(text, MullikenLayout.Start, MullikenLayout.End)
	got, ok, err := ScanLastBlock(strings.NewReader(text), MullikenLayout.Start, MullikenLayout.End)
	require.NoError(t, err)
	assert.Equal(t, wantOK, ok)
	assert.Equal(t, want, got)
	assert.Contains(t, got, "0.140334")
	assert.NotContains(t, got, "0.500000")
}

func TestScanLastBlock_NoTrailingNewline(t *testing.T) {
	got, ok, err := ScanLastBlock(strings.NewReader("x\nBEGIN\n1\nEND"), "BEGIN", "END")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "BEGIN\n1\nEND", got)
}

func TestScanLastBlocks_SeveralPairsOnePass(t *testing.T) {
	ms, err := ScanLastBlocks(strings.NewReader(testutil.GaussianOptimization),
		MullikenLayout.Markers(), OptimizedParametersLayout.Markers(), Markers{Start: "Missing", End: "Section"})
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.True(t, ms[0].Found)
	assert.True(t, ms[1].Found)
	assert.False(t, ms[2].Found)
	assert.True(t, strings.HasPrefix(ms[1].Text, " Optimized Parameters"))
	assert.True(t, strings.HasSuffix(ms[1].Text, "GradGrad"))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestScanLastBlocks_ReadError(t *testing.T) {
	_, err := ScanLastBlocks(failingReader{}, MullikenLayout.Markers())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLogReadFailed))
}

func TestScanLastBlocks_RejectsMultilineMarker(t *testing.T) {
	_, err := ScanLastBlocks(strings.NewReader(""), Markers{Start: "a\nb", End: "c"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidParam))
}

func TestTokenize_Mulliken(t *testing.T) {
	block, ok := LastBlock(testutil.GaussianOptimization, MullikenLayout.Start, MullikenLayout.End)
	require.True(t, ok)

	tokens, skipped := Tokenize(block, MullikenLayout)
	assert.Empty(t, skipped)
	require.Len(t, tokens, 4)
	assert.Equal(t, Token{Line: 3, Label: "1", Value: "-0.421000"}, tokens[0])
	assert.Equal(t, "4", tokens[3].Label)
	assert.Equal(t, "0.140334", tokens[3].Value)
}

func TestTokenize_OptimizedParameters(t *testing.T) {
	block, ok := LastBlock(testutil.GaussianOptimization, OptimizedParametersLayout.Start, OptimizedParametersLayout.End)
	require.True(t, ok)

	tokens, skipped := Tokenize(block, OptimizedParametersLayout)
	assert.Empty(t, skipped)
	var labels, values []string
	for _, tk := range tokens {
		labels = append(labels, tk.Label)
		values = append(values, tk.Value)
	}
	assert.Equal(t, []string{"R1", "R2", "A1", "D1", "L1"}, labels)
	assert.Equal(t, []string{"1.0935", "1.0936", "109.4712", "-120.0", "180.0"}, values)
}

func TestTokenize_ShortLinesSkipped(t *testing.T) {
	block := "head\nsub\n 1 C 0.5\n 2 H\n\n 3 H 0.25\ntail"
	tokens, skipped := Tokenize(block, MullikenLayout)
	require.Len(t, tokens, 2)
	assert.Equal(t, "3", tokens[1].Label)
	require.Len(t, skipped, 2)
	assert.Equal(t, Skipped{Line: 4, Text: " 2 H", Fields: 2}, skipped[0])
	assert.Equal(t, 5, skipped[1].Line)
}

func TestTokenize_BlockShorterThanBoilerplate(t *testing.T) {
	tokens, skipped := Tokenize("a\nb", OptimizedParametersLayout)
	assert.Nil(t, tokens)
	assert.Nil(t, skipped)
}

func TestTokenize_CRLF(t *testing.T) {
	block := "h1\r\nh2\r\n 1 C -0.1\r\ntail"
	tokens, _ := Tokenize(block, MullikenLayout)
	require.Len(t, tokens, 1)
	assert.Equal(t, "-0.1", tokens[0].Value)
}

//Personal.AI order the ending
