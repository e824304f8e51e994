package glims

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/bruceraup/glims-aster-gains/pkg/aster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFile = "testdata/stars.csv"

func readTestFile(t *testing.T) []Record {
	t.Helper()
	f, err := os.Open(testFile)
	require.NoError(t, err)
	defer f.Close()

	recs, err := NewReader(f).ReadAll()
	require.NoError(t, err)
	return recs
}

func TestReader(t *testing.T) {
	assert := assert.New(t)
	recs := readTestFile(t)
	require.Len(t, recs, 3)

	assert.Len(recs[0].Fields, 53)
	assert.Equal(1, recs[0].Line)
	assert.Equal("Lifetime STARs", recs[0].Fields[38])

	assert.Len(recs[1].Fields, 53)
	assert.Equal(2, recs[1].Line)
	assert.Equal("Glacier | north", recs[1].Fields[1])
	assert.Equal([]string{"3", "3", "3"}, recs[1].Fields[17:20])
	assert.Equal("", recs[1].Fields[52])

	assert.Len(recs[2].Fields, 52)
	assert.Equal("Malaspina ^west^", recs[2].Fields[1])
	assert.Equal(`-139 47'49.19"  61 17'07.08"`, recs[2].Fields[49])
}

func TestReader_Quoting(t *testing.T) {
	tests := []struct {
		in   string
		want [][]string
	}{
		{"a|b|c\n", [][]string{{"a", "b", "c"}}},
		{"a|b|c", [][]string{{"a", "b", "c"}}},
		{"a||\r\n|x\r\n", [][]string{{"a", "", ""}, {"", "x"}}},
		{"^a|b^|c\n", [][]string{{"a|b", "c"}}},
		{"^a^^b^|c\n", [][]string{{"a^b", "c"}}},
		{"^two\nlines^|x\n", [][]string{{"two\nlines", "x"}}},
		{"a^b|c\n", [][]string{{"a^b", "c"}}},
		{"^a^b|c\n", [][]string{{"ab", "c"}}},
		{"\na\n", [][]string{{}, {"a"}}},
		{"^^\n", [][]string{{""}}},
		{`"quoted"|x` + "\n", [][]string{{`"quoted"`, "x"}}},
	}

	for _, tt := range tests {
		recs, err := NewReader(strings.NewReader(tt.in)).ReadAll()
		require.NoError(t, err, "input %q", tt.in)
		got := make([][]string, 0, len(recs))
		for _, r := range recs {
			got = append(got, r.Fields)
		}
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestReader_LineNumbers(t *testing.T) {
	recs, err := NewReader(strings.NewReader("a\n^b\nc^\nd\r\ne")).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 4)
	lines := []int{recs[0].Line, recs[1].Line, recs[2].Line, recs[3].Line}
	assert.Equal(t, []int{1, 3, 4, 5}, lines)
}

func TestReader_UnterminatedQuote(t *testing.T) {
	r := NewReader(strings.NewReader("a|b\n^c|d\n"))
	assert.True(t, r.Next())
	assert.False(t, r.Next(), "the partial record is not returned")
	assert.ErrorIs(t, r.Err(), aster.ErrParse)
	assert.ErrorContains(t, r.Err(), "end of file in quoted field")
}

func TestWriter_RoundTrip(t *testing.T) {
	want, err := os.ReadFile(testFile)
	require.NoError(t, err)

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, rec := range readTestFile(t) {
		require.NoError(t, w.Write(rec.Fields))
	}
	assert.Equal(t, string(want), buf.String())
}

func TestWriter(t *testing.T) {
	tests := []struct {
		fields []string
		want   string
	}{
		{[]string{"a", "b"}, "a|b\r\n"},
		{[]string{"a|b", "c"}, "^a|b^|c\r\n"},
		{[]string{"a^b"}, "^a^^b^\r\n"},
		{[]string{"two\nlines", ""}, "^two\nlines^|\r\n"},
		{[]string{""}, "^^\r\n"},
		{[]string{}, "\r\n"},
		{[]string{`61 17'07.08"`}, `61 17'07.08"` + "\r\n"},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, NewWriter(&buf).Write(tt.fields))
		assert.Equal(t, tt.want, buf.String(), "fields %q", tt.fields)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.LineTerminator = "\n"
	require.NoError(t, w.Write([]string{"x", "y"}))
	assert.Equal(t, "x|y\n", buf.String())
}

func TestSchema_Validate(t *testing.T) {
	assert.NoError(t, DefaultSchema().Validate())

	s := DefaultSchema()
	s.WindowStart = 18
	assert.Error(t, s.Validate(), "start inside gains")

	s = DefaultSchema()
	s.WindowEnd = 50
	assert.Error(t, s.Validate(), "end inside points")

	s = DefaultSchema()
	s.Points = 18
	assert.Error(t, s.Validate(), "gains overlap points")

	s = DefaultSchema()
	s.WindowEnd = s.WindowStart
	assert.Error(t, s.Validate())
}

func TestSchema_IsSentinel(t *testing.T) {
	s := DefaultSchema()
	recs := readTestFile(t)
	assert.True(t, s.IsSentinel(recs[0]))
	assert.False(t, s.IsSentinel(recs[1]))
	assert.False(t, s.IsSentinel(Record{Fields: []string{"Lifetime"}}))
}

func TestSchema_Observation(t *testing.T) {
	assert := assert.New(t)
	s := DefaultSchema()
	rec := readTestFile(t)[1]

	obs, err := s.Observation(rec)
	require.NoError(t, err)
	assert.Equal("09/09/2023 00:00:00", obs.WindowStart)
	assert.Equal("11/09/2023 00:00:00", obs.WindowEnd)
	assert.Equal([3]string{"3", "3", "3"}, obs.Gains)
	assert.Len(obs.Points, 4)

	// unchanged
	assert.Equal(rec.Fields, obs.Fields())

	obs.SetGains([3]aster.GainCode{aster.GainLow, aster.GainNormal, aster.GainHigh})
	out := obs.Fields()
	assert.Len(out, len(rec.Fields))
	assert.Equal([]string{"1", "3", "4"}, out[17:20])
	assert.Equal(rec.Fields[:17], out[:17])
	assert.Equal(rec.Fields[20:], out[20:])

	// the input record is not modified
	assert.Equal([]string{"3", "3", "3"}, rec.Fields[17:20])
}

func TestSchema_ObservationShortRecord(t *testing.T) {
	_, err := DefaultSchema().Observation(Record{Fields: make([]string, 39), Line: 7})
	assert.ErrorIs(t, err, aster.ErrStructure)

	obs, err := DefaultSchema().Observation(Record{Fields: make([]string, 40)})
	require.NoError(t, err)
	assert.Empty(t, obs.Points)
}

func TestSchema_GainFields(t *testing.T) {
	s := DefaultSchema()
	g, err := s.GainFields(readTestFile(t)[2])
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "4", "4"}, g)

	_, err = s.GainFields(Record{Fields: make([]string, 19)})
	assert.ErrorIs(t, err, aster.ErrStructure)
}

func TestCountLines(t *testing.T) {
	f, err := os.Open(testFile)
	require.NoError(t, err)
	defer f.Close()
	n, err := CountLines(f)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = CountLines(strings.NewReader("a\nb"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
