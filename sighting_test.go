package skywatch_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/skywatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinates_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("resolved pair encodes as array", func(t *testing.T) {
		t.Parallel()

		got, err := json.Marshal(skywatch.Coordinates{Lat: "53.5333", Lon: "-2.4500"})

		require.NoError(t, err)
		assert.JSONEq(t, `["53.5333","-2.4500"]`, string(got))
	})

	t.Run("zero value encodes as sentinel", func(t *testing.T) {
		t.Parallel()

		got, err := json.Marshal(skywatch.Coordinates{})

		require.NoError(t, err)
		assert.JSONEq(t, `["NA","NA"]`, string(got))
	})
}

func TestCoordinates_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("round trips a resolved pair", func(t *testing.T) {
		t.Parallel()

		var c skywatch.Coordinates
		require.NoError(t, json.Unmarshal([]byte(`["51.5","-0.12"]`), &c))

		assert.Equal(t, "51.5", c.Lat)
		assert.Equal(t, "-0.12", c.Lon)
		assert.True(t, c.IsResolved())
	})

	t.Run("malformed input becomes the sentinel", func(t *testing.T) {
		t.Parallel()

		var c skywatch.Coordinates
		require.NoError(t, json.Unmarshal([]byte(`"not a pair"`), &c))

		assert.Equal(t, skywatch.Unresolved(), c)
		assert.False(t, c.IsResolved())
	})
}

func TestSighting_Validate(t *testing.T) {
	t.Parallel()

	valid := func() *skywatch.Sighting {
		return &skywatch.Sighting{
			Date:     "16-Feb-09",
			Time:     "19:19",
			Town:     "Leigh",
			Area:     "Manchester",
			Incident: "A dome shaped orange ball of light.",
		}
	}

	t.Run("valid record passes", func(t *testing.T) {
		t.Parallel()
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing date fails", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.Date = ""

		err := s.Validate()
		require.Error(t, err)
		assert.Equal(t, skywatch.EINVALID, skywatch.ErrorCode(err))
	})

	t.Run("missing incident fails", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.Incident = ""

		assert.Equal(t, skywatch.EINVALID, skywatch.ErrorCode(s.Validate()))
	})

	t.Run("town alone is enough", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.Area = ""

		assert.NoError(t, s.Validate())
	})

	t.Run("no usable town or area fails", func(t *testing.T) {
		t.Parallel()

		s := valid()
		s.Town = "Not Given"
		s.Area = "Nothing to report"

		assert.Equal(t, skywatch.EINVALID, skywatch.ErrorCode(s.Validate()))
	})
}

func TestUsableLocation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  bool
	}{
		{"Leigh", true},
		{"greater manchester", true},
		{"", false},
		{"   ", false},
		{"Not Given", false},
		{"not given", false},
		{"Nothing to report", false},
		{"nothing", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, skywatch.UsableLocation(tt.value))
		})
	}
}

func TestDataset_Sort(t *testing.T) {
	t.Parallel()

	ds := skywatch.Dataset{
		{Date: "2009-02-16", SourceURL: "b.pdf", Incident: "zig-zag lights"},
		{Date: "2009-01-02", SourceURL: "b.pdf", Incident: "orange glow"},
		{Date: "2009-02-16", SourceURL: "a.pdf", Incident: "silver disc"},
		{Date: "2009-02-16", SourceURL: "a.pdf", Incident: "black triangle"},
	}

	ds.Sort()

	assert.Equal(t, "orange glow", ds[0].Incident)
	assert.Equal(t, "black triangle", ds[1].Incident)
	assert.Equal(t, "silver disc", ds[2].Incident)
	assert.Equal(t, "zig-zag lights", ds[3].Incident)
}

func TestDataset_Sort_Deterministic(t *testing.T) {
	t.Parallel()

	build := func(order []int) skywatch.Dataset {
		records := []*skywatch.Sighting{
			{Date: "2009-01-02", SourceURL: "a.pdf", Incident: "orange glow"},
			{Date: "2009-02-16", SourceURL: "a.pdf", Incident: "silver disc"},
			{Date: "2009-02-16", SourceURL: "b.pdf", Incident: "zig-zag lights"},
		}
		ds := make(skywatch.Dataset, 0, len(order))
		for _, i := range order {
			ds = append(ds, records[i])
		}
		return ds
	}

	a := build([]int{0, 1, 2})
	b := build([]int{2, 0, 1})
	a.Sort()
	b.Sort()

	aJSON, err := json.Marshal(a)
	require.NoError(t, err)
	bJSON, err := json.Marshal(b)
	require.NoError(t, err)
	assert.Equal(t, string(aJSON), string(bJSON))
}

func TestDataset_Sort_LexicalDates(t *testing.T) {
	t.Parallel()

	// Source reports mix date formats, so dates order as strings.
	ds := skywatch.Dataset{
		{Date: "16/02/2009", SourceURL: "a.pdf", Incident: "silver disc"},
		{Date: "16-Feb-09", SourceURL: "a.pdf", Incident: "orange glow"},
		{Date: "02-Jan-09", SourceURL: "a.pdf", Incident: "black triangle"},
	}

	ds.Sort()

	assert.Equal(t, "02-Jan-09", ds[0].Date)
	assert.Equal(t, "16-Feb-09", ds[1].Date)
	assert.Equal(t, "16/02/2009", ds[2].Date)
}

func TestStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.True(t, skywatch.StatusDone.Terminal())
	assert.True(t, skywatch.StatusFailed.Terminal())
	assert.False(t, skywatch.StatusPending.Terminal())
	assert.False(t, skywatch.StatusGeocoding.Terminal())
}
