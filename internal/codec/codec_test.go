package codec

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atelier/internal/domain"
	"atelier/internal/layout"
)

func sampleFragment() *domain.Fragment {
	f := domain.NewFragment()
	f.Space = domain.NewSpace("s1", "Research")
	gx := 900.0
	a := domain.NewBlock("a", "s1", 100, 200)
	a.Title = "Alpha"
	a.XGlobal = &gx
	a.Contents = []domain.Content{
		{ID: "c1", BlockID: "a", Type: domain.ContentText, Body: "hello", Order: 0},
		{ID: "c2", BlockID: "a", Type: domain.ContentURL, Body: "https://example.org", Order: 1},
	}
	f.AddBlock(*a)
	f.AddBlock(*domain.NewBlock("b", "s1", 300, 200))
	f.AddLink(*domain.NewLink("l1", "a", "b"))
	return f
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"", "json"},
		{"json", "json"},
		{"JSON", "json"},
		{"yaml", "yaml"},
		{"yml", "yaml"},
	}
	for _, tt := range tests {
		c, err := ForFormat(tt.format)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.want, c.Format())
	}

	_, err := ForFormat("ansible")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "yaml", FormatFromPath("graph.YAML"))
	assert.Equal(t, "yaml", FormatFromPath("dir/graph.yml"))
	assert.Equal(t, "json", FormatFromPath("graph.json"))
	assert.Equal(t, "json", FormatFromPath("graph"))
}

func TestFragmentRoundTrip(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			c, err := ForFormat(format)
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, c.Export(sampleFragment(), &buf))

			got, err := c.Parse(&buf)
			require.NoError(t, err)

			require.NotNil(t, got.Space)
			assert.Equal(t, "Research", got.Space.Name)
			require.Len(t, got.Blocks, 2)
			assert.Equal(t, "Alpha", got.Blocks[0].Title)
			assert.Equal(t, 100.0, got.Blocks[0].X)
			require.NotNil(t, got.Blocks[0].XGlobal)
			assert.Equal(t, 900.0, *got.Blocks[0].XGlobal)
			assert.Nil(t, got.Blocks[0].YGlobal)
			require.Len(t, got.Blocks[0].Contents, 2)
			assert.Equal(t, domain.ContentURL, got.Blocks[0].Contents[1].Type)
			assert.Equal(t, 1, got.Blocks[0].Contents[1].Order)
			require.Len(t, got.Links, 1)
			assert.Equal(t, "a", got.Links[0].SourceID)
			assert.Equal(t, "b", got.Links[0].TargetID)
		})
	}
}

func TestYAMLParseHandWritten(t *testing.T) {
	doc := `
blocks:
  - id: x
    x: 10
    y: 20
    title: Hand made
    contents:
      - type: note
        body: first
      - type: quote
        body: second
links:
  - source: x
    target: y
    weight: 2.5
`
	f, err := NewYAMLCodec().Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Nil(t, f.Space)
	require.Len(t, f.Blocks, 1)
	assert.Equal(t, "x", f.Blocks[0].Contents[1].BlockID)
	assert.Equal(t, 1, f.Blocks[0].Contents[1].Order)
	require.Len(t, f.Links, 1)
	assert.Equal(t, 2.5, f.Links[0].Weight)
	assert.Empty(t, f.Links[0].ID)
}

func TestYAMLParseEmpty(t *testing.T) {
	f, err := NewYAMLCodec().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Blocks)
}

func TestJSONParseInvalid(t *testing.T) {
	_, err := NewJSONCodec().Parse(strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestSnapshotFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.yaml")

	snap := `
nodes:
  - id: a
    label: Alpha
    x: 0
    y: 0
  - id: b
    x: 10
    y: 0
    width: 100
    height: 60
edges:
  - source_id: a
    target_id: b
`
	require.NoError(t, writeFile(input, snap))

	got, err := ReadSnapshotFile(input)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "Alpha", got.Nodes[0].Label)
	assert.Equal(t, 100.0, got.Nodes[1].Width)
	require.Len(t, got.Edges, 1)

	report := layout.Arrange(*got, layout.LocalProfile(), layout.WithSeed(1))
	for _, name := range []string{"out.json", "out.yaml"} {
		out := filepath.Join(dir, name)
		require.NoError(t, WriteReportFile(out, report))

		data, err := readFile(out)
		require.NoError(t, err)
		assert.Contains(t, data, "positions")
		assert.Contains(t, data, "node_count")
	}
}

func TestReadSnapshotUnknownFormat(t *testing.T) {
	_, err := ReadSnapshot(strings.NewReader("{}"), "toml")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
