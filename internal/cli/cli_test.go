package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/network"
	"github.com/matzehuels/prodnet/pkg/pipeline"
	"github.com/matzehuels/prodnet/pkg/schema"
)

const toySchemaTOML = `
name = "toy"
vintage = "1"
missing_sentinels = ["---", ""]

[layout]
header_row = 0

[aux]
total_intermediate_row = "T005"
total_intermediate_col = "T001"
final_consumption_col = "F010"

[[industries]]
code = "A"
name = "Alpha"

[[industries]]
code = "B"
name = "Beta"

[[industries]]
code = "C"
name = "Gamma"
`

const toyCSV = `Code,A,B,C,T001,F010
A,0,50,30,60,40
B,10,0,20,70,30
C,0,0,---,0,0
T005,60,70,0,,
`

// toyFiles writes the toy schema and table into a temp dir and points the
// cache at it.
func toyFiles(t *testing.T) (dir, schemaPath, tablePath string) {
	t.Helper()
	dir = t.TempDir()
	schemaPath = filepath.Join(dir, "toy.toml")
	tablePath = filepath.Join(dir, "use.csv")
	if err := os.WriteFile(schemaPath, []byte(toySchemaTOML), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tablePath, []byte(toyCSV), 0644); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"PRODNET_THRESHOLD", "PRODNET_REDIS_ADDR", "PRODNET_SCHEMA"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Setenv("PRODNET_CACHE_DIR", filepath.Join(dir, "cache"))
	return dir, schemaPath, tablePath
}

// run executes the root command and returns what it wrote to its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs, out bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(&logs)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestBuildCommand(t *testing.T) {
	dir, schemaPath, tablePath := toyFiles(t)
	output := filepath.Join(dir, "network.json")

	if _, err := run(t, "build", tablePath, "--schema", schemaPath, "-o", output, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}

	net, meta, err := graph.ReadNetworkFile(output)
	if err != nil {
		t.Fatalf("read network: %v", err)
	}
	if net.Len() != 3 {
		t.Fatalf("industries = %d, want 3", net.Len())
	}
	if meta == nil || meta.Schema != "toy@1" || meta.TopK != network.DefaultTopK {
		t.Errorf("meta = %+v", meta)
	}
	if got := net.Suppliers[0].Edges; len(got) != 1 || got[0].Code != "B" || got[0].Share != 0.167 {
		t.Errorf("suppliers of A = %+v, want [B 0.167]", got)
	}
	if got := net.Nodes[0].Upstreamness; got != 1.58 {
		t.Errorf("upstreamness of A = %v, want 1.58", got)
	}
}

func TestBuildCommandStdout(t *testing.T) {
	_, schemaPath, tablePath := toyFiles(t)

	out, err := run(t, "build", tablePath, "--schema", schemaPath, "-o", "-", "--threshold", "0.5")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	net, meta, err := graph.ReadNetwork(strings.NewReader(out))
	if err != nil {
		t.Fatalf("read network: %v\n%s", err, out)
	}
	if meta.Threshold != 0.5 {
		t.Errorf("threshold = %v, want 0.5", meta.Threshold)
	}
	sup, cust := net.EdgeCounts()
	if sup != 1 || cust != 1 {
		t.Errorf("edge counts = %d/%d, want 1/1", sup, cust)
	}
}

func TestBuildCommandErrors(t *testing.T) {
	dir, schemaPath, tablePath := toyFiles(t)

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing table", []string{"build", filepath.Join(dir, "nope.csv"), "--schema", schemaPath}, errors.ErrCodeFileNotFound},
		{"bad extension", []string{"build", filepath.Join(dir, "use.txt"), "--schema", schemaPath}, errors.ErrCodeInvalidFormat},
		{"bad threshold", []string{"build", tablePath, "--schema", schemaPath, "--threshold", "2"}, errors.ErrCodeInvalidThreshold},
		{"bad schema", []string{"build", tablePath, "--schema", filepath.Join(dir, "missing.toml")}, errors.ErrCodeFileNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestSweepCommand(t *testing.T) {
	_, schemaPath, tablePath := toyFiles(t)

	out, err := run(t, "sweep", tablePath, "--schema", schemaPath, "--thresholds", "0,0.2,0.8", "--json", "--no-cache")
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	var points []pipeline.SweepPoint
	if err := json.Unmarshal([]byte(out), &points); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	want := []pipeline.SweepPoint{
		{Threshold: 0, SupplierEdges: 2, CustomerEdges: 2},
		{Threshold: 0.2, SupplierEdges: 1, CustomerEdges: 1},
		{Threshold: 0.8, SupplierEdges: 0, CustomerEdges: 0},
	}
	if len(points) != len(want) {
		t.Fatalf("points = %+v", points)
	}
	for i := range want {
		if points[i] != want[i] {
			t.Errorf("point %d = %+v, want %+v", i, points[i], want[i])
		}
	}
}

func TestRenderCommand(t *testing.T) {
	dir, schemaPath, tablePath := toyFiles(t)
	netPath := filepath.Join(dir, "network.json")
	if _, err := run(t, "build", tablePath, "--schema", schemaPath, "-o", netPath); err != nil {
		t.Fatalf("build: %v", err)
	}

	out, err := run(t, "render", netPath, "-f", "dot", "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "digraph") {
		t.Errorf("render output is not DOT:\n%s", out)
	}
	if !strings.Contains(out, `"A" -> "B"`) {
		t.Errorf("missing edge A -> B:\n%s", out)
	}

	if _, err := run(t, "render", netPath, "-f", "dot", "--focus", "A"); err != nil {
		t.Fatalf("render focus: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "network-A.dot")); err != nil {
		t.Errorf("focus render not written: %v", err)
	}

	_, err = run(t, "render", netPath, "-f", "png")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("png: error = %v, want INVALID_FORMAT", err)
	}
	_, err = run(t, "render", netPath, "-f", "json", "--focus", "A")
	if !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("json focus: error = %v, want UNSUPPORTED", err)
	}
}

func TestFocusCommand(t *testing.T) {
	dir, schemaPath, tablePath := toyFiles(t)
	netPath := filepath.Join(dir, "network.json")
	if _, err := run(t, "build", tablePath, "--schema", schemaPath, "-o", netPath, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}

	if _, err := run(t, "focus", netPath, "A"); err != nil {
		t.Errorf("focus A: %v", err)
	}
	if _, err := run(t, "focus", netPath, "C"); err != nil {
		t.Errorf("focus C: %v", err)
	}
	if _, err := run(t, "focus", netPath, "Z"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("focus Z: error = %v, want NOT_FOUND", err)
	}
}

func TestSchemaCommand(t *testing.T) {
	_, schemaPath, _ := toyFiles(t)

	out, err := run(t, "schema", "--dump")
	if err != nil {
		t.Fatalf("schema --dump: %v", err)
	}
	s, err := schema.Parse([]byte(out))
	if err != nil {
		t.Fatalf("dumped schema does not parse: %v", err)
	}
	if s.Len() != schema.Default().Len() {
		t.Errorf("dumped %d industries, want %d", s.Len(), schema.Default().Len())
	}

	if _, err := run(t, "schema", "--schema", schemaPath); err != nil {
		t.Errorf("schema --schema: %v", err)
	}
}

func TestCachePathCommand(t *testing.T) {
	dir, _, _ := toyFiles(t)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "cache") {
		t.Errorf("cache path = %q", got)
	}
}

func TestInvalidEnvironment(t *testing.T) {
	toyFiles(t)
	t.Setenv("PRODNET_THRESHOLD", "-1")

	_, err := run(t, "schema")
	if !errors.Is(err, errors.ErrCodeInvalidThreshold) {
		t.Errorf("error = %v, want INVALID_THRESHOLD", err)
	}
}

func TestUpstreamRows(t *testing.T) {
	result := &pipeline.Result{Network: &network.Network{Nodes: []network.Industry{
		{Code: "A", Name: "Alpha", Upstreamness: 1.5},
		{Code: "B", Name: "Beta", Upstreamness: 2.25},
		{Code: "C", Name: "Gamma", Upstreamness: 1.5},
	}}}

	rows := upstreamRows(result, 2)
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "B" || rows[0][2] != "2.25" {
		t.Errorf("first row = %v, want B 2.25", rows[0])
	}
	if rows[1][0] != "A" {
		t.Errorf("tie should keep canonical order, got %v", rows[1])
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Code", "Share"}, [][]string{{"331", "12.5%"}}, 1)
	for _, want := range []string{"Code", "Share", "331", "12.5%"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestIndustryCompletions(t *testing.T) {
	net := &network.Network{Nodes: []network.Industry{
		{Code: "331", Name: "Primary metals"},
		{Code: "332", Name: "Fabricated metal products"},
		{Code: "511", Name: "Publishing industries"},
	}}

	got := industryCompletions(net, "33")
	want := []string{"331\tPrimary metals", "332\tFabricated metal products"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("industryCompletions(33) = %q, want %q", got, want)
	}
	if got := industryCompletions(net, "9"); len(got) != 0 {
		t.Errorf("industryCompletions(9) = %q, want none", got)
	}
}
