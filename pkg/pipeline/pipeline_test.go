package pipeline

import (
	"context"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/prodnet/pkg/cache"
	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/iotable"
	"github.com/matzehuels/prodnet/pkg/network"
	"github.com/matzehuels/prodnet/pkg/observability"
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

func toyInputs(t *testing.T) (*iotable.RawTable, *schema.Schema) {
	t.Helper()
	s, err := schema.Parse([]byte(toySchemaTOML))
	if err != nil {
		t.Fatalf("parse schema: %v", err)
	}
	raw, err := iotable.ReadCSV(strings.NewReader(toyCSV), s.Layout)
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	return raw, s
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode errors.Code
	}{
		{name: "Zero", opts: Options{}},
		{name: "Threshold", opts: Options{Threshold: 0.25, TopK: 3}},
		{name: "Negative", opts: Options{Threshold: -0.1}, wantCode: errors.ErrCodeInvalidThreshold},
		{name: "AboveOne", opts: Options{Threshold: 1.1}, wantCode: errors.ErrCodeInvalidThreshold},
		{name: "NaN", opts: Options{Threshold: math.NaN()}, wantCode: errors.ErrCodeInvalidThreshold},
		{name: "NegativeTopK", opts: Options{TopK: -1}, wantCode: errors.ErrCodeInvalidInput},
		{name: "NegativeCap", opts: Options{ConditionCap: -1}, wantCode: errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				if !errors.Is(err, tt.wantCode) {
					t.Fatalf("error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateAndSetDefaults: %v", err)
			}
			if tt.opts.TopK == 0 || tt.opts.ConditionCap == 0 || tt.opts.Logger == nil {
				t.Errorf("defaults not applied: %+v", tt.opts)
			}
		})
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.TopK != network.DefaultTopK {
		t.Errorf("TopK = %d, want %d", o.TopK, network.DefaultTopK)
	}
	if o.ConditionCap != network.DefaultConditionCap {
		t.Errorf("ConditionCap = %v, want %v", o.ConditionCap, network.DefaultConditionCap)
	}
	if p := o.Params(); p != network.DefaultParams() {
		t.Errorf("Params() = %+v, want defaults", p)
	}
}

func TestRenderOptionsValidate(t *testing.T) {
	tests := []struct {
		opts    RenderOptions
		wantErr bool
	}{
		{RenderOptions{}, false},
		{RenderOptions{Format: "dot", Direction: "suppliers"}, false},
		{RenderOptions{Format: "json"}, false},
		{RenderOptions{Format: "png"}, true},
		{RenderOptions{Direction: "sideways"}, true},
		{RenderOptions{Focus: "bad code"}, true},
	}

	for _, tt := range tests {
		err := tt.opts.ValidateAndSetDefaults()
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateAndSetDefaults(%+v) error = %v, wantErr %v", tt.opts, err, tt.wantErr)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"dot", false},
		{"json", false},
		{"png", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestExecute(t *testing.T) {
	raw, s := toyInputs(t)
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), raw, s, Options{})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Scope != "toy@1" {
		t.Errorf("Scope = %q, want toy@1", res.Scope)
	}
	if res.TableHash != HashTable(raw) || len(res.TableHash) != 64 {
		t.Errorf("TableHash = %q", res.TableHash)
	}
	if res.CacheInfo.NetworkHit {
		t.Error("NullCache run reported a cache hit")
	}
	if res.Stats.Industries != 3 || res.Stats.SupplierEdges != 2 || res.Stats.CustomerEdges != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	want := []float64{1.58, 1.16, 1}
	for i, node := range res.Network.Nodes {
		if node.Upstreamness != want[i] {
			t.Errorf("upstreamness[%s] = %v, want %v", node.Code, node.Upstreamness, want[i])
		}
	}
	if got := res.Network.Suppliers[0].Edges; len(got) != 1 || got[0] != (network.Edge{Code: "B", Share: 0.167}) {
		t.Errorf("suppliers of A = %v", got)
	}
	if got := res.Network.Customers[0].Edges; len(got) != 1 || got[0] != (network.Edge{Code: "B", Share: 0.833}) {
		t.Errorf("customers of A = %v", got)
	}

	meta := res.Meta()
	if meta.Schema != "toy@1" || meta.TopK != network.DefaultTopK || meta.TableHash != res.TableHash {
		t.Errorf("Meta() = %+v", meta)
	}
}

func TestExecuteCache(t *testing.T) {
	raw, s := toyInputs(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	first, err := r.Execute(ctx, raw, s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.NetworkHit {
		t.Error("first run should miss")
	}

	second, err := r.Execute(ctx, raw, s, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.NetworkHit {
		t.Error("second run should hit")
	}
	if first.RunID == second.RunID {
		t.Error("runs should have distinct IDs")
	}
	if second.Stats != (Stats{Industries: 3, SupplierEdges: 2, CustomerEdges: 2}) {
		t.Errorf("cached Stats = %+v", second.Stats)
	}

	third, err := r.Execute(ctx, raw, s, Options{Threshold: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.NetworkHit {
		t.Error("different threshold should miss")
	}

	refreshed, err := r.Execute(ctx, raw, s, Options{Refresh: true})
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.CacheInfo.NetworkHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestExecuteCacheSchemaEdit(t *testing.T) {
	raw, s := toyInputs(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	if _, err := r.Execute(ctx, raw, s, Options{}); err != nil {
		t.Fatal(err)
	}

	// Same name and vintage, different contents.
	renamed, _ := toyInputs(t)
	renamed.Industries[0].Name = "Renamed"
	res, err := r.Execute(ctx, raw, renamed, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.NetworkHit {
		t.Error("edited schema should miss the cache")
	}
	if got := res.Network.Nodes[0].Name; got != "Renamed" {
		t.Errorf("Nodes[0].Name = %q, want Renamed", got)
	}

	broken, _ := toyInputs(t)
	broken.Aux.FinalConsumptionCol = "F999"
	_, err = r.Execute(ctx, raw, broken, Options{})
	if !errors.Is(err, errors.ErrCodeSchemaMismatch) {
		t.Errorf("error = %v, want SCHEMA_MISMATCH", err)
	}
}

func TestHashSchema(t *testing.T) {
	_, a := toyInputs(t)
	_, b := toyInputs(t)
	if HashSchema(a) != HashSchema(b) {
		t.Error("equal schemas should hash equally")
	}
	b.Drop.Rows = append(b.Drop.Rows, "V001")
	if HashSchema(a) == HashSchema(b) {
		t.Error("drop list change should change the hash")
	}
}

func TestExecuteSchemaMismatch(t *testing.T) {
	_, s := toyInputs(t)
	raw, err := iotable.ReadCSV(strings.NewReader("Code,A,B,T001,F010\nA,0,1,1,1\nB,1,0,1,1\nT005,1,1,,\n"), s.Layout)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), raw, s, Options{})
	if !errors.Is(err, errors.ErrCodeSchemaMismatch) {
		t.Fatalf("error = %v, want SCHEMA_MISMATCH", err)
	}
	if stage := errors.Stage(err); stage != StageSanitize {
		t.Errorf("stage = %q, want %q", stage, StageSanitize)
	}
	if !strings.Contains(err.Error(), "C") {
		t.Errorf("error should name the missing label: %v", err)
	}
}

func TestExecuteSingular(t *testing.T) {
	_, s := toyInputs(t)
	raw, err := iotable.ReadCSV(strings.NewReader(
		"Code,A,B,C,T001,F010\nA,0,100,0,100,0\nB,100,0,0,100,0\nC,0,0,0,0,0\nT005,100,100,0,,\n"), s.Layout)
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewRunner(nil, nil, nil).Execute(context.Background(), raw, s, Options{})
	if !errors.Is(err, errors.ErrCodeSingularMatrix) {
		t.Fatalf("error = %v, want SINGULAR_MATRIX", err)
	}
	if stage := errors.Stage(err); stage != network.StageUpstreamness {
		t.Errorf("stage = %q, want %q", stage, network.StageUpstreamness)
	}
}

func TestSweep(t *testing.T) {
	raw, s := toyInputs(t)
	r := NewRunner(nil, nil, nil)

	thresholds := []float64{0, 0.1, 0.2, 0.5, 0.8, 1}
	points, err := r.Sweep(context.Background(), raw, s, thresholds, Options{})
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(points) != len(thresholds) {
		t.Fatalf("got %d points, want %d", len(points), len(thresholds))
	}

	want := []SweepPoint{
		{Threshold: 0, SupplierEdges: 2, CustomerEdges: 2},
		{Threshold: 0.1, SupplierEdges: 2, CustomerEdges: 2},
		{Threshold: 0.2, SupplierEdges: 1, CustomerEdges: 1},
		{Threshold: 0.5, SupplierEdges: 1, CustomerEdges: 1},
		{Threshold: 0.8, SupplierEdges: 0, CustomerEdges: 0},
		{Threshold: 1, SupplierEdges: 0, CustomerEdges: 0},
	}
	if !slices.Equal(points, want) {
		t.Errorf("Sweep = %+v, want %+v", points, want)
	}

	if _, err := r.Sweep(context.Background(), raw, s, []float64{0.1, 2}, Options{}); !errors.Is(err, errors.ErrCodeInvalidThreshold) {
		t.Errorf("error = %v, want INVALID_THRESHOLD", err)
	}
}

func TestRender(t *testing.T) {
	raw, s := toyInputs(t)
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	ctx := context.Background()

	res, err := r.Execute(ctx, raw, s, Options{})
	if err != nil {
		t.Fatal(err)
	}

	dot, hit, err := r.Render(ctx, res.Network, RenderOptions{Format: FormatDOT})
	if err != nil {
		t.Fatalf("Render dot: %v", err)
	}
	if hit {
		t.Error("first render should miss")
	}
	if !strings.Contains(string(dot), `"A" -> "B"`) {
		t.Errorf("DOT missing A -> B:\n%s", dot)
	}

	_, hit, err = r.Render(ctx, res.Network, RenderOptions{Format: FormatDOT})
	if err != nil || !hit {
		t.Errorf("second render: hit %v, err %v", hit, err)
	}

	focus, _, err := r.Render(ctx, res.Network, RenderOptions{Format: FormatDOT, Focus: "B"})
	if err != nil {
		t.Fatalf("Render focus: %v", err)
	}
	if !strings.Contains(string(focus), "peripheries=2") {
		t.Errorf("A is both supplier and customer of B:\n%s", focus)
	}

	if _, _, err := r.Render(ctx, res.Network, RenderOptions{Format: FormatDOT, Focus: "Z"}); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("unknown focus: error = %v, want NOT_FOUND", err)
	}

	js, _, err := r.Render(ctx, res.Network, RenderOptions{Format: FormatJSON})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(js), `"schema_version": 1`) {
		t.Errorf("JSON render missing schema_version:\n%s", js)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	stages []string
	built  int
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, _ time.Duration, _ error) {
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnNetworkBuilt(context.Context, int, int, int) { h.built++ }

func TestExecuteEmitsStageEvents(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	raw, s := toyInputs(t)
	if _, err := NewRunner(nil, nil, nil).Execute(context.Background(), raw, s, Options{}); err != nil {
		t.Fatal(err)
	}

	if want := []string{StageSanitize, StageBuild}; !slices.Equal(hooks.stages, want) {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.built != 1 {
		t.Errorf("OnNetworkBuilt called %d times, want 1", hooks.built)
	}
}
