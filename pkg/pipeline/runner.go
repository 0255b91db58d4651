package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/prodnet/pkg/cache"
	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/iotable"
	"github.com/matzehuels/prodnet/pkg/network"
	"github.com/matzehuels/prodnet/pkg/observability"
	"github.com/matzehuels/prodnet/pkg/schema"
)

// Cache key types reported to observability hooks.
const (
	keyTypeNetwork = "network"
	keyTypeRender  = "render"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so one Runner can serve several builds,
// for example a threshold sweep.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute sanitizes raw under s and builds the network, reusing a cached
// network for an identical table, schema and options.
func (r *Runner) Execute(ctx context.Context, raw *iotable.RawTable, s *schema.Schema, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		RunID:     uuid.New(),
		Scope:     s.Scope(),
		TableHash: HashTable(raw),
		Options:   opts,
	}
	logger := opts.Logger.With("run", result.RunID.String()[:8])
	result.UnrecognizedRows, result.UnrecognizedCols = iotable.Unrecognized(raw, s)
	if len(result.UnrecognizedRows)+len(result.UnrecognizedCols) > 0 {
		logger.Debug("ignoring unrecognized labels",
			"rows", result.UnrecognizedRows,
			"cols", result.UnrecognizedCols)
	}

	keyer := cache.NewScopedKeyer(r.Keyer, result.Scope+":")
	keyOpts := opts.NetworkKeyOpts()
	keyOpts.SchemaHash = HashSchema(s)
	cacheKey := keyer.NetworkKey(result.TableHash, keyOpts)

	if !opts.Refresh {
		if net, ok := r.cachedNetwork(ctx, cacheKey); ok {
			result.Network = net
			result.CacheInfo.NetworkHit = true
			result.fillStats()
			logger.Info("loaded network from cache", "industries", result.Stats.Industries)
			return result, nil
		}
	}

	start := time.Now()
	table, err := r.sanitize(ctx, raw, s)
	result.Stats.SanitizeTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	logger.Debug("sanitized table", "industries", table.Len(), "duration", result.Stats.SanitizeTime)

	start = time.Now()
	net, err := r.build(ctx, table, opts.Params())
	result.Stats.BuildTime = time.Since(start)
	if err != nil {
		return nil, err
	}
	result.Network = net
	result.fillStats()

	logger.Info("built network",
		"industries", result.Stats.Industries,
		"supplier_edges", result.Stats.SupplierEdges,
		"customer_edges", result.Stats.CustomerEdges,
		"duration", result.Stats.BuildTime)

	if data, err := graph.MarshalNetwork(net, nil); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLNetwork); err != nil {
			logger.Warn("cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(ctx, keyTypeNetwork, len(data))
		}
	}

	return result, nil
}

// Sweep builds the network once per threshold and reports the edge counts.
// The table is sanitized once. Thresholds are processed in the given order.
func (r *Runner) Sweep(ctx context.Context, raw *iotable.RawTable, s *schema.Schema, thresholds []float64, opts Options) ([]SweepPoint, error) {
	for _, th := range thresholds {
		if err := errors.ValidateThreshold(th); err != nil {
			return nil, err
		}
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	table, err := r.sanitize(ctx, raw, s)
	if err != nil {
		return nil, err
	}

	points := make([]SweepPoint, 0, len(thresholds))
	for _, th := range thresholds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := opts.Params()
		p.Threshold = th
		net, err := r.build(ctx, table, p)
		if err != nil {
			return nil, err
		}
		sup, cust := net.EdgeCounts()
		opts.Logger.Debug("sweep", "threshold", th, "supplier_edges", sup, "customer_edges", cust)
		points = append(points, SweepPoint{Threshold: th, SupplierEdges: sup, CustomerEdges: cust})
	}
	return points, nil
}

// Render draws net in the requested format, reusing a cached artifact when
// one exists. The second return value reports a cache hit.
func (r *Runner) Render(ctx context.Context, net *network.Network, opts RenderOptions) ([]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	netData, err := graph.MarshalNetwork(net, nil)
	if err != nil {
		return nil, false, errors.AtStage(StageRender, err)
	}
	cacheKey := r.Keyer.RenderKey(cache.Hash(netData), opts.RenderKeyOpts())

	if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, keyTypeRender)
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, keyTypeRender)

	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, StageRender)
	start := time.Now()
	data, err := render(ctx, net, netData, opts)
	hooks.OnStageComplete(ctx, StageRender, time.Since(start), err)
	if err != nil {
		return nil, false, errors.AtStage(StageRender, err)
	}

	if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLRender); err == nil {
		observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
	}
	return data, false, nil
}

// Close releases the runner's cache.
func (r *Runner) Close() error {
	return r.Cache.Close()
}

func (r *Runner) sanitize(ctx context.Context, raw *iotable.RawTable, s *schema.Schema) (*iotable.Table, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, StageSanitize)
	start := time.Now()
	table, err := iotable.Sanitize(raw, s)
	hooks.OnStageComplete(ctx, StageSanitize, time.Since(start), err)
	if err != nil {
		return nil, errors.AtStage(StageSanitize, err)
	}
	return table, nil
}

func (r *Runner) build(ctx context.Context, t *iotable.Table, p network.Params) (*network.Network, error) {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, StageBuild)
	start := time.Now()
	net, err := network.Build(t, p)
	hooks.OnStageComplete(ctx, StageBuild, time.Since(start), err)
	if err != nil {
		if errors.Stage(err) == "" {
			err = errors.AtStage(StageBuild, err)
		}
		return nil, err
	}
	sup, cust := net.EdgeCounts()
	hooks.OnNetworkBuilt(ctx, net.Len(), sup, cust)
	return net, nil
}

func (r *Runner) cachedNetwork(ctx context.Context, key string) (*network.Network, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyTypeNetwork)
		return nil, false
	}
	net, _, err := graph.ReadNetwork(bytes.NewReader(data))
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, keyTypeNetwork)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyTypeNetwork)
	return net, true
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (res *Result) fillStats() {
	res.Stats.Industries = res.Network.Len()
	res.Stats.SupplierEdges, res.Stats.CustomerEdges = res.Network.EdgeCounts()
}

// HashTable returns the content hash of a raw table. Labels and cells
// are strings, so encoding cannot fail.
func HashTable(raw *iotable.RawTable) string {
	h, _ := cache.HashJSON(raw)
	return h
}

// HashSchema returns the content hash of a schema: industries, labels,
// layout and sentinels all take part.
func HashSchema(s *schema.Schema) string {
	h, _ := cache.HashJSON(s)
	return h
}
