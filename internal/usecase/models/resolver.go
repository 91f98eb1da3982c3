// Package models picks the upstream model to use per provider.
package models

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/domain/model"
	"github.com/zkaiera/last30days-skill/internal/metrics"
)

// Policies.
const (
	PolicyAuto   = "auto"
	PolicyPinned = "pinned"
	PolicyLatest = "latest"
	PolicyStable = "stable"
)

// OpenAIFallbackModels is used when the catalog is unreachable or has no mainline model.
var OpenAIFallbackModels = []string{"gpt-5.2", "gpt-5.1", "gpt-5", "gpt-4.1", "gpt-4o"}

// xaiAliases point at the grok-4 family, which the x_search tool requires.
var xaiAliases = map[string]string{
	PolicyLatest: "grok-4-1-fast",
	PolicyStable: "grok-4-1-fast",
}

var (
	mainlineRe       = regexp.MustCompile(`^gpt-(?:4o|4\.1|5)(\.\d+)*$`)
	variantMarkers   = []string{"mini", "nano", "chat", "codex", "pro", "preview", "turbo"}
	errCatalogAbsent = errors.New("no catalog configured")
)

// IsMainlineOpenAIModel reports whether id is a full-size GPT-4o, 4.1+ or 5+ model.
func IsMainlineOpenAIModel(id string) bool {
	lower := strings.ToLower(id)
	if !mainlineRe.MatchString(lower) {
		return false
	}
	for _, m := range variantMarkers {
		if strings.Contains(lower, m) {
			return false
		}
	}
	return true
}

// OpenAIOptions configures an OpenAI model resolution.
type OpenAIOptions struct {
	Policy  string
	Pin     string
	BaseURL string
	Mapping map[string]string
	// MockModels replaces the catalog call when non-nil.
	MockModels []model.CatalogEntry
}

// XAIOptions configures an xAI model resolution.
type XAIOptions struct {
	Policy  string
	Pin     string
	BaseURL string
	Mapping map[string]string
}

// Options resolves both providers at once. A provider without a key is skipped.
type Options struct {
	HasOpenAIKey bool
	HasXAIKey    bool
	OpenAI       OpenAIOptions
	XAI          XAIOptions
}

// Selections holds the resolved models. A nil entry means the provider is not configured.
type Selections struct {
	OpenAI *domain.ModelSelection
	XAI    *domain.ModelSelection
}

// Resolver selects models, consulting and populating the resolution cache.
type Resolver struct {
	cache   Cache
	catalog Catalog
	logger  *zap.Logger
	group   singleflight.Group
}

// NewResolver creates a Resolver. catalog may be nil (offline); cache may be nil.
func NewResolver(cache Cache, catalog Catalog, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{cache: cache, catalog: catalog, logger: logger}
}

// ResolveAll resolves every provider whose key is present.
func (r *Resolver) ResolveAll(ctx context.Context, opts Options) Selections {
	var out Selections
	if opts.HasOpenAIKey {
		sel := r.ResolveOpenAI(ctx, opts.OpenAI)
		out.OpenAI = &sel
	}
	if opts.HasXAIKey {
		sel := r.ResolveXAI(ctx, opts.XAI)
		out.XAI = &sel
	}
	return out
}

// ResolveOpenAI picks the newest mainline model. It never fails: catalog
// errors fall back to the first static fallback model.
func (r *Resolver) ResolveOpenAI(ctx context.Context, opts OpenAIOptions) domain.ModelSelection {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyAuto
	}
	if policy == PolicyPinned && opts.Pin != "" {
		return domain.ModelSelection{
			Provider: domain.ProviderOpenAI,
			ModelID:  model.ApplyMapping(opts.Pin, opts.Mapping),
		}
	}

	key := CacheKey(domain.ProviderOpenAI, opts.BaseURL, policy, opts.Pin, opts.Mapping)
	id := r.resolveOnce(ctx, key, func() string {
		return r.pickOpenAI(ctx, opts)
	})
	return domain.ModelSelection{Provider: domain.ProviderOpenAI, ModelID: id, CacheKey: key}
}

func (r *Resolver) pickOpenAI(ctx context.Context, opts OpenAIOptions) string {
	fallback := model.ApplyMapping(OpenAIFallbackModels[0], opts.Mapping)

	models := opts.MockModels
	if models == nil {
		var err error
		models, err = r.listModels(ctx)
		if err != nil {
			r.logger.Warn("Model catalog unavailable, using fallback",
				zap.String("fallback", fallback), zap.Error(err))
			metrics.ModelFallbackTotal.WithLabelValues(string(domain.ProviderOpenAI)).Inc()
			return fallback
		}
	}

	candidates := make([]model.CatalogEntry, 0, len(models))
	for _, m := range models {
		if IsMainlineOpenAIModel(m.ID) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		r.logger.Info("No mainline model in catalog, using fallback", zap.String("fallback", fallback))
		metrics.ModelFallbackTotal.WithLabelValues(string(domain.ProviderOpenAI)).Inc()
		return fallback
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if c := model.CompareVersions(model.VersionKey(candidates[i].ID), model.VersionKey(candidates[j].ID)); c != 0 {
			return c > 0
		}
		return candidates[i].Created > candidates[j].Created
	})
	return model.ApplyMapping(candidates[0].ID, opts.Mapping)
}

func (r *Resolver) listModels(ctx context.Context) ([]model.CatalogEntry, error) {
	if r.catalog == nil {
		return nil, errCatalogAbsent
	}
	return r.catalog.ListModels(ctx)
}

// ResolveXAI maps the policy through the alias table. Unknown policies use
// the latest alias and are not cached.
func (r *Resolver) ResolveXAI(ctx context.Context, opts XAIOptions) domain.ModelSelection {
	policy := opts.Policy
	if policy == "" {
		policy = PolicyLatest
	}
	if policy == PolicyPinned && opts.Pin != "" {
		return domain.ModelSelection{
			Provider: domain.ProviderXAI,
			ModelID:  model.ApplyMapping(opts.Pin, opts.Mapping),
		}
	}

	canonical, ok := xaiAliases[policy]
	if !ok {
		return domain.ModelSelection{
			Provider: domain.ProviderXAI,
			ModelID:  model.ApplyMapping(xaiAliases[PolicyLatest], opts.Mapping),
		}
	}

	key := CacheKey(domain.ProviderXAI, opts.BaseURL, policy, opts.Pin, opts.Mapping)
	id := r.resolveOnce(ctx, key, func() string {
		return model.ApplyMapping(canonical, opts.Mapping)
	})
	return domain.ModelSelection{Provider: domain.ProviderXAI, ModelID: id, CacheKey: key}
}

// resolveOnce returns the cached id for key, or computes and caches it.
// Concurrent callers for the same key share one computation.
func (r *Resolver) resolveOnce(ctx context.Context, key string, compute func() string) string {
	v, _, _ := r.group.Do(key, func() (any, error) {
		if cached, ok := r.cacheGet(ctx, key); ok {
			metrics.ModelCacheTotal.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.ModelCacheTotal.WithLabelValues("miss").Inc()

		id := compute()
		r.cacheSet(ctx, key, id)
		return id, nil
	})
	return v.(string)
}

func (r *Resolver) cacheGet(ctx context.Context, key string) (string, bool) {
	if r.cache == nil {
		return "", false
	}
	data, err := r.cache.Get(ctx, key)
	if err != nil {
		// a miss and a broken cache look the same from here
		r.logger.Debug("Model cache miss", zap.String("key", key), zap.Error(err))
		return "", false
	}
	if len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (r *Resolver) cacheSet(ctx context.Context, key, id string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, []byte(id)); err != nil {
		r.logger.Warn("Model cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// CacheKey hashes every routing input, so changing any of them invalidates
// cached choices.
func CacheKey(provider domain.Provider, baseURL, policy, pin string, mapping map[string]string) string {
	if mapping == nil {
		mapping = map[string]string{}
	}
	// map keys marshal sorted, giving a stable encoding
	payload := map[string]any{
		"provider": string(provider),
		"base_url": strings.TrimRight(baseURL, "/"),
		"policy":   policy,
		"pin":      pin,
		"map":      mapping,
	}
	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return domain.KeyPrefix + "model:" + string(provider) + ":" + hex.EncodeToString(sum[:])[:16]
}
