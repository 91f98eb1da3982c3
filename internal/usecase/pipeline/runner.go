// Package pipeline runs a complete research request: source selection,
// model resolution, provider searches and report assembly.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/zkaiera/last30days-skill/internal/domain"
	"github.com/zkaiera/last30days-skill/internal/domain/model"
	"github.com/zkaiera/last30days-skill/internal/usecase/models"
	"github.com/zkaiera/last30days-skill/internal/usecase/report"
	"github.com/zkaiera/last30days-skill/internal/usecase/research"
	"github.com/zkaiera/last30days-skill/internal/usecase/sources"
)

// DefaultDays is the default lookback window.
const DefaultDays = 30

// Request is one research request.
type Request struct {
	Topic      string
	Sources    string
	Days       int
	Depth      domain.Depth
	IncludeWeb bool
	Mock       bool
}

// Credentials describes which providers are usable in this process.
type Credentials struct {
	HasOpenAIKey      bool
	HasXAIKey         bool
	BirdAuthenticated bool
}

// Outcome is a finished run.
type Outcome struct {
	Report   report.Report
	Days     int
	Missing  string
	Note     string
	XBackend domain.XBackend
}

// Config wires a Runner.
type Config struct {
	Resolver    modelResolver
	Research    researcher
	Credentials Credentials
	Models      models.Options
	// Mock marks a runner wired with fixtures; mock requests are rejected otherwise.
	Mock bool
	// MockOpenAIModels replaces the OpenAI catalog in mock runs.
	MockOpenAIModels []model.CatalogEntry
	Now              func() time.Time
	Logger           *zap.Logger
}

// Runner executes research requests.
type Runner struct {
	cfg Config
}

// NewRunner creates a Runner.
func NewRunner(cfg Config) *Runner {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Runner{cfg: cfg}
}

// Run validates req and executes it.
func (r *Runner) Run(ctx context.Context, req Request) (Outcome, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return Outcome{}, domain.ErrEmptyTopic
	}
	days := req.Days
	if days == 0 {
		days = DefaultDays
	}
	if days < 1 || days > 30 {
		return Outcome{}, fmt.Errorf("%w: got %d", domain.ErrInvalidDays, days)
	}
	if req.Mock && !r.cfg.Mock {
		return Outcome{}, domain.ErrMockUnavailable
	}
	requested, err := domain.ParseSources(req.Sources)
	if err != nil {
		return Outcome{}, err
	}
	depth := req.Depth
	if depth == "" {
		depth = domain.DepthDefault
	}

	creds := r.cfg.Credentials
	backend, hasX := sources.XBackend(creds.BirdAuthenticated, creds.HasXAIKey)
	available := sources.Available(creds.HasOpenAIKey, hasX)
	missing := sources.Missing(creds.HasOpenAIKey, hasX)

	var selected domain.Sources
	var note string
	opts := r.cfg.Models
	if req.Mock {
		selected = requested
		if selected == domain.SourcesAuto {
			selected = domain.SourcesBoth
		}
		opts.HasOpenAIKey, opts.HasXAIKey = true, true
		opts.OpenAI.MockModels = r.cfg.MockOpenAIModels
		if backend == "" {
			backend = domain.XBackendXAI
		}
	} else {
		selected, note, err = sources.Validate(requested, available, req.IncludeWeb)
		if err != nil {
			return Outcome{}, err
		}
		opts.HasOpenAIKey, opts.HasXAIKey = creds.HasOpenAIKey, creds.HasXAIKey
	}

	from, to := domain.DateRange(r.cfg.Now(), days)
	sel := r.cfg.Resolver.ResolveAll(ctx, opts)

	var used report.Models
	if sel.OpenAI != nil {
		used.OpenAI = sel.OpenAI.ModelID
	}
	if sel.XAI != nil {
		used.XAI = sel.XAI.ModelID
	}

	r.cfg.Logger.Info("Research started",
		zap.String("topic", topic),
		zap.String("sources", string(selected)),
		zap.String("depth", string(depth)),
		zap.String("x_backend", string(backend)),
		zap.String("from", from),
		zap.String("to", to),
	)

	res := r.cfg.Research.Run(ctx, research.Params{
		Topic:       topic,
		Sources:     selected,
		FromDate:    from,
		ToDate:      to,
		Depth:       depth,
		XBackend:    backend,
		OpenAIModel: used.OpenAI,
		XAIModel:    used.XAI,
		Mock:        req.Mock,
	})

	rep := report.Builder{Now: r.cfg.Now}.Build(topic, from, to, selected.ReportMode(), used, res)
	r.cfg.Logger.Info("Research finished",
		zap.Int("reddit", len(rep.Reddit)),
		zap.Int("x", len(rep.X)),
		zap.Bool("web_needed", rep.WebNeeded),
	)

	return Outcome{Report: rep, Days: days, Missing: missing, Note: note, XBackend: backend}, nil
}
