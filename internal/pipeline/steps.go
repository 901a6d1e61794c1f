package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/automatizamg/seilist/internal/config"
	"github.com/automatizamg/seilist/internal/model"
	"github.com/automatizamg/seilist/internal/portal"
)

// Portal is the set of portal operations the steps drive.
// *portal.Portal implements it.
type Portal interface {
	Login(ctx context.Context, creds config.Credentials) (string, error)
	OpenControl(ctx context.Context, fromHTML string) (string, string, error)
	CurrentUnit(markup string) (name, switchURL string)
	SwitchUnit(ctx context.Context, switchURL, target string) (*portal.SwitchResult, error)
	ParsePage(markup string) (*portal.Page, error)
	AdvancePage(ctx context.Context, markup string, c model.Category, target int, referer string) (string, error)
}

// Step names, in execution order.
const (
	StepLogin   = "login"
	StepControl = "open_control"
	StepUnit    = "unit_context"
	StepCollect = "collect"
)

// LoginStep authenticates and stores the post-login page in the run.
type LoginStep struct {
	portal Portal
	creds  config.Credentials
}

// NewLoginStep creates a login step.
func NewLoginStep(p Portal, creds config.Credentials) *LoginStep {
	return &LoginStep{portal: p, creds: creds}
}

// Name returns the step name.
func (s *LoginStep) Name() string {
	return StepLogin
}

// Do executes the login.
func (s *LoginStep) Do(ctx context.Context, run *model.Run) error {
	html, err := s.portal.Login(ctx, s.creds)
	if err != nil {
		return err
	}
	run.LoginHTML = html
	return nil
}

// ControlStep opens the control screen from the post-login page.
type ControlStep struct {
	portal Portal
	logger *slog.Logger
}

// NewControlStep creates a control screen step.
func NewControlStep(p Portal, logger *slog.Logger) *ControlStep {
	return &ControlStep{portal: p, logger: logger}
}

// Name returns the step name.
func (s *ControlStep) Name() string {
	return StepControl
}

// Do loads the control screen and records the active unit.
func (s *ControlStep) Do(ctx context.Context, run *model.Run) error {
	html, controlURL, err := s.portal.OpenControl(ctx, run.LoginHTML)
	if err != nil {
		return err
	}
	run.ControlHTML = html
	run.ControlURL = controlURL

	run.ActiveUnit, _ = s.portal.CurrentUnit(html)
	if run.ActiveUnit != "" {
		s.logger.Info("current unit", "unit", run.ActiveUnit)
	}
	return nil
}

// UnitStep switches to the target unit when another one is active.
// Failing to switch is not fatal: the run continues with the active unit.
type UnitStep struct {
	portal Portal
	logger *slog.Logger
}

// NewUnitStep creates a unit context step.
func NewUnitStep(p Portal, logger *slog.Logger) *UnitStep {
	return &UnitStep{portal: p, logger: logger}
}

// Name returns the step name.
func (s *UnitStep) Name() string {
	return StepUnit
}

// Do settles the unit context.
func (s *UnitStep) Do(ctx context.Context, run *model.Run) error {
	current, switchURL := s.portal.CurrentUnit(run.ControlHTML)
	if portal.SameUnit(current, run.TargetUnit) {
		return nil
	}

	active := current
	if active == "" {
		active = "unknown"
	}
	s.logger.Info("active unit differs from target, switching",
		"active", active,
		"target", run.TargetUnit,
	)
	if switchURL == "" {
		s.logger.Warn("unit switch link not available, continuing with the active unit", "active", active)
		return nil
	}

	res, err := s.portal.SwitchUnit(ctx, switchURL, run.TargetUnit)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Join(ctxErr, err)
		}
		s.logger.Warn("unit switch failed, continuing with the active unit", "active", active, "error", err)
		return nil
	}
	if !res.Switched {
		attrs := []any{"active", active, "reason", res.Reason}
		if res.Suggestion != "" {
			attrs = append(attrs, "did_you_mean", res.Suggestion)
		} else if len(res.Available) > 0 {
			attrs = append(attrs, "available", res.Available)
		}
		s.logger.Warn("unit switch failed, continuing with the active unit", attrs...)
		return nil
	}

	html, controlURL, err := s.portal.OpenControl(ctx, res.HTML)
	if err != nil {
		return err
	}
	run.ControlHTML = html
	run.ControlURL = controlURL
	run.UnitSwitched = true
	run.ActiveUnit = run.TargetUnit
	if now, _ := s.portal.CurrentUnit(html); now != "" {
		run.ActiveUnit = now
	}
	s.logger.Info("unit switched", "unit", run.ActiveUnit)
	return nil
}

// CollectStep pages through both result groups and accumulates records in
// the run's record set. The first record seen for an identity wins.
type CollectStep struct {
	portal Portal
	logger *slog.Logger
}

// NewCollectStep creates a collection step.
func NewCollectStep(p Portal, logger *slog.Logger) *CollectStep {
	return &CollectStep{portal: p, logger: logger}
}

// Name returns the step name.
func (s *CollectStep) Name() string {
	return StepCollect
}

// Do collects every page of every group. Groups page independently, each
// starting from the control screen in the run.
func (s *CollectStep) Do(ctx context.Context, run *model.Run) error {
	first, err := s.portal.ParsePage(run.ControlHTML)
	if err != nil {
		return err
	}
	for _, c := range model.Categories {
		s.add(run, c, first)
	}
	s.logger.Info("first page collected",
		"total", run.Records.Len(),
		"received", run.Records.CountByCategory(model.CategoryReceived),
		"generated", run.Records.CountByCategory(model.CategoryGenerated),
	)

	for _, c := range model.Categories {
		if err := s.collectGroup(ctx, run, c, first); err != nil {
			return err
		}
	}

	s.logger.Info("collection finished",
		"total", run.Records.Len(),
		"received", run.Records.CountByCategory(model.CategoryReceived),
		"generated", run.Records.CountByCategory(model.CategoryGenerated),
	)
	return nil
}

// collectGroup fetches the pages of c after the first one. The page count
// comes from the first page; later pages only report their own size.
func (s *CollectStep) collectGroup(ctx context.Context, run *model.Run, c model.Category, first *portal.Page) error {
	info := first.Pagination(c)
	stats := run.Group(c)
	stats.Total = info.Total

	markup := run.ControlHTML
	for target := info.CurrentPage + 1; target < info.TotalPages; target++ {
		s.logger.Info("loading page",
			"group", c,
			"page", target+1,
			"pages", info.TotalPages,
			"collected", run.Records.Len(),
		)
		next, err := s.portal.AdvancePage(ctx, markup, c, target, run.ControlURL)
		if err != nil {
			return err
		}
		page, err := s.portal.ParsePage(next)
		if err != nil {
			return err
		}
		s.add(run, c, page)
		markup = next
	}
	return nil
}

func (s *CollectStep) add(run *model.Run, c model.Category, page *portal.Page) {
	records, extracted := page.Records(c)
	added := run.Records.AddAll(records)

	g := run.Group(c)
	g.Pages++
	g.Rows += extracted.Rows
	g.Extracted += extracted.Extracted
	g.Skipped += extracted.Skipped
	g.Duplicates += len(records) - added

	if extracted.Skipped > 0 {
		s.logger.Debug("rows skipped", "group", c, "page", g.Pages, "skipped", extracted.Skipped)
	}
}

// NewListing returns the standard listing pipeline for target settings.
func NewListing(p Portal, creds config.Credentials, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	pl := New(append([]Option{WithLogger(logger)}, opts...)...)
	pl.AddSteps(
		NewLoginStep(p, creds),
		NewControlStep(p, logger),
		NewUnitStep(p, logger),
		NewCollectStep(p, logger),
	)
	return pl
}
