package solver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/sbanks1000/rota-scheduler/pkg/config"
	"github.com/sbanks1000/rota-scheduler/pkg/logger"
	"github.com/sbanks1000/rota-scheduler/pkg/types"
)

// Engine is the scheduling engine: a pure in-memory computation over one
// immutable request snapshot per run. Engines are safe for concurrent use;
// each Solve call owns its entire search state.
type Engine struct {
	cfg *config.Config
	log *logger.Logger
}

// New creates a scheduling engine
func New(cfg *config.Config, log *logger.Logger) *Engine {
	return &Engine{cfg: cfg, log: log}
}

// Solve runs one scheduling pass: model building, propagation-guided
// branch-and-bound search, independent validation, and result packaging.
//
// A structurally unsatisfiable request returns a model error. An exhausted
// budget with no feasible schedule returns a result with an infeasibility
// report, not an error. Cancellation via ctx returns the best schedule found
// so far, tagged non-optimal. A validation failure on a schedule the search
// claimed feasible is an engine defect and returns a validation error.
func (e *Engine) Solve(ctx context.Context, req *types.SchedulingRequest) (*types.ScheduleResult, error) {
	started := time.Now()
	weights := types.SoftWeights{
		RequestFulfilled: e.cfg.Weights.RequestFulfilled,
		HolidayBalance:   e.cfg.Weights.HolidayBalance,
		WeekStartCover:   e.cfg.Weights.WeekStartCover,
		RunShape:         e.cfg.Weights.RunShape,
	}
	if req.Weights != nil {
		weights = *req.Weights
	}
	budget := req.Budget
	if budget.MaxNodes == 0 && budget.TimeLimit == 0 {
		budget = types.SearchBudget{
			MaxNodes:  e.cfg.Search.MaxNodes,
			TimeLimit: time.Duration(e.cfg.Search.TimeLimitSeconds) * time.Second,
		}
	}

	model, err := BuildModel(req, e.cfg.Rules, weights)
	if err != nil {
		e.log.WithError(err).Warn("Scheduling request is structurally unsatisfiable")
		return nil, err
	}
	e.log.WithComponent("model").WithFields(logrus.Fields{
		"slots":       len(model.Slots),
		"doctors":     len(model.Doctors),
		"constraints": len(model.Constraints),
	}).Info("Constraint model built")

	state := newSearchState(model)
	s := newSearcher(ctx, state, budget, req.Seed)

	if c := state.applyFixed(); c != nil {
		e.log.WithSlot(c.SlotIndex).WithField("constraint_id", c.ConstraintID).
			Warn("Fixed assignments are mutually unsatisfiable")
		result := infeasibleFromContradiction(c, s.stats(false, false))
		e.logRun(result, started)
		return result, nil
	}

	searchErr := s.run()
	cancelled := searchErr == errCancelled
	exhausted := searchErr == nil

	if s.best == nil {
		message := "search space exhausted without a feasible schedule"
		switch {
		case cancelled:
			message = "run cancelled before a feasible schedule was found"
		case !exhausted:
			message = "search budget exhausted without a feasible schedule"
		}
		result := packageInfeasible(s.failures, s.stats(cancelled, exhausted), message)
		e.logRun(result, started)
		return result, nil
	}

	schedule := buildSchedule(model, s.best.assigned)
	violations, warnings := ValidateSchedule(model, schedule)
	if len(violations) > 0 {
		// The search engine produced a schedule that breaks a hard rule.
		// This must never happen; halt the run and report the defect.
		first := violations[0]
		verr := types.NewValidationError(types.ErrCodeHardRuleViolated, first.Description, map[string]interface{}{
			"constraint_id": first.ConstraintID,
			"doctor_id":     first.DoctorID,
			"slot_index":    first.SlotIndex,
			"violations":    len(violations),
		})
		e.log.WithDoctor(first.DoctorID).WithField("slot_index", first.SlotIndex).
			WithError(verr).Error("Validator rejected a schedule the search claimed feasible")
		return nil, verr
	}

	result := packageSuccess(s.best, model, s.stats(cancelled, exhausted), warnings)
	e.logRun(result, started)
	return result, nil
}

func (e *Engine) logRun(result *types.ScheduleResult, started time.Time) {
	details := map[string]interface{}{
		"incumbents": result.Stats.IncumbentsFound,
		"optimal":    result.Stats.OptimalityProven,
	}
	if result.Score != nil {
		details["score"] = result.Score.Total
	}
	e.log.SolverRun(result.ID, string(result.Status), result.Stats.NodesExplored,
		result.Stats.Backtracks, time.Since(started).Milliseconds(), details)
}
