package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-blockplan-api/internal/dto"
	"github.com/noah-isme/sma-blockplan-api/internal/genetic"
	"github.com/noah-isme/sma-blockplan-api/internal/models"
	"github.com/noah-isme/sma-blockplan-api/internal/planner"
	"github.com/noah-isme/sma-blockplan-api/pkg/config"
	appErrors "github.com/noah-isme/sma-blockplan-api/pkg/errors"
	"github.com/noah-isme/sma-blockplan-api/pkg/export"
	"github.com/noah-isme/sma-blockplan-api/pkg/random"
)

// ExportFormat selects the rendered plan representation.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult is a rendered plan ready for download.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

// PlannerService orchestrates grouping and scheduling runs, stores the plans
// for later export, and records run metrics.
type PlannerService struct {
	cfg       config.PlannerConfig
	validator *validator.Validate
	logger    *zap.Logger
	metrics   *MetricsService
	store     *planStore
}

// NewPlannerService wires planner dependencies.
func NewPlannerService(cfg config.PlannerConfig, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlannerService{
		cfg:       cfg,
		validator: validate,
		logger:    logger,
		metrics:   metrics,
		store:     newPlanStore(cfg.PlanTTL),
	}
}

// CreateGrouping partitions students across the mentors. With Evolve set the
// genetic search refines the sort-based heuristic; otherwise the heuristic
// result is returned directly.
func (s *PlannerService) CreateGrouping(ctx context.Context, req dto.CreateGroupingRequest) (*dto.GroupingResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grouping payload")
	}

	students := make([]models.Student, len(req.Students))
	for i, p := range req.Students {
		students[i] = p.ToModel()
	}

	start := time.Now()
	var house models.House
	var stats *genetic.Stats
	var err error
	if req.Evolve {
		cfg := s.geneticConfig(req.Config)
		var runStats genetic.Stats
		house, runStats, err = genetic.EvolveGrouping(cfg, req.Mentors, students)
		stats = &runStats
	} else {
		house = planner.CreateGrouping(req.Mentors, students)
	}
	scores := planner.ScoreHouse(house)
	if s.metrics != nil {
		fitness := scores.Overall
		generations := 0
		if stats != nil {
			generations = stats.Generations
		}
		s.metrics.ObservePlannerRun(planKindGrouping, generations, fitness, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	plan := storedPlan{ID: uuid.NewString(), Kind: planKindGrouping, House: &house}
	s.store.Save(plan)

	s.logger.Info("grouping created",
		zap.String("plan_id", plan.ID),
		zap.Int("mentors", len(req.Mentors)),
		zap.Int("students", len(students)),
		zap.Bool("evolved", req.Evolve),
		zap.Float64("score", scores.Overall),
	)

	resp := &dto.GroupingResponse{PlanID: plan.ID, House: house, Scores: scores}
	if stats != nil {
		resp.Stats = *stats
	}
	return resp, nil
}

// CreateSchedule fills a block schedule: one constructive pass by default, or
// the evolved best when Evolve is set.
func (s *PlannerService) CreateSchedule(ctx context.Context, req dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}

	block, err := req.Block.ToModel()
	if err != nil {
		return nil, err
	}
	attendance := dto.ToAttendanceRecord(req.Attendance)

	start := time.Now()
	var schedule models.BlockSchedule
	var stats *genetic.Stats
	if req.Evolve {
		cfg := s.geneticConfig(req.Config)
		var runStats genetic.Stats
		schedule, runStats, err = genetic.EvolveSchedule(cfg, block, attendance)
		stats = &runStats
	} else {
		seed := req.Seed
		if seed == 0 {
			seed = s.cfg.Seed
		}
		var enroller planner.Enroller
		enroller, err = planner.NewEnroller(planner.EnrollerKind(req.Enroller), random.New(seed))
		if err == nil {
			schedule, err = planner.CreateSchedule(block, attendance, enroller)
		}
	}

	var scores planner.ScheduleScores
	if err == nil {
		scores = planner.ScoreSchedule(schedule, attendance)
	}
	if s.metrics != nil {
		generations := 0
		if stats != nil {
			generations = stats.Generations
		}
		s.metrics.ObservePlannerRun(planKindSchedule, generations, scores.Overall, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	plan := storedPlan{ID: uuid.NewString(), Kind: planKindSchedule, Schedule: &schedule}
	s.store.Save(plan)

	s.logger.Info("schedule created",
		zap.String("plan_id", plan.ID),
		zap.String("block", block.Name),
		zap.Bool("evolved", req.Evolve),
		zap.Float64("fitness", scores.Overall),
	)

	resp := &dto.ScheduleResponse{PlanID: plan.ID, Schedule: schedule, Scores: scores}
	if stats != nil {
		resp.Stats = *stats
	}
	return resp, nil
}

// ExportPlan renders a stored plan as CSV or PDF.
func (s *PlannerService) ExportPlan(ctx context.Context, planID string, format ExportFormat) (*ExportResult, error) {
	plan, ok := s.store.Get(planID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "plan not found or expired")
	}

	var dataset export.Dataset
	var title string
	switch plan.Kind {
	case planKindSchedule:
		dataset = export.ScheduleDataset(*plan.Schedule)
		title = fmt.Sprintf("%s - %s", plan.Schedule.Block.Course, plan.Schedule.Block.Name)
	case planKindGrouping:
		dataset = export.GroupingDataset(*plan.House)
		title = "Grouping"
	default:
		return nil, appErrors.Clone(appErrors.ErrInternal, "stored plan has unknown kind")
	}

	switch format {
	case ExportCSV, "":
		content, err := export.NewCSVExporter().Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: plan.Kind + ".csv"}, nil
	case ExportPDF:
		content, err := export.NewPDFExporter().Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: plan.Kind + ".pdf"}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
}

// geneticConfig merges a request override onto the configured defaults.
func (s *PlannerService) geneticConfig(override *dto.GeneticConfigPayload) genetic.Config {
	cfg := genetic.Config{
		PopulationSize:  s.cfg.PopulationSize,
		MaxEvolutions:   s.cfg.MaxEvolutions,
		AcceptableScore: s.cfg.AcceptableScore,
		Seed:            s.cfg.Seed,
	}
	if override == nil {
		return cfg
	}
	if override.PopulationSize > 0 {
		cfg.PopulationSize = override.PopulationSize
	}
	if override.MaxEvolutions > 0 {
		cfg.MaxEvolutions = override.MaxEvolutions
	}
	if override.AcceptableScore > 0 {
		cfg.AcceptableScore = override.AcceptableScore
	}
	if override.Seed != 0 {
		cfg.Seed = override.Seed
	}
	return cfg
}
