package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/seed"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	tableSeedApplication = "seating"
	seedActor            = "seed:bootstrap"
)

type bootstrapSeedDocument struct {
	Tables []tableSeed `json:"tables"`
}

type tableSeed struct {
	Number                     string `json:"number"`
	Name                       string `json:"name"`
	Capacity                   int    `json:"capacity"`
	MinCapacity                int    `json:"min_capacity"`
	Priority                   int    `json:"priority"`
	OpenTime                   string `json:"open_time"`
	CloseTime                  string `json:"close_time"`
	ReservationDurationMinutes int    `json:"reservation_duration_minutes"`
	BufferBeforeMinutes        int    `json:"buffer_before_minutes"`
	BufferAfterMinutes         int    `json:"buffer_after_minutes"`
}

func loadTableSeeds(seedFS fs.FS) ([]tableSeed, error) {
	seedBytes, err := fs.ReadFile(seedFS, "seed.json")
	if err != nil {
		return nil, fmt.Errorf("read seed.json: %w", err)
	}

	if len(seedBytes) == 0 {
		return nil, errors.New("table seed file is empty")
	}

	var doc bootstrapSeedDocument
	if err := json.Unmarshal(seedBytes, &doc); err != nil {
		return nil, fmt.Errorf("decode table seed file: %w", err)
	}

	if len(doc.Tables) == 0 {
		return nil, errors.New("table seed file does not contain tables")
	}

	return doc.Tables, nil
}

// ApplyTableSeeds ensures all predefined tables exist. Each table is a
// tracked seed, so it is created at most once per database.
func ApplyTableSeeds(ctx context.Context, repo TableRepo, seedFS fs.FS, logger apt.Logger) error {
	if repo == nil {
		return errors.New("table repository is required")
	}
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	seedDocs, err := loadTableSeeds(seedFS)
	if err != nil {
		return err
	}

	seedDefs := buildTableSeedDefinitions(seedDocs, repo, logger)
	if len(seedDefs) == 0 {
		logger.Info("No table seeds to apply")
		return nil
	}

	tracker, err := trackerFromRepo(repo)
	if err != nil {
		return err
	}

	logger.Info("Applying table seeds", "count", len(seedDefs))
	if err := seed.Apply(ctx, tracker, seedDefs, tableSeedApplication); err != nil {
		return err
	}
	logger.Info("Table seeds applied successfully")
	return nil
}

func trackerFromRepo(repo TableRepo) (seed.Tracker, error) {
	provider, ok := repo.(mongoDatabaseProvider)
	if !ok {
		return nil, errors.New("table repository does not expose MongoDB access for seeding")
	}
	db := provider.GetDatabase()
	if db == nil {
		return nil, errors.New("table repository database is not initialized")
	}
	return seed.NewMongoTracker(db), nil
}

type mongoDatabaseProvider interface {
	GetDatabase() *mongo.Database
}

func buildTableSeedDefinitions(raw []tableSeed, repo TableRepo, logger apt.Logger) []seed.Seed {
	var defs []seed.Seed

	for _, s := range raw {
		seedData := s
		if strings.TrimSpace(seedData.Number) == "" {
			logger.Info("Skipping seed table with empty number")
			continue
		}

		defs = append(defs, seed.Seed{
			ID:          fmt.Sprintf("2026-10-01_table_%s", seedIdentifier(seedData.Number)),
			Description: fmt.Sprintf("Ensure table %s exists", seedData.Number),
			Run: func(ctx context.Context) error {
				return seedData.ensureTable(ctx, repo, logger)
			},
		})
	}

	return defs
}

func seedIdentifier(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}

	replacer := strings.NewReplacer("-", "_", " ", "_", "/", "_", "\\", "_")
	value = replacer.Replace(value)

	var builder strings.Builder
	for _, r := range value {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			builder.WriteRune(r)
		}
	}

	result := builder.String()
	if result == "" {
		return "seed"
	}
	return result
}

func (s tableSeed) table() *Table {
	table := NewTable()
	table.Number = strings.TrimSpace(s.Number)
	table.Name = s.Name
	table.Capacity = s.Capacity
	if s.MinCapacity > 0 {
		table.MinCapacity = s.MinCapacity
	}
	table.Priority = s.Priority
	if s.OpenTime != "" {
		table.OpenTime = s.OpenTime
	}
	if s.CloseTime != "" {
		table.CloseTime = s.CloseTime
	}
	if s.ReservationDurationMinutes > 0 {
		table.ReservationDurationMinutes = s.ReservationDurationMinutes
	}
	table.BufferBeforeMinutes = s.BufferBeforeMinutes
	table.BufferAfterMinutes = s.BufferAfterMinutes
	table.CreatedBy = seedActor
	table.UpdatedBy = seedActor
	return table
}

func (s tableSeed) ensureTable(ctx context.Context, repo TableRepo, logger apt.Logger) error {
	table := s.table()
	if table.Number == "" {
		return errors.New("table number is required")
	}

	existing, err := repo.GetByNumber(ctx, table.Number)
	if err != nil {
		return fmt.Errorf("look up table %s: %w", table.Number, err)
	}
	if existing != nil {
		logger.Info("Seed table already exists", "number", table.Number)
		return nil
	}

	if errs := ValidateTable(table); len(errs) > 0 {
		return fmt.Errorf("seed table %s is invalid: %s", table.Number, strings.Join(errs, ", "))
	}

	table.BeforeCreate()
	if err := repo.Create(ctx, table); err != nil {
		return fmt.Errorf("create seed table %s: %w", table.Number, err)
	}

	logger.Info("Seed table created", "number", table.Number, "id", table.ID.String())
	return nil
}

// SeedingFunc returns an OnStart hook that applies table seeds in the
// background.
func SeedingFunc(seedCtx context.Context, repo TableRepo, seedFS fs.FS, logger apt.Logger) func(ctx context.Context) error {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}

	return func(ctx context.Context) error {
		logger.Info("Starting table seeding in background")
		go func() {
			if err := ApplyTableSeeds(seedCtx, repo, seedFS, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("Table seeds failed: %v", err)
			} else if err == nil {
				logger.Info("Table seeding completed")
			}
		}()
		return nil
	}
}

// StopFunc returns an OnStop hook that cancels background seeding.
func StopFunc(cancelFunc context.CancelFunc) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if cancelFunc != nil {
			cancelFunc()
		}
		return nil
	}
}
