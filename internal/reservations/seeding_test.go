package reservations

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/appetiteclub/apt"
)

func TestLoadTableSeeds(t *testing.T) {
	tests := []struct {
		name      string
		files     fstest.MapFS
		wantCount int
		wantErr   bool
	}{
		{
			name: "valid",
			files: fstest.MapFS{"seed.json": {Data: []byte(`{"tables":[
				{"number":"T1","capacity":2},
				{"number":"T2","capacity":4,"min_capacity":2,"open_time":"13:00","close_time":"23:30"}
			]}`)}},
			wantCount: 2,
		},
		{name: "missingFile", files: fstest.MapFS{}, wantErr: true},
		{name: "emptyFile", files: fstest.MapFS{"seed.json": {Data: []byte{}}}, wantErr: true},
		{name: "badJSON", files: fstest.MapFS{"seed.json": {Data: []byte(`{"tables":`)}}, wantErr: true},
		{name: "noTables", files: fstest.MapFS{"seed.json": {Data: []byte(`{"tables":[]}`)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seeds, err := loadTableSeeds(tt.files)
			if (err != nil) != tt.wantErr {
				t.Fatalf("loadTableSeeds() error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(seeds) != tt.wantCount {
				t.Errorf("loadTableSeeds() count = %d, want %d", len(seeds), tt.wantCount)
			}
		})
	}
}

func TestSeedIdentifier(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "T1", want: "t1"},
		{input: " Terrace-4 ", want: "terrace_4"},
		{input: "Bar/2", want: "bar_2"},
		{input: "   ", want: "unknown"},
		{input: "!!", want: "seed"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := seedIdentifier(tt.input); got != tt.want {
				t.Errorf("seedIdentifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTableSeedEnsureTable(t *testing.T) {
	logger := apt.NewNoopLogger()

	t.Run("createsWithDefaults", func(t *testing.T) {
		repo := NewMockTableRepo()
		s := tableSeed{Number: "T7", Capacity: 6, BufferAfterMinutes: 15}

		if err := s.ensureTable(context.Background(), repo, logger); err != nil {
			t.Fatalf("ensureTable() error = %v", err)
		}

		table, _ := repo.GetByNumber(context.Background(), "T7")
		if table == nil {
			t.Fatal("ensureTable() did not store the table")
		}
		if table.MinCapacity != 1 || table.OpenTime != DefaultOpenTime || table.Status != TableFree {
			t.Errorf("ensureTable() table = %+v, want defaults", table)
		}
		if table.BufferAfterMinutes != 15 || table.CreatedBy != seedActor {
			t.Errorf("ensureTable() table = %+v, want seed fields", table)
		}
	})

	t.Run("existingTableUntouched", func(t *testing.T) {
		existing := testTable("T7", 2, 1)
		repo := NewMockTableRepo(existing)
		s := tableSeed{Number: "T7", Capacity: 6}

		if err := s.ensureTable(context.Background(), repo, logger); err != nil {
			t.Fatalf("ensureTable() error = %v", err)
		}

		table, _ := repo.Get(context.Background(), existing.ID)
		if table.Capacity != 2 {
			t.Errorf("ensureTable() capacity = %d, want 2", table.Capacity)
		}
	})

	t.Run("invalidPolicy", func(t *testing.T) {
		repo := NewMockTableRepo()
		s := tableSeed{Number: "T8", Capacity: 2, MinCapacity: 4}

		if err := s.ensureTable(context.Background(), repo, logger); err == nil {
			t.Fatal("ensureTable() error = nil, want validation failure")
		}
		if tables, _ := repo.List(context.Background()); len(tables) != 0 {
			t.Errorf("ensureTable() stored %d tables, want 0", len(tables))
		}
	})
}

func TestBuildTableSeedDefinitionsSkipsBlankNumbers(t *testing.T) {
	seeds := []tableSeed{{Number: "T1", Capacity: 2}, {Number: " ", Capacity: 2}, {Number: "Patio 3", Capacity: 4}}

	defs := buildTableSeedDefinitions(seeds, NewMockTableRepo(), apt.NewNoopLogger())

	if len(defs) != 2 {
		t.Fatalf("buildTableSeedDefinitions() = %d seeds, want 2", len(defs))
	}
	if defs[1].ID != "2026-10-01_table_patio_3" {
		t.Errorf("seed ID = %s, want 2026-10-01_table_patio_3", defs[1].ID)
	}
}

func TestApplyTableSeedsRequiresMongo(t *testing.T) {
	files := fstest.MapFS{"seed.json": {Data: []byte(`{"tables":[{"number":"T1","capacity":2}]}`)}}

	if err := ApplyTableSeeds(context.Background(), NewMockTableRepo(), files, nil); err == nil {
		t.Error("ApplyTableSeeds() error = nil, want missing tracker error")
	}
	if err := ApplyTableSeeds(context.Background(), nil, files, nil); err == nil {
		t.Error("ApplyTableSeeds() error = nil, want missing repo error")
	}
}
