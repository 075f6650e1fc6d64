package store

import (
	"os"
	"path/filepath"
	"testing"

	"missioncore/config"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")

	db, err := Open(&config.DatabaseConfig{
		Driver: "sqlite",
		SQLite: config.SQLiteConfig{Path: dbPath},
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
		os.Remove(dbPath)
	})
	return db
}

func sampleMission(id string) *Mission {
	return &Mission{
		ID:          id,
		Name:        "pallet run",
		Operation:   "pickup",
		RobotID:     "AMR-01",
		SourcePoint: "104",
		DestPoint:   "drop-off",
		Status:      "queued",
		FailedStep:  -1,
		Steps: []*MissionStep{
			{Kind: "move", Label: "104_load_docking", TargetX: 1, TargetY: 2, Status: "pending"},
			{Kind: "align_with_rack", Label: "104_load", TargetX: 1, TargetY: 2, Status: "pending"},
			{Kind: "jack_up", Status: "pending"},
		},
	}
}

// --- Mission tests ---

func TestMissionCRUD(t *testing.T) {
	db := testDB(t)

	m := sampleMission("m-1")
	if err := db.CreateMission(m); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := db.GetMission("m-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Operation != "pickup" {
		t.Errorf("Operation = %q, want %q", got.Operation, "pickup")
	}
	if got.FailedStep != -1 {
		t.Errorf("FailedStep = %d, want -1", got.FailedStep)
	}
	if len(got.Steps) != 3 {
		t.Fatalf("steps len = %d, want 3", len(got.Steps))
	}
	if got.Steps[0].Kind != "move" || got.Steps[0].Idx != 0 {
		t.Errorf("steps[0] = %q idx %d, want move idx 0", got.Steps[0].Kind, got.Steps[0].Idx)
	}
	if got.Steps[1].Label != "104_load" {
		t.Errorf("steps[1] label = %q, want %q", got.Steps[1].Label, "104_load")
	}

	// UpdateStatus (also creates history)
	if err := db.UpdateMissionStatus("m-1", "running", ""); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got2, _ := db.GetMission("m-1")
	if got2.Status != "running" {
		t.Errorf("Status = %q, want running", got2.Status)
	}

	history, _ := db.ListMissionHistory("m-1")
	if len(history) != 1 {
		t.Fatalf("history len = %d, want 1", len(history))
	}
	if history[0].Status != "running" {
		t.Errorf("history status = %q, want running", history[0].Status)
	}
}

func TestFinishMission(t *testing.T) {
	db := testDB(t)

	m := sampleMission("m-1")
	db.CreateMission(m)

	if err := db.FinishMission("m-1", "failed", 1, "", "alignment attempts exhausted"); err != nil {
		t.Fatalf("finish: %v", err)
	}
	got, _ := db.GetMission("m-1")
	if got.Status != "failed" {
		t.Errorf("Status = %q, want failed", got.Status)
	}
	if got.FailedStep != 1 {
		t.Errorf("FailedStep = %d, want 1", got.FailedStep)
	}
	if got.ErrorDetail == "" {
		t.Error("ErrorDetail should be set")
	}
	if got.FinishedAt == nil {
		t.Error("FinishedAt should be set")
	}
}

func TestUpdateMissionStep(t *testing.T) {
	db := testDB(t)

	db.CreateMission(sampleMission("m-1"))
	if err := db.UpdateMissionStep("m-1", 0, "succeeded", 2); err != nil {
		t.Fatalf("update step: %v", err)
	}
	steps, _ := db.ListMissionSteps("m-1")
	if steps[0].Status != "succeeded" {
		t.Errorf("step status = %q, want succeeded", steps[0].Status)
	}
	if steps[0].RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", steps[0].RetryCount)
	}
	if steps[1].Status != "pending" {
		t.Errorf("untouched step status = %q, want pending", steps[1].Status)
	}
}

func TestListMissions(t *testing.T) {
	db := testDB(t)

	db.CreateMission(sampleMission("m-1"))
	db.CreateMission(sampleMission("m-2"))
	m3 := sampleMission("m-3")
	db.CreateMission(m3)
	db.FinishMission("m-3", "completed", -1, "", "")

	all, _ := db.ListMissions("", 10)
	if len(all) != 3 {
		t.Errorf("all len = %d, want 3", len(all))
	}

	queued, _ := db.ListMissions("queued", 10)
	if len(queued) != 2 {
		t.Errorf("queued len = %d, want 2", len(queued))
	}

	active, _ := db.ListActiveMissions()
	if len(active) != 2 {
		t.Errorf("active len = %d, want 2", len(active))
	}
}

// --- Map point tests ---

func TestReplaceMapPoints(t *testing.T) {
	db := testDB(t)

	first := []*MapPoint{
		{PointID: "104_load", PosX: 1, PosY: 2},
		{PointID: "104_load_docking", PosX: 1.2, PosY: 2},
	}
	if err := db.ReplaceMapPoints(first); err != nil {
		t.Fatalf("replace: %v", err)
	}
	points, _ := db.ListMapPoints()
	if len(points) != 2 {
		t.Fatalf("len = %d, want 2", len(points))
	}

	// A second sync fully replaces the snapshot.
	second := []*MapPoint{{PointID: "205_load", PosX: 3, PosY: 4, Ori: 90}}
	if err := db.ReplaceMapPoints(second); err != nil {
		t.Fatalf("replace again: %v", err)
	}
	points2, _ := db.ListMapPoints()
	if len(points2) != 1 {
		t.Fatalf("len after replace = %d, want 1", len(points2))
	}
	if points2[0].PointID != "205_load" {
		t.Errorf("point = %q, want 205_load", points2[0].PointID)
	}
	if points2[0].Ori != 90 {
		t.Errorf("ori = %f, want 90", points2[0].Ori)
	}
}

// --- Outbox tests ---

func TestOutboxCRUD(t *testing.T) {
	db := testDB(t)

	if err := db.EnqueueOutbox("missioncore.missions", []byte(`{"test":true}`), "mission_completed", "m-1"); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	db.EnqueueOutbox("missioncore.missions", []byte(`{"test":2}`), "mission_failed", "m-2")

	msgs, err := db.ListPendingOutbox(10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("len = %d, want 2", len(msgs))
	}
	if msgs[0].MsgType != "mission_completed" {
		t.Errorf("msg_type = %q, want %q", msgs[0].MsgType, "mission_completed")
	}
	if msgs[0].MissionID != "m-1" {
		t.Errorf("mission_id = %q, want m-1", msgs[0].MissionID)
	}

	db.AckOutbox(msgs[0].ID)
	msgs2, _ := db.ListPendingOutbox(10)
	if len(msgs2) != 1 {
		t.Errorf("pending after ack = %d, want 1", len(msgs2))
	}

	db.IncrementOutboxRetries(msgs2[0].ID)
	msgs3, _ := db.ListPendingOutbox(10)
	if msgs3[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", msgs3[0].Retries)
	}
}

// --- Admin user tests ---

func TestAdminUsers(t *testing.T) {
	db := testDB(t)

	exists, err := db.AdminUserExists()
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Error("no users should exist in a fresh db")
	}

	if err := db.CreateAdminUser("admin", "$2a$10$fakehash"); err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := db.GetAdminUser("admin")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.PasswordHash != "$2a$10$fakehash" {
		t.Errorf("hash = %q", u.PasswordHash)
	}

	exists, _ = db.AdminUserExists()
	if !exists {
		t.Error("user should exist after create")
	}
}

// --- Dialect tests ---

func TestRebind(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"SELECT * FROM t WHERE a=? AND b=?", "SELECT * FROM t WHERE a=$1 AND b=$2"},
		{"INSERT INTO t (a) VALUES (?)", "INSERT INTO t (a) VALUES ($1)"},
		{"SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		got := Rebind(tt.input)
		if got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
