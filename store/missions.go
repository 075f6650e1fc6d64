package store

import (
	"database/sql"
	"fmt"
	"time"
)

type Mission struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Operation   string     `json:"operation"`
	RobotID     string     `json:"robot_id"`
	SourcePoint string     `json:"source_point"`
	DestPoint   string     `json:"dest_point"`
	Status      string     `json:"status"`
	FailedStep  int        `json:"failed_step"`
	Warning     string     `json:"warning,omitempty"`
	ErrorDetail string     `json:"error_detail,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Steps       []*MissionStep `json:"steps,omitempty"`
}

type MissionStep struct {
	ID         int64   `json:"id"`
	MissionID  string  `json:"mission_id"`
	Idx        int     `json:"idx"`
	Kind       string  `json:"kind"`
	Label      string  `json:"label"`
	TargetX    float64 `json:"target_x"`
	TargetY    float64 `json:"target_y"`
	TargetOri  float64 `json:"target_ori"`
	Status     string  `json:"status"`
	RetryCount int     `json:"retry_count"`
}

type MissionHistory struct {
	ID        int64     `json:"id"`
	MissionID string    `json:"mission_id"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

const missionSelectCols = `id, name, operation, robot_id, source_point, dest_point, status, failed_step, warning, error_detail, created_at, updated_at, finished_at`

func scanMission(row interface{ Scan(...any) error }) (*Mission, error) {
	var m Mission
	var createdAt, updatedAt, finishedAt any
	err := row.Scan(&m.ID, &m.Name, &m.Operation, &m.RobotID, &m.SourcePoint, &m.DestPoint,
		&m.Status, &m.FailedStep, &m.Warning, &m.ErrorDetail,
		&createdAt, &updatedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	m.FinishedAt = parseTimePtr(finishedAt)
	return &m, nil
}

func scanMissions(rows *sql.Rows) ([]*Mission, error) {
	var missions []*Mission
	for rows.Next() {
		m, err := scanMission(rows)
		if err != nil {
			return nil, err
		}
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

// CreateMission inserts a mission and its planned steps atomically.
func (db *DB) CreateMission(m *Mission) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(db.Q(`INSERT INTO missions (id, name, operation, robot_id, source_point, dest_point, status, failed_step) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.Name, m.Operation, m.RobotID, m.SourcePoint, m.DestPoint, m.Status, m.FailedStep)
	if err != nil {
		return fmt.Errorf("create mission: %w", err)
	}
	for i, s := range m.Steps {
		_, err = tx.Exec(db.Q(`INSERT INTO mission_steps (mission_id, idx, kind, label, target_x, target_y, target_ori, status, retry_count) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
			m.ID, i, s.Kind, s.Label, s.TargetX, s.TargetY, s.TargetOri, s.Status, s.RetryCount)
		if err != nil {
			return fmt.Errorf("create mission step %d: %w", i, err)
		}
	}
	return tx.Commit()
}

func (db *DB) UpdateMissionStatus(id, status, detail string) error {
	_, err := db.Exec(db.Q(`UPDATE missions SET status=?, error_detail=?, updated_at=datetime('now','localtime') WHERE id=?`),
		status, detail, id)
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Q(`INSERT INTO mission_history (mission_id, status, detail) VALUES (?, ?, ?)`),
		id, status, detail)
	return err
}

// FinishMission records a terminal status with the failing step index
// and any warning the executor attached.
func (db *DB) FinishMission(id, status string, failedStep int, warning, detail string) error {
	_, err := db.Exec(db.Q(`UPDATE missions SET status=?, failed_step=?, warning=?, error_detail=?, finished_at=datetime('now','localtime'), updated_at=datetime('now','localtime') WHERE id=?`),
		status, failedStep, warning, detail, id)
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Q(`INSERT INTO mission_history (mission_id, status, detail) VALUES (?, ?, ?)`),
		id, status, detail)
	return err
}

func (db *DB) UpdateMissionStep(missionID string, idx int, status string, retryCount int) error {
	_, err := db.Exec(db.Q(`UPDATE mission_steps SET status=?, retry_count=? WHERE mission_id=? AND idx=?`),
		status, retryCount, missionID, idx)
	return err
}

func (db *DB) GetMission(id string) (*Mission, error) {
	row := db.QueryRow(db.Q(fmt.Sprintf(`SELECT %s FROM missions WHERE id=?`, missionSelectCols)), id)
	m, err := scanMission(row)
	if err != nil {
		return nil, err
	}
	m.Steps, err = db.ListMissionSteps(id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (db *DB) ListMissions(status string, limit int) ([]*Mission, error) {
	var rows *sql.Rows
	var err error
	if status != "" {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM missions WHERE status=? ORDER BY created_at DESC LIMIT ?`, missionSelectCols)), status, limit)
	} else {
		rows, err = db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM missions ORDER BY created_at DESC LIMIT ?`, missionSelectCols)), limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMissions(rows)
}

// ListActiveMissions returns missions not yet in a terminal state.
func (db *DB) ListActiveMissions() ([]*Mission, error) {
	rows, err := db.Query(db.Q(fmt.Sprintf(`SELECT %s FROM missions WHERE status IN ('queued', 'running') ORDER BY created_at`, missionSelectCols)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMissions(rows)
}

func (db *DB) ListMissionSteps(missionID string) ([]*MissionStep, error) {
	rows, err := db.Query(db.Q(`SELECT id, mission_id, idx, kind, label, target_x, target_y, target_ori, status, retry_count FROM mission_steps WHERE mission_id=? ORDER BY idx`), missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var steps []*MissionStep
	for rows.Next() {
		var s MissionStep
		if err := rows.Scan(&s.ID, &s.MissionID, &s.Idx, &s.Kind, &s.Label, &s.TargetX, &s.TargetY, &s.TargetOri, &s.Status, &s.RetryCount); err != nil {
			return nil, err
		}
		steps = append(steps, &s)
	}
	return steps, rows.Err()
}

func (db *DB) ListMissionHistory(missionID string) ([]*MissionHistory, error) {
	rows, err := db.Query(db.Q(`SELECT id, mission_id, status, detail, created_at FROM mission_history WHERE mission_id=? ORDER BY id`), missionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var history []*MissionHistory
	for rows.Next() {
		var h MissionHistory
		var createdAt any
		if err := rows.Scan(&h.ID, &h.MissionID, &h.Status, &h.Detail, &createdAt); err != nil {
			return nil, err
		}
		h.CreatedAt = parseTime(createdAt)
		history = append(history, &h)
	}
	return history, rows.Err()
}
