package store

import (
	"fmt"
	"time"
)

type MapPoint struct {
	ID       int64     `json:"id"`
	PointID  string    `json:"point_id"`
	PosX     float64   `json:"pos_x"`
	PosY     float64   `json:"pos_y"`
	Ori      float64   `json:"ori"`
	SyncedAt time.Time `json:"synced_at"`
}

// ReplaceMapPoints swaps the stored map snapshot for a fresh one from
// the robot's active map.
func (db *DB) ReplaceMapPoints(points []*MapPoint) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("replace map points: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM map_points`); err != nil {
		return fmt.Errorf("replace map points: %w", err)
	}
	for _, p := range points {
		_, err := tx.Exec(db.Q(`INSERT INTO map_points (point_id, pos_x, pos_y, ori, synced_at) VALUES (?, ?, ?, ?, datetime('now','localtime'))`),
			p.PointID, p.PosX, p.PosY, p.Ori)
		if err != nil {
			return fmt.Errorf("insert map point %s: %w", p.PointID, err)
		}
	}
	return tx.Commit()
}

func (db *DB) ListMapPoints() ([]*MapPoint, error) {
	rows, err := db.Query(db.Q(`SELECT id, point_id, pos_x, pos_y, ori, synced_at FROM map_points ORDER BY point_id`))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var points []*MapPoint
	for rows.Next() {
		var p MapPoint
		var syncedAt any
		if err := rows.Scan(&p.ID, &p.PointID, &p.PosX, &p.PosY, &p.Ori, &syncedAt); err != nil {
			return nil, err
		}
		p.SyncedAt = parseTime(syncedAt)
		points = append(points, &p)
	}
	return points, rows.Err()
}
