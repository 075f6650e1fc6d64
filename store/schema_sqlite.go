package store

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS missions (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL DEFAULT '',
    operation    TEXT NOT NULL,
    robot_id     TEXT NOT NULL DEFAULT '',
    source_point TEXT NOT NULL DEFAULT '',
    dest_point   TEXT NOT NULL DEFAULT '',
    status       TEXT NOT NULL DEFAULT 'queued',
    failed_step  INTEGER NOT NULL DEFAULT -1,
    warning      TEXT NOT NULL DEFAULT '',
    error_detail TEXT NOT NULL DEFAULT '',
    created_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    updated_at   TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    finished_at  TEXT
);
CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);
CREATE INDEX IF NOT EXISTS idx_missions_robot ON missions(robot_id);

CREATE TABLE IF NOT EXISTS mission_steps (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    mission_id  TEXT NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
    idx         INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    label       TEXT NOT NULL DEFAULT '',
    target_x    REAL NOT NULL DEFAULT 0,
    target_y    REAL NOT NULL DEFAULT 0,
    target_ori  REAL NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'pending',
    retry_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(mission_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_steps_mission ON mission_steps(mission_id);

CREATE TABLE IF NOT EXISTS mission_history (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    mission_id  TEXT NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
    status      TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
CREATE INDEX IF NOT EXISTS idx_mission_history ON mission_history(mission_id);

CREATE TABLE IF NOT EXISTS map_points (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    point_id    TEXT NOT NULL UNIQUE,
    pos_x       REAL NOT NULL DEFAULT 0,
    pos_y       REAL NOT NULL DEFAULT 0,
    ori         REAL NOT NULL DEFAULT 0,
    synced_at   TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);

CREATE TABLE IF NOT EXISTS outbox (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    topic       TEXT NOT NULL,
    payload     BLOB NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    mission_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TEXT NOT NULL DEFAULT (datetime('now','localtime')),
    sent_at     TEXT
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS admin_users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now','localtime'))
);
`
