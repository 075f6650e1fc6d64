package store

const schemaPostgres = `
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
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at  TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_missions_status ON missions(status);
CREATE INDEX IF NOT EXISTS idx_missions_robot ON missions(robot_id);

CREATE TABLE IF NOT EXISTS mission_steps (
    id          BIGSERIAL PRIMARY KEY,
    mission_id  TEXT NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
    idx         INTEGER NOT NULL,
    kind        TEXT NOT NULL,
    label       TEXT NOT NULL DEFAULT '',
    target_x    DOUBLE PRECISION NOT NULL DEFAULT 0,
    target_y    DOUBLE PRECISION NOT NULL DEFAULT 0,
    target_ori  DOUBLE PRECISION NOT NULL DEFAULT 0,
    status      TEXT NOT NULL DEFAULT 'pending',
    retry_count INTEGER NOT NULL DEFAULT 0,
    UNIQUE(mission_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_steps_mission ON mission_steps(mission_id);

CREATE TABLE IF NOT EXISTS mission_history (
    id          BIGSERIAL PRIMARY KEY,
    mission_id  TEXT NOT NULL REFERENCES missions(id) ON DELETE CASCADE,
    status      TEXT NOT NULL,
    detail      TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_mission_history ON mission_history(mission_id);

CREATE TABLE IF NOT EXISTS map_points (
    id          BIGSERIAL PRIMARY KEY,
    point_id    TEXT NOT NULL UNIQUE,
    pos_x       DOUBLE PRECISION NOT NULL DEFAULT 0,
    pos_y       DOUBLE PRECISION NOT NULL DEFAULT 0,
    ori         DOUBLE PRECISION NOT NULL DEFAULT 0,
    synced_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS outbox (
    id          BIGSERIAL PRIMARY KEY,
    topic       TEXT NOT NULL,
    payload     BYTEA NOT NULL,
    msg_type    TEXT NOT NULL DEFAULT '',
    mission_id  TEXT NOT NULL DEFAULT '',
    retries     INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    sent_at     TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_outbox_pending ON outbox(sent_at) WHERE sent_at IS NULL;

CREATE TABLE IF NOT EXISTS admin_users (
    id            BIGSERIAL PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
