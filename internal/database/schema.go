package database

const schema = `
CREATE TABLE IF NOT EXISTS devices (
	id         INTEGER PRIMARY KEY,
	name       TEXT NOT NULL,
	type       TEXT NOT NULL CHECK (type IN ('desktop', 'laptop')),
	status     TEXT NOT NULL DEFAULT 'available' CHECK (status IN ('available', 'in-use')),
	specs      TEXT NOT NULL DEFAULT '',
	version    BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

ALTER TABLE devices ADD COLUMN IF NOT EXISTS version BIGINT NOT NULL DEFAULT 0;

CREATE TABLE IF NOT EXISTS bookings (
	id            UUID PRIMARY KEY,
	computer_id   INTEGER NOT NULL REFERENCES devices(id),
	computer_name TEXT NOT NULL,
	user_name     TEXT NOT NULL,
	start_time    TIMESTAMPTZ NOT NULL,
	end_time      TIMESTAMPTZ,
	duration      DOUBLE PRECISION NOT NULL CHECK (duration > 0),
	total_cost    DOUBLE PRECISION NOT NULL,
	status        TEXT NOT NULL CHECK (status IN ('active', 'completed'))
);

CREATE UNIQUE INDEX IF NOT EXISTS bookings_one_active_per_device
	ON bookings (computer_id) WHERE status = 'active';

CREATE INDEX IF NOT EXISTS bookings_completed_end_time
	ON bookings (end_time DESC) WHERE status = 'completed';
`
