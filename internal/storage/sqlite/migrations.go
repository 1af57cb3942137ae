package sqlite

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	role     TEXT PRIMARY KEY,
	unread   INTEGER NOT NULL DEFAULT 0,
	saved_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshot_items (
	role       TEXT NOT NULL,
	position   INTEGER NOT NULL,
	id         TEXT NOT NULL,
	event_type TEXT NOT NULL DEFAULT '',
	event_text TEXT NOT NULL DEFAULT '',
	data       TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	read       INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (role, id)
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE INDEX IF NOT EXISTS idx_snapshot_items_role_position
	ON snapshot_items(role, position);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
}
