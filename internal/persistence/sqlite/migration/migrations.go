package migration

// Migration is one embedded schema version. Statements run in order inside
// a single transaction.
type Migration struct {
	Version     string
	Description string
	Statements  []string
}

// Migrations returns the full ordered migration set for the training
// console schema.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     "001",
			Description: "catalog tables: trainers, rooms, courses, course sessions",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS trainers (
					id TEXT PRIMARY KEY,
					first_name TEXT NOT NULL,
					last_name TEXT NOT NULL,
					email TEXT NOT NULL UNIQUE,
					phone TEXT,
					specialty TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS rooms (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL UNIQUE,
					location TEXT,
					capacity INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS courses (
					id TEXT PRIMARY KEY,
					title TEXT NOT NULL,
					reference TEXT UNIQUE,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL
				)`,
				`CREATE TABLE IF NOT EXISTS course_sessions (
					id TEXT PRIMARY KEY,
					course_id TEXT NOT NULL REFERENCES courses(id),
					label TEXT NOT NULL,
					start_date TEXT NOT NULL,
					end_date TEXT NOT NULL,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					CHECK (start_date <= end_date)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_course_sessions_course ON course_sessions(course_id)`,
			},
		},
		{
			Version:     "002",
			Description: "seances with interval and status constraints",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS seances (
					id TEXT PRIMARY KEY,
					session_id TEXT NOT NULL REFERENCES course_sessions(id),
					module_id TEXT,
					trainer_id TEXT NOT NULL REFERENCES trainers(id),
					room_id TEXT REFERENCES rooms(id),
					date TEXT NOT NULL,
					start_minute INTEGER NOT NULL,
					end_minute INTEGER NOT NULL,
					status TEXT NOT NULL DEFAULT 'planned',
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					CHECK (start_minute >= 0),
					CHECK (end_minute <= 1440),
					CHECK (start_minute < end_minute),
					CHECK (status IN ('planned', 'completed', 'cancelled'))
				)`,
				`CREATE INDEX IF NOT EXISTS idx_seances_date_trainer ON seances(date, trainer_id)`,
				`CREATE INDEX IF NOT EXISTS idx_seances_date_room ON seances(date, room_id)`,
				`CREATE INDEX IF NOT EXISTS idx_seances_session ON seances(session_id)`,
			},
		},
		{
			Version:     "003",
			Description: "availability rules for trainers and rooms",
			Statements: []string{
				`CREATE TABLE IF NOT EXISTS availability_rules (
					id TEXT PRIMARY KEY,
					resource_kind TEXT NOT NULL,
					resource_id TEXT NOT NULL,
					weekday INTEGER NOT NULL,
					start_minute INTEGER NOT NULL,
					end_minute INTEGER NOT NULL,
					recurrence TEXT NOT NULL,
					date TEXT,
					anchor_date TEXT NOT NULL,
					active INTEGER NOT NULL DEFAULT 1,
					note TEXT,
					created_at TEXT NOT NULL,
					updated_at TEXT NOT NULL,
					CHECK (resource_kind IN ('trainer', 'room')),
					CHECK (weekday BETWEEN 0 AND 6),
					CHECK (start_minute >= 0),
					CHECK (end_minute <= 1440),
					CHECK (start_minute < end_minute),
					CHECK (recurrence IN ('weekly', 'monthly', 'one-off')),
					CHECK (recurrence != 'one-off' OR date IS NOT NULL)
				)`,
				`CREATE INDEX IF NOT EXISTS idx_availability_resource ON availability_rules(resource_kind, resource_id)`,
			},
		},
	}
}
