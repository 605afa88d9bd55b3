package db

// SchemaSQL defines the tables the API persists to. Summaries are kept as
// their JSON encoding so reads return exactly what the run produced.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS migration_run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run_id ON migration_run TYPE string;
    DEFINE FIELD IF NOT EXISTS timestamp ON migration_run TYPE string;
    DEFINE FIELD IF NOT EXISTS total_processed ON migration_run TYPE int;
    DEFINE FIELD IF NOT EXISTS successful ON migration_run TYPE int;
    DEFINE FIELD IF NOT EXISTS failed ON migration_run TYPE int;
    DEFINE FIELD IF NOT EXISTS payload ON migration_run TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON migration_run TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS migration_run_created ON migration_run FIELDS created_at;
`
