package db

// reportTables are deleted child-first by WipeData.
var reportTables = []string{"alert", "period_summary", "entity_risk", "run"}

// SchemaSQL defines one row per published run and its child records.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS run SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS generated_at ON run TYPE datetime;
    DEFINE FIELD IF NOT EXISTS published_at ON run TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS partial ON run TYPE bool;
    DEFINE FIELD IF NOT EXISTS sources ON run TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS warnings ON run TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS window_days ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS direction ON run TYPE string;
    DEFINE FIELD IF NOT EXISTS donation_rows ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS donations_accepted ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS contract_rows ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS contracts_accepted ON run TYPE int;
    DEFINE FIELD IF NOT EXISTS alert_count ON run TYPE int;
    DEFINE INDEX IF NOT EXISTS run_generated ON run FIELDS generated_at;

    DEFINE TABLE IF NOT EXISTS alert SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run ON alert TYPE record<run>;
    DEFINE FIELD IF NOT EXISTS rank ON alert TYPE int;
    DEFINE FIELD IF NOT EXISTS entity_id ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS entity_name ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS party ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS agency ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS contract_number ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS donation_date ON alert TYPE datetime;
    DEFINE FIELD IF NOT EXISTS award_date ON alert TYPE datetime;
    DEFINE FIELD IF NOT EXISTS donation_amount ON alert TYPE decimal;
    DEFINE FIELD IF NOT EXISTS contract_amount ON alert TYPE decimal;
    DEFINE FIELD IF NOT EXISTS delta_days ON alert TYPE int;
    DEFINE FIELD IF NOT EXISTS direction ON alert TYPE string;
    DEFINE FIELD IF NOT EXISTS severity ON alert TYPE float;
    DEFINE INDEX IF NOT EXISTS alert_run ON alert FIELDS run, rank UNIQUE;

    DEFINE TABLE IF NOT EXISTS period_summary SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run ON period_summary TYPE record<run>;
    DEFINE FIELD IF NOT EXISTS period ON period_summary TYPE string;
    DEFINE FIELD IF NOT EXISTS party ON period_summary TYPE string;
    DEFINE FIELD IF NOT EXISTS total_amount ON period_summary TYPE decimal;
    DEFINE FIELD IF NOT EXISTS donation_count ON period_summary TYPE int;
    DEFINE FIELD IF NOT EXISTS donor_count ON period_summary TYPE int;
    DEFINE INDEX IF NOT EXISTS period_summary_run ON period_summary FIELDS run;

    DEFINE TABLE IF NOT EXISTS entity_risk SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS run ON entity_risk TYPE record<run>;
    DEFINE FIELD IF NOT EXISTS entity_id ON entity_risk TYPE string;
    DEFINE FIELD IF NOT EXISTS name ON entity_risk TYPE string;
    DEFINE FIELD IF NOT EXISTS party ON entity_risk TYPE string;
    DEFINE FIELD IF NOT EXISTS flagged_contracts ON entity_risk TYPE int;
    DEFINE FIELD IF NOT EXISTS total_contracts ON entity_risk TYPE int;
    DEFINE FIELD IF NOT EXISTS percent ON entity_risk TYPE float;
    DEFINE FIELD IF NOT EXISTS level ON entity_risk TYPE string;
    DEFINE INDEX IF NOT EXISTS entity_risk_run ON entity_risk FIELDS run;
`
