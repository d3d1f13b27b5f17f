package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis;`,
	`CREATE TABLE IF NOT EXISTS ucc_master (
		id BIGSERIAL PRIMARY KEY,
		permanent_ucc VARCHAR(64),
		contract_name TEXT NOT NULL DEFAULT '',
		short_name VARCHAR(255) NOT NULL DEFAULT '',
		status VARCHAR(32) NOT NULL DEFAULT 'DRAFT',
		phase_code INT,
		corridor_code INT,
		implementation_mode_id BIGINT,
		scheme_id BIGINT,
		ro_id BIGINT,
		state_id BIGINT,
		contract_length NUMERIC(12,2) NOT NULL DEFAULT 0,
		stretch_name TEXT NOT NULL DEFAULT '',
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by BIGINT,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_ucc_master_permanent_ucc
		ON ucc_master (permanent_ucc) WHERE permanent_ucc IS NOT NULL;`,
	`CREATE TABLE IF NOT EXISTS ucc_stretches (
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id) ON DELETE CASCADE,
		stretch_id VARCHAR(64) NOT NULL,
		position INT NOT NULL,
		PRIMARY KEY (ucc_id, stretch_id)
	);`,
	`CREATE TABLE IF NOT EXISTS ucc_work_locations (
		id BIGSERIAL PRIMARY KEY,
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id),
		work_type_id BIGINT NOT NULL,
		issue_kind VARCHAR(16) NOT NULL,
		start_km INT NOT NULL,
		start_metre INT NOT NULL,
		start_lat DOUBLE PRECISION NOT NULL,
		start_long DOUBLE PRECISION NOT NULL,
		end_km INT,
		end_metre INT,
		end_lat DOUBLE PRECISION,
		end_long DOUBLE PRECISION,
		lane INT NOT NULL DEFAULT 0,
		status VARCHAR(32) NOT NULL DEFAULT 'DRAFT',
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by BIGINT,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_work_locations_ucc ON ucc_work_locations (ucc_id);`,
	`CREATE TABLE IF NOT EXISTS package_master (
		stretch_code VARCHAR(64) NOT NULL,
		package_code VARCHAR(3) NOT NULL,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (stretch_code, package_code)
	);`,
	`CREATE TABLE IF NOT EXISTS ucc_user_mappings (
		id BIGSERIAL PRIMARY KEY,
		ucc_code VARCHAR(64) NOT NULL,
		user_id BIGINT NOT NULL,
		status VARCHAR(32) NOT NULL,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by BIGINT,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_user_mappings ON ucc_user_mappings (ucc_code, user_id);`,
	`CREATE TABLE IF NOT EXISTS ucc_piu (
		id BIGSERIAL PRIMARY KEY,
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id),
		piu_id BIGINT NOT NULL,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_by BIGINT,
		updated_at TIMESTAMPTZ
	);`,
	`CREATE TABLE IF NOT EXISTS documents_master (
		id BIGSERIAL PRIMARY KEY,
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id),
		document_type VARCHAR(64) NOT NULL,
		document_name TEXT NOT NULL,
		key_name TEXT NOT NULL,
		document_path TEXT NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'DRAFT',
		is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_documents_ucc ON documents_master (ucc_id) WHERE NOT is_deleted;`,
	`CREATE TABLE IF NOT EXISTS ucc_nh_details (
		id BIGSERIAL PRIMARY KEY,
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id),
		nh_number VARCHAR(32) NOT NULL,
		start_chainage NUMERIC(12,3) NOT NULL,
		end_chainage NUMERIC(12,3) NOT NULL,
		length NUMERIC(12,3) NOT NULL,
		status VARCHAR(32) NOT NULL DEFAULT 'DRAFT',
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS ucc_nh_state_details (
		id BIGSERIAL PRIMARY KEY,
		ucc_id BIGINT NOT NULL REFERENCES ucc_master(id),
		state_id BIGINT NOT NULL,
		district_ids TEXT NOT NULL DEFAULT '',
		nh_state_distance NUMERIC(12,3) NOT NULL DEFAULT 0,
		created_by BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS ucc_change_log (
		id BIGSERIAL PRIMARY KEY,
		ucc_id VARCHAR(64) NOT NULL,
		feature_module VARCHAR(64) NOT NULL,
		changed_field VARCHAR(128) NOT NULL,
		new_value TEXT NOT NULL,
		changed_by BIGINT NOT NULL,
		changed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_change_log_ucc ON ucc_change_log (ucc_id);`,
	`CREATE INDEX IF NOT EXISTS idx_change_log_user ON ucc_change_log (changed_by, feature_module);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
