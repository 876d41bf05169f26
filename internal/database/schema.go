package database

import (
	"context"
	"database/sql"
)

// ddl creates all tables used by the API. Statements are idempotent
// so repeated startups are harmless.
var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(100) NOT NULL,
		role          ENUM('user','publisher','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS bootcamps (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		name           VARCHAR(50)  NOT NULL UNIQUE,
		slug           VARCHAR(60)  NOT NULL UNIQUE,
		description    VARCHAR(500) NOT NULL,
		website        VARCHAR(255) NOT NULL DEFAULT '',
		phone          VARCHAR(20)  NOT NULL DEFAULT '',
		email          VARCHAR(255) NOT NULL DEFAULT '',
		address        VARCHAR(255) NOT NULL DEFAULT '',
		latitude       DOUBLE NULL,
		longitude      DOUBLE NULL,
		careers        JSON NULL,
		housing        BOOLEAN NOT NULL DEFAULT FALSE,
		job_assistance BOOLEAN NOT NULL DEFAULT FALSE,
		job_guarantee  BOOLEAN NOT NULL DEFAULT FALSE,
		accept_gi      BOOLEAN NOT NULL DEFAULT FALSE,
		average_rating DOUBLE NULL,
		average_cost   DOUBLE NULL,
		photo          VARCHAR(255) NOT NULL DEFAULT 'no-photo.jpg',
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_bootcamps_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS courses (
		id                    BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		bootcamp_id           BIGINT UNSIGNED NOT NULL,
		user_id               BIGINT UNSIGNED NOT NULL,
		title                 VARCHAR(255) NOT NULL,
		description           TEXT NOT NULL,
		weeks                 INT NOT NULL,
		tuition               DOUBLE NOT NULL,
		minimum_skill         ENUM('beginner','intermediate','advanced') NOT NULL,
		scholarship_available BOOLEAN NOT NULL DEFAULT FALSE,
		created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_courses_bootcamp FOREIGN KEY (bootcamp_id)
			REFERENCES bootcamps(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id          BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		bootcamp_id BIGINT UNSIGNED NOT NULL,
		user_id     BIGINT UNSIGNED NOT NULL,
		title       VARCHAR(100) NOT NULL,
		text        TEXT NOT NULL,
		rating      INT NOT NULL,
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_reviews_bootcamp_user (bootcamp_id, user_id),
		CONSTRAINT fk_reviews_bootcamp FOREIGN KEY (bootcamp_id)
			REFERENCES bootcamps(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id)
			REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
}

// EnsureSchema applies the DDL on startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
