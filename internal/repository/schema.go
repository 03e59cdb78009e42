package repository

import (
	"fmt"

	"gorm.io/gorm"
)

// Models lists every table the service owns, in dependency order.
func Models() []interface{} {
	return []interface{}{
		&ListingModel{},
		&BookingModel{},
		&StatusHistoryModel{},
	}
}

// constraintStatements add what AutoMigrate cannot express. Each statement
// is idempotent; the SQL migrations create the same objects.
var constraintStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`ALTER TABLE booking_status_history ADD COLUMN IF NOT EXISTS seq BIGSERIAL`,
	`DO $$ BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_dates_check') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_dates_check CHECK (check_out > check_in);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_stayers_check') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_stayers_check CHECK (stayers > 0);
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_status_check') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_status_check
				CHECK (status IN ('pending', 'confirmed', 'rejected', 'cancelled', 'completed'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
			ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
				EXCLUDE USING gist (listing_id WITH =, daterange(check_in, check_out, '[)') WITH &&)
				WHERE (status IN ('pending', 'confirmed'));
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'booking_status_history_booking_fk') THEN
			ALTER TABLE booking_status_history ADD CONSTRAINT booking_status_history_booking_fk
				FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE;
		END IF;
	END $$`,
}

// AutoMigrate creates the tables and booking constraints. Used in development
// and tests; other environments run the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	for _, stmt := range constraintStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply booking constraints: %w", err)
		}
	}
	return nil
}
