package postgres

import "gorm.io/gorm"

// Migrations returns the ordered schema migrations this module requires,
// ready to hand to MigrateUp.
func Migrations() []Migration {
	return []Migration{
		{Key: "2026-01-12:create-notifications", Executor: createNotifications},
		{Key: "2026-01-12:create-subscriptions", Executor: createSubscriptions},
	}
}

func createNotifications(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE notifications (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ,
			target_type TEXT NOT NULL,
			target_id BIGINT NOT NULL,
			notifiable_type TEXT NOT NULL,
			notifiable_id BIGINT NOT NULL,
			key TEXT NOT NULL,
			group_type TEXT NOT NULL DEFAULT '',
			group_id BIGINT NOT NULL DEFAULT 0,
			group_owner_id BIGINT REFERENCES notifications (id),
			notifier_type TEXT NOT NULL DEFAULT '',
			notifier_id BIGINT NOT NULL DEFAULT 0,
			parameters JSONB DEFAULT '{}'::jsonb,
			opened_at TIMESTAMPTZ
		);

		CREATE INDEX notifications_target_idx ON notifications (target_type, target_id);
		CREATE INDEX notifications_group_owner_idx ON notifications (group_owner_id);
	`).Error
}

func createSubscriptions(db *gorm.DB) error {
	return db.Exec(`
		CREATE TABLE subscriptions (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			deleted_at TIMESTAMPTZ,
			target_type TEXT NOT NULL,
			target_id BIGINT NOT NULL,
			key TEXT NOT NULL,
			subscribing BOOLEAN NOT NULL DEFAULT TRUE,
			subscribing_to_email BOOLEAN NOT NULL DEFAULT TRUE,
			subscribed_at TIMESTAMPTZ,
			unsubscribed_at TIMESTAMPTZ,
			subscribed_to_email_at TIMESTAMPTZ,
			unsubscribed_to_email_at TIMESTAMPTZ,
			optional_targets JSONB DEFAULT '{}'::jsonb
		);

		CREATE INDEX subscriptions_target_idx ON subscriptions (target_type, target_id);

		-- Soft deleted subscriptions free up their key for resubscribing.
		CREATE UNIQUE INDEX subscriptions_target_key_idx
			ON subscriptions (target_type, target_id, key)
			WHERE deleted_at IS NULL;
	`).Error
}
