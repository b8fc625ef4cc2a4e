package migrate_test

import (
	"strings"
	"testing"
)

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_orders_order_number",
		"status order_status NOT NULL DEFAULT 'pending_payment'",
		"restocked_at TIMESTAMPTZ",
		"CREATE TABLE IF NOT EXISTS order_status_events",
		"CREATE TABLE IF NOT EXISTS order_payments",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_order_payments_order_id",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOutboxMigrationScopesDedupeIndex(t *testing.T) {
	content := readMigration(t, "*_create_outbox.sql")

	checks := []string{
		"ux_outbox_events_event_aggregate",
		"WHERE published_at IS NULL",
		"'order_payment_reminder'",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
