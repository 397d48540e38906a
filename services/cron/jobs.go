package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/gapindang/rapor-api/model"
)

const jobTimeout = 5 * time.Minute

// CleanupTokenBlacklist removes blacklist entries whose tokens have
// already expired on their own
func (m *CronManager) CleanupTokenBlacklist() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := m.blacklist.CleanupExpiredTokens(ctx); err != nil {
		m.logJobError("cleanup_token_blacklist", err)
		return
	}
	m.logJobComplete("cleanup_token_blacklist", "expired blacklist entries removed")
}

// RecomputeReportAverages re-derives stored averages for the active
// school year so report cards self-heal after out-of-band grade edits
func (m *CronManager) RecomputeReportAverages() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	var year model.SchoolYear
	if err := m.db.WithContext(ctx).Where("active = ?", true).First(&year).Error; err != nil {
		m.logJobError("recompute_report_averages", err)
		return
	}

	updated, err := m.reports.RecomputeStaleAverages(ctx, year.ID)
	if err != nil {
		m.logJobError("recompute_report_averages", err)
		return
	}
	m.logJobComplete("recompute_report_averages", fmt.Sprintf("%d report cards updated", updated))
}
