package composables

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// ApplyTenantRLS pins the transaction to the ambient tenant so row-level
// security policies can filter on current_setting('app.current_tenant_id').
func ApplyTenantRLS(ctx context.Context, tx pgx.Tx) error {
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		// Not every code path is tenant-scoped (migrations, health checks).
		return nil
	}
	_, err = tx.Exec(ctx, "SELECT set_config('app.current_tenant_id', $1, true)", tenantID.String())
	return err
}
