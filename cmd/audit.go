package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"Stockbook/Services"
)

var errLedgerInconsistent = errors.New("stock ledger does not match its documents")

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Check stock movements against invoices, purchases and adjustments",
	Long: `Recompute the movements every invoice, purchase and adjustment should have
produced and compare them with the stock ledger. The report is printed as
JSON; the command exits non-zero when any discrepancy is found.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	_, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeDB(db, log)

	report, err := Services.AuditLedger(cmd.Context(), db, log)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return err
	}
	if !report.Consistent() {
		return errLedgerInconsistent
	}
	return nil
}
