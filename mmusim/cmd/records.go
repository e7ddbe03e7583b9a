package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sarchlab/mmusim/datarecording"
	"github.com/sarchlab/mmusim/mem/vm/mmu"
	"github.com/spf13/cobra"
)

func newRecordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records <file.sqlite3>",
		Short: "List the translations recorded by a replay.",
		Args:  cobra.ExactArgs(1),
		RunE:  runRecords,
	}

	cmd.Flags().String("status", "",
		"Only show translations with this status, e.g. page-fault")
	cmd.Flags().String("translator", "", "Only show this translator")
	cmd.Flags().Int("limit", 0, "Show at most this many translations")
	cmd.Flags().Int("offset", 0, "Skip this many translations")

	return cmd
}

func runRecords(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}

	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(mmu.TranslationTable, mmu.TranslationEntry{})

	params := datarecording.QueryParams{OrderBy: "rowid"}
	params.Limit, _ = cmd.Flags().GetInt("limit")
	params.Offset, _ = cmd.Flags().GetInt("offset")

	var conditions []string
	for _, f := range []struct{ flag, column string }{
		{"status", "Status"},
		{"translator", "Translator"},
	} {
		value, _ := cmd.Flags().GetString(f.flag)
		if value != "" {
			conditions = append(conditions, f.column+" = ?")
			params.Args = append(params.Args, value)
		}
	}
	params.Where = strings.Join(conditions, " AND ")

	results, total, err := reader.Query(
		cmd.Context(), mmu.TranslationTable, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		e := r.(*mmu.TranslationEntry)
		fmt.Fprintf(out, "%-6s %-8s %-9s 0x%08x %-7s hit=%-5t %-10s 0x%08x\n",
			e.ID, e.Translator, e.Mode, e.VAddr, e.Access, e.TLBHit,
			e.Status, e.Value)
	}

	fmt.Fprintf(out, "%d of %d translations\n", len(results), total)

	return nil
}
