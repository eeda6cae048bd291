package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/trezcool/chuo/core/ingest"
)

// importUsers bulk-creates accounts from a CSV file and prints the batch report.
func (cli *commandLine) importUsers(path string) error {
	rep, err := cli.ingestSvc.ImportUsers(context.Background(), ingest.Source{Path: path})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return err
	}
	fmt.Printf("%d created, %d skipped, %d invalid, %d errors\n",
		rep.CreatedCount, len(rep.Skipped), len(rep.Invalid), len(rep.Errors))
	return nil
}
