package main

import (
	"context"
	"fmt"
)

// fixCategories re-derives every lesson's category from its title keywords
// and saves the collection once if anything changed.
func (cli *commandLine) fixCategories() error {
	changed, outcome, err := cli.lessonSvc.FixCategories(context.Background())
	if err != nil {
		return err
	}
	if changed == 0 {
		fmt.Println("all categories already correct")
		return nil
	}
	fmt.Printf("fixed %d categories (remote synced: %v, version: %s)\n", changed, outcome.RemoteSynced, outcome.Version)
	return nil
}
