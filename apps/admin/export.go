package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

func (cli *commandLine) exportLessons(out string) error {
	lessons, err := cli.lessonSvc.QueryAll(context.Background())
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(lessons, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, append(data, '\n'), 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d lessons to %s\n", len(lessons), out)
	return nil
}
