package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) sweep() error {
	changed, err := cli.lessonSvc.CompleteElapsed(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("marked %d lessons as completed\n", changed)
	return nil
}
